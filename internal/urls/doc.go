// Package urls provides centralized constants and builders for the
// directory endpoints used throughout the application.
//
// Keeping the paths in one place lets the directory origin be swapped
// (for a mirror or a local test server) without hunting through code.
//
// Usage:
//
//	import "github.com/muurk/argus/internal/urls"
//
//	resp, err := http.Get(urls.Page(urls.DefaultDirectory, "US", 3))
package urls
