// Package directory talks to the public camera directory.
//
// The directory exposes a JSON catalog of regions and paginated HTML
// listing pages per region. Client fetches the catalog, resolves the last
// page index of a region and fetches single listing pages, returning the
// endpoint URLs found on each page in document order.
//
// All requests carry a browser-like header set (DefaultHeaders) unless the
// caller supplies its own through Client.Headers or Client.WithHeaders.
// Listing bodies are decoded to UTF-8 according to the response charset
// before extraction.
//
// # Errors
//
// Failures are reported as *Error values with a Type:
//
//   - ErrTypeCatalogUnavailable: catalog request or decoding failed
//   - ErrTypeInvalidRegion: region code not present in the catalog
//   - ErrTypeNoListings: page 0 carried no pagination token
//   - ErrTypePageFetch: a single listing page could not be fetched
//
// Use the Is* helpers to test for a category and Hint for user-facing
// troubleshooting tips.
package directory
