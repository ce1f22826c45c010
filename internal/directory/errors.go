package directory

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of a directory failure
type ErrorType int

const (
	// ErrTypeCatalogUnavailable indicates the region catalog could not be
	// fetched or decoded. Fatal for a run.
	ErrTypeCatalogUnavailable ErrorType = iota
	// ErrTypeInvalidRegion indicates a region code absent from the catalog
	ErrTypeInvalidRegion
	// ErrTypeNoListings indicates page 0 carried no pagination token.
	// Callers treat the region as empty.
	ErrTypeNoListings
	// ErrTypePageFetch indicates a single listing page could not be fetched
	ErrTypePageFetch
)

// NetworkSubtype narrows down transport failures for logs and hints
type NetworkSubtype int

const (
	NetworkNone NetworkSubtype = iota
	NetworkGeneral
	NetworkTimeout
	NetworkConnectionRefused
	NetworkDNS
	NetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeCatalogUnavailable:
		return "Catalog Unavailable"
	case ErrTypeInvalidRegion:
		return "Invalid Region Code"
	case ErrTypeNoListings:
		return "No Listings Found"
	case ErrTypePageFetch:
		return "Page Fetch Failed"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// String returns a short label used as a log field
func (ns NetworkSubtype) String() string {
	switch ns {
	case NetworkNone:
		return "none"
	case NetworkTimeout:
		return "timeout"
	case NetworkConnectionRefused:
		return "refused"
	case NetworkDNS:
		return "dns"
	case NetworkUnreachable:
		return "unreachable"
	default:
		return "general"
	}
}

// Error describes a failure talking to the camera directory
type Error struct {
	Type           ErrorType      // Category of error
	Message        string         // Human-readable error message
	Region         string         // Region code (if applicable)
	Page           int            // Page index (ErrTypePageFetch only)
	StatusCode     int            // HTTP status code (if applicable)
	NetworkSubtype NetworkSubtype // Transport failure detail (if any)
	Err            error          // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a transport error onto a NetworkSubtype
func ClassifyNetworkError(err error) NetworkSubtype {
	if err == nil {
		return NetworkNone
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return NetworkTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		switch {
		case errors.Is(opErr.Err, syscall.ECONNREFUSED):
			return NetworkConnectionRefused
		case errors.Is(opErr.Err, syscall.EHOSTUNREACH), errors.Is(opErr.Err, syscall.ENETUNREACH):
			return NetworkUnreachable
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		if sub := ClassifyNetworkError(urlErr.Err); sub != NetworkGeneral {
			return sub
		}
	}

	// context.DeadlineExceeded surfaces through url.Error.Timeout()
	if urlErr != nil && urlErr.Timeout() {
		return NetworkTimeout
	}

	return NetworkGeneral
}

// NewCatalogError creates a CatalogUnavailable error
func NewCatalogError(message string, statusCode int, err error) *Error {
	return &Error{
		Type:           ErrTypeCatalogUnavailable,
		Message:        message,
		StatusCode:     statusCode,
		NetworkSubtype: classifyIfSet(statusCode, err),
		Err:            err,
	}
}

// NewInvalidRegionError creates an InvalidRegionCode error
func NewInvalidRegionError(code string) *Error {
	return &Error{
		Type:    ErrTypeInvalidRegion,
		Message: fmt.Sprintf("region code %q is not in the catalog", code),
		Region:  code,
	}
}

// NewNoListingsError creates a NoListingsFound error
func NewNoListingsError(code string) *Error {
	return &Error{
		Type:    ErrTypeNoListings,
		Message: fmt.Sprintf("no listings found for region %s", code),
		Region:  code,
	}
}

// NewPageFetchError creates a PageFetchFailed error
func NewPageFetchError(code string, page, statusCode int, err error) *Error {
	msg := fmt.Sprintf("page %d of region %s", page, code)
	if statusCode != 0 {
		msg = fmt.Sprintf("%s returned HTTP %d", msg, statusCode)
	}
	return &Error{
		Type:           ErrTypePageFetch,
		Message:        msg,
		Region:         code,
		Page:           page,
		StatusCode:     statusCode,
		NetworkSubtype: classifyIfSet(statusCode, err),
		Err:            err,
	}
}

func classifyIfSet(statusCode int, err error) NetworkSubtype {
	if statusCode != 0 || err == nil {
		return NetworkNone
	}
	return ClassifyNetworkError(err)
}

func isType(err error, t ErrorType) bool {
	var dirErr *Error
	if errors.As(err, &dirErr) {
		return dirErr.Type == t
	}
	return false
}

// IsCatalogUnavailable checks if an error is a CatalogUnavailable error
func IsCatalogUnavailable(err error) bool {
	return isType(err, ErrTypeCatalogUnavailable)
}

// IsInvalidRegion checks if an error is an InvalidRegionCode error
func IsInvalidRegion(err error) bool {
	return isType(err, ErrTypeInvalidRegion)
}

// IsNoListings checks if an error is a NoListingsFound error
func IsNoListings(err error) bool {
	return isType(err, ErrTypeNoListings)
}

// IsPageFetchFailed checks if an error is a PageFetchFailed error
func IsPageFetchFailed(err error) bool {
	return isType(err, ErrTypePageFetch)
}

// Hint returns troubleshooting tips for a directory error, one per line.
// Returns nil for errors that are not directory errors.
func Hint(err error) []string {
	var dirErr *Error
	if !errors.As(err, &dirErr) {
		return nil
	}

	switch dirErr.Type {
	case ErrTypeCatalogUnavailable, ErrTypePageFetch:
		switch dirErr.NetworkSubtype {
		case NetworkTimeout:
			return []string{
				"The directory did not respond in time",
				"Try raising --fetch-timeout",
				"Lower --fetch-workers or set --rate if the site is throttling",
			}
		case NetworkConnectionRefused:
			return []string{
				"The directory refused the connection",
				"Check --base-url points at a live directory",
			}
		case NetworkDNS:
			return []string{
				"Could not resolve the directory host",
				"Check your DNS settings and --base-url",
			}
		case NetworkUnreachable:
			return []string{
				"The directory host is unreachable",
				"Check your network connection",
			}
		}
		if dirErr.StatusCode == 403 || dirErr.StatusCode == 429 {
			return []string{
				fmt.Sprintf("The directory rejected the request (HTTP %d)", dirErr.StatusCode),
				"Set --rate to slow down requests",
				"Override request headers in the config file",
			}
		}
		if dirErr.StatusCode >= 500 {
			return []string{
				fmt.Sprintf("The directory returned a server error (HTTP %d)", dirErr.StatusCode),
				"Try again later",
			}
		}
		return []string{
			"Check your network connection",
			"Run with --log-level debug for request details",
		}

	case ErrTypeInvalidRegion:
		return []string{
			"Run 'argus countries' to list valid region codes",
			"Region codes are two letters, e.g. US or JP",
		}

	case ErrTypeNoListings:
		return []string{"The region has no camera listings at the moment"}
	}

	return nil
}

// ShortMessage returns a concise, user-facing description of err
func ShortMessage(err error) string {
	var dirErr *Error
	if !errors.As(err, &dirErr) {
		return err.Error()
	}

	switch dirErr.Type {
	case ErrTypeCatalogUnavailable:
		if dirErr.StatusCode != 0 {
			return fmt.Sprintf("Directory catalog unavailable (HTTP %d)", dirErr.StatusCode)
		}
		return "Directory catalog unavailable"
	case ErrTypePageFetch:
		return strings.TrimSpace(fmt.Sprintf("Page %d failed %s", dirErr.Page, subtypeSuffix(dirErr)))
	default:
		return dirErr.Message
	}
}

func subtypeSuffix(e *Error) string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("(HTTP %d)", e.StatusCode)
	}
	if e.NetworkSubtype != NetworkNone {
		return "(" + e.NetworkSubtype.String() + ")"
	}
	return ""
}
