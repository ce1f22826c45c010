package directory

import (
	"regexp"
	"strconv"
)

var (
	// endpointPattern matches scheme://ipv4:port. Octets are not range
	// checked, only digits-and-dots syntax.
	endpointPattern = regexp.MustCompile(`https?://\d+\.\d+\.\d+\.\d+:\d+`)

	// lastPagePattern matches the pager script call on listing pages,
	// e.g. pagenavigator("?page=", 42, 1);
	lastPagePattern = regexp.MustCompile(`pagenavigator\("\?page=", (\d+)`)
)

// ExtractEndpoints returns every endpoint URL in body in document order.
// Duplicates are preserved. The result is never nil.
func ExtractEndpoints(body []byte) []string {
	matches := endpointPattern.FindAll(body, -1)
	endpoints := make([]string, len(matches))
	for i, m := range matches {
		endpoints[i] = string(m)
	}
	return endpoints
}

// ParseLastPage returns the last page index advertised by the first pager
// token in body. ok is false when no token is present.
func ParseLastPage(body []byte) (last int, ok bool) {
	m := lastPagePattern.FindSubmatch(body)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(string(m[1]))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
