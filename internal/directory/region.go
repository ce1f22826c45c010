package directory

import (
	"sort"
	"strings"
)

// Region is one entry of the directory catalog
type Region struct {
	Code  string // Short region code (e.g., "US")
	Name  string // Display name (e.g., "United States")
	Count int    // Number of listed cameras as reported by the directory
}

// Catalog maps region codes to regions. Codes are unique by construction.
type Catalog map[string]Region

// Lookup returns the region for code. The lookup is exact; callers that
// accept user input should normalize it with NormalizeCode first.
func (c Catalog) Lookup(code string) (Region, error) {
	r, ok := c[code]
	if !ok {
		return Region{}, NewInvalidRegionError(code)
	}
	return r, nil
}

// Codes returns all region codes in ascending order
func (c Catalog) Codes() []string {
	codes := make([]string, 0, len(c))
	for code := range c {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Regions returns all regions ordered by code
func (c Catalog) Regions() []Region {
	codes := c.Codes()
	regions := make([]Region, len(codes))
	for i, code := range codes {
		regions[i] = c[code]
	}
	return regions
}

// Total returns the sum of camera counts across the catalog
func (c Catalog) Total() int {
	total := 0
	for _, r := range c {
		total += r.Count
	}
	return total
}

// NormalizeCode trims and upper-cases user-entered region codes
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
