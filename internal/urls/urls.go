package urls

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultDirectory is the origin of the public camera directory
const DefaultDirectory = "http://www.insecam.org"

// CatalogPath serves the JSON region catalog
const CatalogPath = "/en/jsoncountries/"

// RegionPathFormat is page 0 of a region listing; it carries the pager token
const RegionPathFormat = "/en/bycountry/%s"

// PagePathFormat is an explicit listing page of a region
const PagePathFormat = "/en/bycountry/%s/?page=%d"

// ProjectURL is shown in the banner and version output
const ProjectURL = "https://github.com/muurk/argus"

// Catalog returns the catalog URL for the directory at base
func Catalog(base string) string {
	return trimBase(base) + CatalogPath
}

// Region returns page 0 of the region listing
func Region(base, code string) string {
	return trimBase(base) + fmt.Sprintf(RegionPathFormat, url.PathEscape(code))
}

// Page returns the listing page with the given index
func Page(base, code string, page int) string {
	return trimBase(base) + fmt.Sprintf(PagePathFormat, url.PathEscape(code), page)
}

func trimBase(base string) string {
	if base == "" {
		base = DefaultDirectory
	}
	return strings.TrimRight(base, "/")
}
