// Package urlcheck normalizes, validates and classifies user-supplied page
// URLs and probes whether they answer at all.
package urlcheck

import (
	"net/url"
	"strings"
)

// PageType distinguishes a site root from a deeper page.
type PageType string

const (
	PageHomepage     PageType = "homepage"
	PageSpecificPage PageType = "specific-page"
)

// URLInfo describes what kind of page a URL points at.
type URLInfo struct {
	Type        PageType `json:"type"`
	Domain      string   `json:"domain"`
	Path        string   `json:"path"`
	Description string   `json:"description"`

	// Valid is false when the URL could not be parsed and the other fields
	// hold fallback values.
	Valid bool `json:"valid"`
}

// testDomains are reserved or local hosts that cannot be audited.
var testDomains = map[string]struct{}{
	"example.com": {},
	"example.org": {},
	"example.net": {},
	"test.com":    {},
	"localhost":   {},
}

// pathKinds is matched in order against the URL path.
var pathKinds = []struct {
	fragments   []string
	description string
}{
	{[]string{"/blog/", "/article/"}, "Article/Blog"},
	{[]string{"/product/", "/shop/"}, "Product page"},
	{[]string{"/contact", "/about"}, "Institutional page"},
	{[]string{"/search", "/query"}, "Search page"},
}

// Normalize trims the input, defaults the scheme to https and returns the
// canonical absolute form. Unparseable input is returned with the scheme
// prefix but otherwise untouched.
func Normalize(input string) string {
	s := strings.TrimSpace(input)
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s
	}
	u.Host = strings.ToLower(u.Host)
	if u.Path == "" && u.RawPath == "" {
		u.Path = "/"
	}
	return u.String()
}

// IsValid reports whether raw is an absolute http or https URL with a host.
func IsValid(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}

// IsTestDomain reports whether the URL's host is a reserved test domain.
func IsTestDomain(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	_, ok := testDomains[strings.ToLower(u.Hostname())]
	return ok
}

// Classify labels the URL as a homepage or a specific page. It never fails;
// unparseable input yields a homepage record with Valid set to false.
func Classify(raw string) URLInfo {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return URLInfo{
			Type:        PageHomepage,
			Domain:      raw,
			Path:        "/",
			Description: "Invalid URL",
		}
	}

	info := URLInfo{
		Domain: u.Hostname(),
		Path:   u.Path,
		Valid:  true,
	}
	if u.Path == "" || u.Path == "/" {
		info.Type = PageHomepage
		info.Path = "/"
		info.Description = "Homepage"
		return info
	}

	info.Type = PageSpecificPage
	info.Description = "Specific page"
	for _, k := range pathKinds {
		if containsAny(u.Path, k.fragments) {
			info.Description = k.description
			break
		}
	}
	return info
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
