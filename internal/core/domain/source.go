package domain

import "strings"

// SourceTag identifies the marketplace a listing originates from.
type SourceTag string

const (
	SourceMule        SourceTag = "mule"
	SourceBunjang     SourceTag = "bunjang"
	SourceDanggn      SourceTag = "danggn"
	SourceJoonggonara SourceTag = "joonggonara"
	SourceOther       SourceTag = "other"

	// SourceCatalog marks catalog-origin (shopping API) items. It is not a
	// user-selectable listing source.
	SourceCatalog SourceTag = "naver"
)

// sourceRules is an ordered list of substring checks against the
// lower-cased URL. Order is behaviorally significant and first-match-wins:
// a URL carrying several vendor tokens resolves to whichever rule runs
// first. The joonggonara rule needs cafe.naver.com to co-occur with the
// cafe name, since a bare cafe.naver.com link could be any cafe.
var sourceRules = []struct {
	tag   SourceTag
	match func(url string) bool
}{
	{SourceMule, func(u string) bool { return strings.Contains(u, "mule") }},
	{SourceBunjang, func(u string) bool { return strings.Contains(u, "bunjang") }},
	{SourceDanggn, func(u string) bool {
		return strings.Contains(u, "daangn") || strings.Contains(u, "danggeun")
	}},
	{SourceJoonggonara, func(u string) bool {
		if strings.Contains(u, "joongna") {
			return true
		}
		return strings.Contains(u, "cafe.naver.com") && strings.Contains(u, "joonggonara")
	}},
}

// ClassifySource maps a listing URL to its marketplace tag.
// Total: unrecognized input maps to SourceOther, never fails.
func ClassifySource(url string) SourceTag {
	lower := strings.ToLower(strings.TrimSpace(url))
	for _, rule := range sourceRules {
		if rule.match(lower) {
			return rule.tag
		}
	}
	return SourceOther
}

// allowedDomains are the marketplaces a listing link may point at.
var allowedDomains = []string{
	"mule.co.kr",
	"bunjang.co.kr",
	"daangn.com",
	"danggeun.com",
	"cafe.naver.com",
	"joongna.com",
	"secondhand.co.kr",
}

// NormalizeLink trims a raw link and prefixes https:// when no scheme is
// present. Submission-time classification runs on the normalized link and
// is what gets persisted.
func NormalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		return "https://" + link
	}
	return link
}

// IsAllowedLink reports whether a normalized link points at a permitted
// marketplace over http(s). Non-http schemes (javascript:, data:) are
// rejected outright.
func IsAllowedLink(link string) bool {
	lower := strings.ToLower(strings.TrimSpace(link))
	rest, ok := strings.CutPrefix(lower, "https://")
	if !ok {
		rest, ok = strings.CutPrefix(lower, "http://")
	}
	if !ok {
		return false
	}
	host := rest
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return false
	}
	for _, allowed := range allowedDomains {
		if strings.Contains(host, allowed) {
			return true
		}
	}
	return false
}
