package manualservice

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/tebiki/internal/models"
)

const (
	freeeHost         = "support.freee.co.jp"
	freeeDefaultTitle = "freee人事労務マニュアル"
	genericLinkTitle  = "参考リンク"
)

var freeeArticleRe = regexp.MustCompile(`articles/\d+-(.+?)(?:\?|#|$)`)

// ReferenceTitle derives a display title for a reference URL. freee support
// articles carry their title as a slug after the article number.
func ReferenceTitle(rawURL string) string {
	if !strings.Contains(rawURL, freeeHost) {
		return genericLinkTitle
	}
	m := freeeArticleRe.FindStringSubmatch(rawURL)
	if m == nil || m[1] == "" {
		return freeeDefaultTitle
	}
	if decoded, err := url.PathUnescape(m[1]); err == nil {
		return decoded
	}
	return m[1]
}

// AddReferenceLink appends rawURL to links unless it is blank or already present.
func AddReferenceLink(links []models.ReferenceLink, rawURL string) []models.ReferenceLink {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return links
	}
	for _, l := range links {
		if l.URL == rawURL {
			return links
		}
	}
	return append(links, models.ReferenceLink{Title: ReferenceTitle(rawURL), URL: rawURL})
}

// NormalizeReferenceLinks trims URLs, drops blanks and duplicates, and fills
// in missing titles. First occurrence wins.
func NormalizeReferenceLinks(links []models.ReferenceLink) []models.ReferenceLink {
	out := make([]models.ReferenceLink, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for _, l := range links {
		u := strings.TrimSpace(l.URL)
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		title := strings.TrimSpace(l.Title)
		if title == "" {
			title = ReferenceTitle(u)
		}
		out = append(out, models.ReferenceLink{Title: title, URL: u})
	}
	return out
}
