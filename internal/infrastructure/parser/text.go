package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// NewsAPI truncates content and appends a marker such as "… [+2841 chars]".
var truncationMarker = regexp.MustCompile(`\s*…?\s*\[\+\d+ chars\]\s*$`)

// CleanText strips markup from provider text and collapses whitespace.
func CleanText(raw string) string {
	text := raw
	if strings.ContainsAny(text, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}
	text = truncationMarker.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// articleID derives a stable identifier from the article link, or from its
// source and title when no link is available.
func articleID(link, source, title string) string {
	key := strings.TrimSpace(link)
	if key == "" {
		key = strings.ToLower(strings.TrimSpace(source)) + "\n" + strings.TrimSpace(title)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
