// Package sanitize reduces user-submitted text to plain text.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

// Text strips markup, scripts and styles from s and collapses whitespace.
// Input without markup only has its whitespace collapsed.
func Text(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(s)
	}

	doc.Find("script, style, noscript, iframe, object, embed").Each(func(i int, sel *goquery.Selection) {
		sel.Remove()
	})

	return collapse(doc.Find("body").Text())
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
