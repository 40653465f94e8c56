package textutil

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	blockLatexRe  = regexp.MustCompile(`\\\[\s*([\s\S]+?)\s*\\\]`)
	inlineLatexRe = regexp.MustCompile(`\\\(\s*([\s\S]+?)\s*\\\)`)
	citationRe    = regexp.MustCompile(`【([0-9]{0,2})\^】`)
	validURLRe    = regexp.MustCompile(`(?i)(https?|ftp|file|ssh)://[-A-Z0-9+&@#/%?=~_|!:,.;]*[-A-Z0-9+&@#/%=~_|]`)
	externalRe    = regexp.MustCompile(`^(https?:|mailto:|tel:)`)
)

// ConvertLatex rewrites \[..\] display math to $$..$$ and \(..\) inline
// math to $..$, trimming whitespace inside the delimiters.
func ConvertLatex(s string) string {
	s = blockLatexRe.ReplaceAllString(s, "$$$$${1}$$$$")
	return inlineLatexRe.ReplaceAllString(s, "$$${1}$$")
}

// HasCitation reports whether s contains a 【n^】 citation marker.
func HasCitation(s string) bool {
	return citationRe.MatchString(s)
}

// ParseCitations replaces 【n^】 markers with superscript citation tags
// pointing back at the answer with the given index.
func ParseCitations(s string, index int) string {
	return citationRe.ReplaceAllStringFunc(s, func(m string) string {
		n := citationRe.FindStringSubmatch(m)[1]
		return fmt.Sprintf("<sup class='citation' data-parents-index='%d'>%s</sup>", index, n)
	})
}

// QueryParam returns the first value of name in the query part of href
// (everything after the last "?"). Matching is case-insensitive and the
// value is returned undecoded.
func QueryParam(name, href string) (string, bool) {
	search := href[strings.LastIndex(href, "?")+1:]
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name) + `=([^&?]*)`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch("?" + search)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsValidURL reports whether s contains an http, https, ftp, file or ssh URL.
func IsValidURL(s string) bool {
	return validURLRe.MatchString(s)
}

// IsExternal reports whether path leaves the application.
func IsExternal(path string) bool {
	return externalRe.MatchString(path)
}

// NewID returns a random v4 UUID.
func NewID() string {
	return uuid.NewString()
}
