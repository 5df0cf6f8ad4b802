package filing

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/edgardesk/edgardesk/internal/domain"
)

// itemHeadingPattern matches SEC item headings like "Item 1.", "ITEM 7A." or
// "Item 1A:" at the start of a line.
var itemHeadingPattern = regexp.MustCompile(`(?i)^item\s+(\d{1,2}[a-z]?)[.:)\s]`)

// maxHeadingLen separates true headings from body sentences that merely start
// with "Item N". Real headings are short.
const maxHeadingLen = 120

// extractText strips an HTML document to plain text, one line per block.
// Script, style and head subtrees are dropped.
func extractText(data []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var (
		sb   strings.Builder
		skip int
	)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skippedTag(tag) {
				skip++
			}
			if blockTag(tag) {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skippedTag(tag) && skip > 0 {
				skip--
			}
			if blockTag(tag) {
				sb.WriteByte('\n')
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			sb.Write(tokenizer.Text())
		}
	}
}

func skippedTag(tag string) bool {
	switch tag {
	case "script", "style", "head", "title", "noscript":
		return true
	}
	return false
}

func blockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "tr", "td", "th", "table", "li", "ul", "ol",
		"h1", "h2", "h3", "h4", "h5", "h6", "hr", "section", "article":
		return true
	}
	return false
}

// splitSections splits extracted filing text into sections on item headings.
// Text before the first heading, and documents with no headings at all, land
// in a single untitled section.
func splitSections(text string) []domain.Section {
	var (
		sections []domain.Section
		current  = domain.Section{Title: "Full Document"}
		body     strings.Builder
	)

	flush := func() {
		current.Text = strings.TrimSpace(body.String())
		if current.Text != "" {
			sections = append(sections, current)
		}
		body.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		line = collapseSpaces(line)
		if line == "" {
			continue
		}

		if m := itemHeadingPattern.FindStringSubmatch(line); m != nil && len(line) <= maxHeadingLen {
			flush()
			current = domain.Section{
				Title: line,
				Item:  strings.ToUpper(m[1]),
			}
			continue
		}

		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()

	return sections
}

// parseDocument converts a raw EDGAR document into section-split plain text.
func parseDocument(data []byte) []domain.Section {
	return splitSections(extractText(data))
}

var spacesPattern = regexp.MustCompile(`[\s\x{00a0}]+`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesPattern.ReplaceAllString(s, " "))
}
