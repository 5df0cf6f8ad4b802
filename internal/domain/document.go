package domain

import "time"

// Section is one titled span of a filing document.
type Section struct {
	Title string
	Item  string // canonical item label ("Item 1A.") when the title matches one
	Text  string
}

// Document is the parsed plain-text view of a filing.
type Document struct {
	CIK             string
	AccessionNumber string
	FormType        string
	FilingDate      time.Time
	Sections        []Section
}

// FullText concatenates all section bodies.
func (d *Document) FullText() string {
	var n int
	for i := range d.Sections {
		n += len(d.Sections[i].Text) + 2
	}
	buf := make([]byte, 0, n)
	for i := range d.Sections {
		if i > 0 {
			buf = append(buf, '\n', '\n')
		}
		buf = append(buf, d.Sections[i].Text...)
	}
	return string(buf)
}
