// Package document is the pager that stands in for the rendering side of a
// review: it splits a text document into numbered pages and tells the
// session which page the reader picked. Nothing in here can affect timing.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// DefaultLinesPerPage is used when a document has no form feeds and no
// page length was configured.
const DefaultLinesPerPage = 40

var (
	// ErrNotText is returned for files that are not UTF-8 text.
	ErrNotText = errors.New("not a text document")
	// ErrNoSuchPage is returned for page numbers outside the document.
	ErrNoSuchPage = errors.New("no such page")
)

// Page is one page of a document. Number is 1-based.
type Page struct {
	Number int
	Lines  []string
}

// Text joins the page's lines.
func (p Page) Text() string {
	return strings.Join(p.Lines, "\n")
}

// Document is a loaded, paginated text file.
type Document struct {
	Path  string
	Pages []Page
}

// Load reads path and paginates it. Form feeds delimit pages when present;
// otherwise every linesPerPage lines form a page.
func Load(path string, linesPerPage int) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotText)
	}
	return &Document{Path: path, Pages: Paginate(string(data), linesPerPage)}, nil
}

// Paginate splits text into pages. The result always has at least one page.
func Paginate(text string, linesPerPage int) []Page {
	if linesPerPage <= 0 {
		linesPerPage = DefaultLinesPerPage
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")

	var chunks [][]string
	if strings.Contains(text, "\f") {
		for _, part := range strings.Split(text, "\f") {
			chunks = append(chunks, strings.Split(strings.Trim(part, "\n"), "\n"))
		}
	} else {
		lines := strings.Split(text, "\n")
		for start := 0; start < len(lines); start += linesPerPage {
			end := min(start+linesPerPage, len(lines))
			chunks = append(chunks, lines[start:end])
		}
	}

	pages := make([]Page, 0, len(chunks))
	for i, lines := range chunks {
		pages = append(pages, Page{Number: i + 1, Lines: lines})
	}
	if len(pages) == 0 {
		pages = append(pages, Page{Number: 1, Lines: []string{""}})
	}
	return pages
}

// Len returns the number of pages.
func (d *Document) Len() int {
	return len(d.Pages)
}

// Page returns page n.
func (d *Document) Page(n int) (Page, error) {
	if n < 1 || n > len(d.Pages) {
		return Page{}, fmt.Errorf("page %d of %d: %w", n, len(d.Pages), ErrNoSuchPage)
	}
	return d.Pages[n-1], nil
}
