package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/splitwatch/internal/annotation"
	"github.com/fakeyudi/splitwatch/internal/split"
)

// Parser deserializes an exported report.
type Parser interface {
	Parse(data []byte) (*Report, error)
}

// ParseError locates a problem in a text report. Line is 1-based.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("not a valid report: line %d: %s", e.Line, e.Msg)
}

var (
	splitLine  = regexp.MustCompile(`^p\.(\d{2,}) (\d{2,}:\d{2}\.\d{3})$`)
	headerLine = regexp.MustCompile(`^p\.(\d{2,})$`)
)

// TextParser parses the plain-text export. Notes are told apart by their
// page header lines, so a block of text that precedes the first header is
// read back as a single page-less note.
//
// The text form is lossy for two kinds of notes: consecutive page-less notes
// merge into one, and a body line shaped like a header ("p.07") starts a new
// note. Reports whose notes all carry a page header and none of those lines
// round-trip exactly; use json or yaml when that is not enough.
type TextParser struct{}

func (p *TextParser) Parse(data []byte) (*Report, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	trailer := "\n" + Separator + "\n" + Separator + "\n"
	if !strings.HasSuffix(content, trailer) {
		return nil, &ParseError{Line: strings.Count(content, "\n") + 1, Msg: "missing closing separators"}
	}
	content = strings.TrimSuffix(content, trailer)

	lines := strings.Split(content, "\n")
	r := &Report{}

	total, ok := strings.CutPrefix(lines[0], "total ")
	if !ok {
		return nil, &ParseError{Line: 1, Msg: `expected "total MM:SS.mmm"`}
	}
	d, err := ParseDuration(total)
	if err != nil {
		return nil, &ParseError{Line: 1, Msg: err.Error()}
	}
	r.Total = d

	if len(lines) < 2 || lines[1] != Separator {
		return nil, &ParseError{Line: 2, Msg: "expected separator"}
	}

	i := 2
	for ; i < len(lines) && lines[i] != ""; i++ {
		m := splitLine.FindStringSubmatch(lines[i])
		if m == nil {
			return nil, &ParseError{Line: i + 1, Msg: fmt.Sprintf("malformed split %q", lines[i])}
		}
		idx, _ := strconv.Atoi(m[1])
		if idx != len(r.Splits)+1 {
			return nil, &ParseError{Line: i + 1, Msg: fmt.Sprintf("split index %d out of sequence", idx)}
		}
		dur, err := ParseDuration(m[2])
		if err != nil {
			return nil, &ParseError{Line: i + 1, Msg: err.Error()}
		}
		r.Splits = append(r.Splits, split.Record{Index: idx, Duration: dur})
	}
	i++ // blank line closing the splits section
	if i >= len(lines) || lines[i] != Separator {
		return nil, &ParseError{Line: i + 1, Msg: "expected separator after splits"}
	}
	i++

	// Whatever is left is the notes section, each note followed by "\n".
	r.Annotations = parseNotes(lines[i:])
	return r, nil
}

func parseNotes(lines []string) []annotation.Entry {
	// The section is either empty or ends with the newline of the last note,
	// which leaves one trailing empty element after the split.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	var (
		entries []annotation.Entry
		cur     *annotation.Entry
		body    []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.Join(body, "\n")
		entries = append(entries, *cur)
		cur, body = nil, nil
	}
	for _, line := range lines {
		if m := headerLine.FindStringSubmatch(line); m != nil {
			flush()
			page, _ := strconv.Atoi(m[1])
			cur = &annotation.Entry{Page: page}
			body = []string{line}
			continue
		}
		if cur == nil {
			cur = &annotation.Entry{}
		}
		body = append(body, line)
	}
	flush()
	return entries
}

// JSONParser parses the json export.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*Report, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON report: %w", err)
	}
	return fromDocument(doc), nil
}

// YAMLParser parses the yaml export.
type YAMLParser struct{}

func (p *YAMLParser) Parse(data []byte) (*Report, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML report: %w", err)
	}
	return fromDocument(doc), nil
}
