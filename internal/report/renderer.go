package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fakeyudi/splitwatch/internal/annotation"
	"github.com/fakeyudi/splitwatch/internal/split"
)

// Renderer serializes a Report to bytes. Identical reports render to
// identical bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// TextRenderer renders the plain-text export:
//
//	total MM:SS.mmm
//	=== === === ===
//	p.NN MM:SS.mmm   (one per split)
//
//	=== === === ===
//	<note>           (one per committed note)
//
//	=== === === ===
//	=== === === ===
type TextRenderer struct{}

func (t *TextRenderer) Render(r *Report) ([]byte, error) {
	return []byte(Text(r)), nil
}

// Text is the infallible form of TextRenderer.Render.
func Text(r *Report) string {
	var sb strings.Builder
	sep := Separator + "\n"

	fmt.Fprintf(&sb, "total %s\n", FormatDuration(r.Total))
	sb.WriteString(sep)
	for _, s := range r.Splits {
		fmt.Fprintf(&sb, "%s %s\n", split.Label(s.Index), FormatDuration(s.Duration))
	}
	sb.WriteString("\n")
	sb.WriteString(sep)
	for _, a := range r.Annotations {
		sb.WriteString(a.Text)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(sep)
	sb.WriteString(sep)
	return sb.String()
}

// document is the shape shared by the json and yaml forms.
type document struct {
	SessionID   string          `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Total       string          `json:"total" yaml:"total"`
	TotalMs     int64           `json:"total_ms" yaml:"total_ms"`
	Splits      []splitDoc      `json:"splits" yaml:"splits"`
	Annotations []annotationDoc `json:"annotations" yaml:"annotations"`
}

type splitDoc struct {
	Index      int    `json:"index" yaml:"index"`
	Label      string `json:"label" yaml:"label"`
	Duration   string `json:"duration" yaml:"duration"`
	DurationMs int64  `json:"duration_ms" yaml:"duration_ms"`
}

type annotationDoc struct {
	Page int    `json:"page,omitempty" yaml:"page,omitempty"`
	Text string `json:"text" yaml:"text"`
}

func toDocument(r *Report) document {
	doc := document{
		SessionID:   r.SessionID,
		Total:       FormatDuration(r.Total),
		TotalMs:     r.Total.Milliseconds(),
		Splits:      make([]splitDoc, 0, len(r.Splits)),
		Annotations: make([]annotationDoc, 0, len(r.Annotations)),
	}
	for _, s := range r.Splits {
		doc.Splits = append(doc.Splits, splitDoc{
			Index:      s.Index,
			Label:      split.Label(s.Index),
			Duration:   FormatDuration(s.Duration),
			DurationMs: s.Duration.Milliseconds(),
		})
	}
	for _, a := range r.Annotations {
		doc.Annotations = append(doc.Annotations, annotationDoc{Page: a.Page, Text: a.Text})
	}
	return doc
}

func fromDocument(doc document) *Report {
	r := &Report{
		SessionID: doc.SessionID,
		Total:     time.Duration(doc.TotalMs) * time.Millisecond,
	}
	for _, s := range doc.Splits {
		r.Splits = append(r.Splits, split.Record{
			Index:    s.Index,
			Duration: time.Duration(s.DurationMs) * time.Millisecond,
		})
	}
	for _, a := range doc.Annotations {
		r.Annotations = append(r.Annotations, annotation.Entry{Page: a.Page, Text: a.Text})
	}
	return r
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (j *JSONRenderer) Render(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(toDocument(r), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// YAMLRenderer renders a Report as YAML.
type YAMLRenderer struct{}

func (y *YAMLRenderer) Render(r *Report) ([]byte, error) {
	data, err := yaml.Marshal(toDocument(r))
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}
