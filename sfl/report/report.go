// Package report renders a ranked spectrum as flat or hierarchical XML,
// JSON, YAML or a text table.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/sfl-lite/sfl/domain"
)

// Format is an output encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXML, FormatJSON, FormatYAML, FormatText:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "txt", "table":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unsupported output format %q", domain.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension of the format.
func (f Format) Extension() string {
	if f == FormatText {
		return ".txt"
	}
	return "." + string(f)
}

// Report is the serializable form of a rank result.
type Report struct {
	SessionID    string    `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	Project      string    `json:"project" yaml:"project"`
	Heuristic    string    `json:"heuristic" yaml:"heuristic"`
	TotalTests   int       `json:"total_tests" yaml:"total_tests"`
	FailedTests  int       `json:"failed_tests" yaml:"failed_tests"`
	Requirements int       `json:"requirements" yaml:"requirements"`
	TimeSpentMs  int64     `json:"time_spent_ms" yaml:"time_spent_ms"`
	GeneratedAt  time.Time `json:"generated_at" yaml:"generated_at"`
	Entries      []Entry   `json:"entries" yaml:"entries"`
}

// Entry is one ranked requirement.
type Entry struct {
	Position        int     `json:"position" yaml:"position"`
	Kind            string  `json:"kind" yaml:"kind"`
	Key             string  `json:"key" yaml:"key"`
	Package         string  `json:"package,omitempty" yaml:"package,omitempty"`
	Class           string  `json:"class" yaml:"class"`
	Line            int     `json:"line,omitempty" yaml:"line,omitempty"`
	Method          string  `json:"method,omitempty" yaml:"method,omitempty"`
	DuaID           int     `json:"dua_id,omitempty" yaml:"dua_id,omitempty"`
	Def             int     `json:"def,omitempty" yaml:"def,omitempty"`
	Use             int     `json:"use,omitempty" yaml:"use,omitempty"`
	Target          int     `json:"target,omitempty" yaml:"target,omitempty"`
	Var             string  `json:"var,omitempty" yaml:"var,omitempty"`
	CoveredByPassed int     `json:"cep" yaml:"cep"`
	CoveredByFailed int     `json:"cef" yaml:"cef"`
	Score           float64 `json:"score" yaml:"score"`
}

// New builds a report from a rank result.
func New(result *domain.RankResult) *Report {
	s := result.Summary
	r := &Report{
		SessionID:    s.SessionID,
		Project:      s.Project,
		Heuristic:    s.Heuristic,
		TotalTests:   s.TotalTests,
		FailedTests:  s.FailedTests,
		Requirements: s.Requirements,
		TimeSpentMs:  s.Elapsed.Milliseconds(),
		GeneratedAt:  s.FinishedAt.UTC(),
		Entries:      make([]Entry, 0, len(result.Entries)),
	}
	for _, e := range result.Entries {
		r.Entries = append(r.Entries, entryOf(e))
	}
	return r
}

func entryOf(e domain.RankEntry) Entry {
	req := e.Requirement
	entry := Entry{
		Position:        e.Position,
		Kind:            req.Kind.String(),
		Key:             req.Key(),
		Package:         req.PackageName(),
		Class:           req.ClassName,
		CoveredByPassed: req.CoveredByPassed,
		CoveredByFailed: req.CoveredByFailed,
		Score:           e.Score,
	}
	switch req.Kind {
	case domain.KindLine:
		entry.Line = req.Line
	case domain.KindDefUse:
		entry.Method = req.MethodSignature
		entry.DuaID = req.DuaID
		entry.Def = req.Def
		entry.Use = req.Use
		entry.Target = req.Target
		entry.Var = req.Var
	}
	return entry
}

// Options controls rendering.
type Options struct {
	// Format is the output encoding.
	Format Format

	// OutputType selects the flat or hierarchical layout. Only XML has a
	// hierarchical layout; the other formats are always flat.
	OutputType string
}

// Write renders the report to w.
func Write(w io.Writer, r *Report, opts Options) error {
	switch opts.Format {
	case FormatXML, "":
		if strings.EqualFold(opts.OutputType, domain.OutputHierarchical) {
			return WriteHierarchicalXML(w, r)
		}
		return WriteFlatXML(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	case FormatText:
		return WriteText(w, r)
	default:
		return fmt.Errorf("%w: unsupported output format %q", domain.ErrInvalidArgument, opts.Format)
	}
}

// WriteFile renders the report into dir/name<ext> and returns the path.
func WriteFile(dir, name string, r *Report, opts Options) (string, error) {
	if opts.Format == "" {
		opts.Format = FormatXML
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, name+opts.Format.Extension())

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	if err := Write(f, r, opts); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// WriteYAML writes the report as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return encoder.Close()
}
