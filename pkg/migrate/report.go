package migrate

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// FileResult is the outcome of converting one file.
type FileResult struct {
	Path       string        `json:"path"                 yaml:"path"`
	Rel        string        `json:"rel"                  yaml:"rel"`
	Output     string        `json:"output,omitempty"     yaml:"output,omitempty"`
	Status     Status        `json:"status"               yaml:"status"`
	Shape      string        `json:"shape,omitempty"      yaml:"shape,omitempty"`
	Language   string        `json:"language,omitempty"   yaml:"language,omitempty"`
	Lines      int           `json:"lines"                yaml:"lines"`
	Imports    int           `json:"imports"              yaml:"imports"`
	Components int           `json:"components"           yaml:"components"`
	Bytes      int           `json:"bytes"                yaml:"bytes"`
	Duration   time.Duration `json:"duration_ns"          yaml:"duration_ns"`
	Error      string        `json:"error,omitempty"      yaml:"error,omitempty"`
}

func (f FileResult) fail(err error) FileResult {
	f.Status = StatusFailed
	f.Error = err.Error()

	return f
}

// Report summarizes a run.
type Report struct {
	Total     int          `json:"total"     yaml:"total"`
	Converted int          `json:"converted" yaml:"converted"`
	Unchanged int          `json:"unchanged" yaml:"unchanged"`
	Failed    int          `json:"failed"    yaml:"failed"`
	Skipped   int          `json:"skipped"   yaml:"skipped"`
	Files     []FileResult `json:"files"     yaml:"files"`
}

func newReport(files []FileResult) *Report {
	rep := &Report{Total: len(files), Files: files}

	for _, f := range files {
		switch f.Status {
		case StatusConverted:
			rep.Converted++
		case StatusUnchanged:
			rep.Unchanged++
		case StatusFailed:
			rep.Failed++
		case StatusSkipped:
			rep.Skipped++
		}
	}

	return rep
}

// HasFailures reports whether any file failed to convert.
func (r *Report) HasFailures() bool {
	return r.Failed > 0
}

// Changed returns the files whose content was or would be rewritten.
func (r *Report) Changed() []FileResult {
	var out []FileResult

	for _, f := range r.Files {
		if f.Status == StatusConverted {
			out = append(out, f)
		}
	}

	return out
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(r)
	if err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}

	return nil
}

// WriteYAML writes the report as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(r)
	if err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("close yaml encoder: %w", err)
	}

	return nil
}
