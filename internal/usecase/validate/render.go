package validate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects a report rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat maps a flag value to a Format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want text, json, yaml or csv)", s)
	}
}

type summary struct {
	Errors   int `json:"errors" yaml:"errors"`
	Warnings int `json:"warnings" yaml:"warnings"`
}

type document struct {
	Summary summary `json:"summary" yaml:"summary"`
	Report  `yaml:",inline"`
}

// Write renders the report to w.
func (r *Report) Write(w io.Writer, format Format) error {
	doc := document{Summary: summary{Errors: r.ErrorCount(), Warnings: r.WarningCount()}, Report: *r}
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return r.writeCSV(w)
	default:
		return r.writeText(w)
	}
}

func (r *Report) writeText(w io.Writer) error {
	for _, issue := range r.Issues {
		if _, err := fmt.Fprintf(w, "%-7s %-10s %-12s %s\n",
			strings.ToUpper(string(issue.Severity)), issue.Level, issue.Check, issue.Message); err != nil {
			return err
		}
	}
	s := r.Stats
	_, err := fmt.Fprintf(w, "words=%d definitions=%d examples=%d placeholders=%d errors=%d warnings=%d\n",
		s.Words, s.Definitions, s.Examples, s.Placeholders(), r.ErrorCount(), r.WarningCount())
	return err
}

func (r *Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"severity", "level", "check", "subject_id", "message"}); err != nil {
		return err
	}
	for _, issue := range r.Issues {
		record := []string{
			string(issue.Severity),
			string(issue.Level),
			string(issue.Check),
			strconv.FormatInt(issue.SubjectID, 10),
			issue.Message,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
