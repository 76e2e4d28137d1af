package dataset

import (
	"fmt"
	"strings"
)

// JoinMode selects how deep the flattened view goes.
type JoinMode string

const (
	JoinWords       JoinMode = "word"
	JoinDefinitions JoinMode = "definition"
	JoinExamples    JoinMode = "example"
)

// ParseJoinMode accepts word, definition or example.
func ParseJoinMode(s string) (JoinMode, error) {
	switch m := JoinMode(strings.ToLower(strings.TrimSpace(s))); m {
	case JoinWords, JoinDefinitions, JoinExamples:
		return m, nil
	case "":
		return JoinExamples, nil
	default:
		return "", fmt.Errorf("unknown join mode %q", s)
	}
}

// JoinColumns is the header of the flattened view.
var JoinColumns = []string{
	"word_id", "day_no", "word_no", "word",
	"definition_id", "sense_no", "definition", "part_of_speech",
	"example_id", "example_no", "example_sentence",
}

// Columns returns the prefix of JoinColumns the mode fills.
func (m JoinMode) Columns() []string {
	switch m {
	case JoinWords:
		return JoinColumns[:4]
	case JoinDefinitions:
		return JoinColumns[:8]
	default:
		return JoinColumns
	}
}

// Join flattens the hierarchy with inner-join semantics: a word without
// definitions is dropped in definition and example modes, a definition
// without examples in example mode. Rows are ordered by day, word, sense and
// example ordinal.
func (d *Dataset) Join(mode JoinMode) []Row {
	idx := d.Index()
	var rows []Row
	for _, day := range idx.Days() {
		for _, w := range idx.WordsOfDay(day) {
			base := Row{"word_id": w.ID, "day_no": w.DayNo, "word_no": w.WordNo, "word": w.Text}
			if mode == JoinWords {
				rows = append(rows, base)
				continue
			}
			for _, def := range idx.DefinitionsOf(w.ID) {
				withDef := cloneRow(base)
				withDef["definition_id"] = def.ID
				withDef["sense_no"] = def.SenseNo
				withDef["definition"] = def.Text
				withDef["part_of_speech"] = def.POS()
				if mode == JoinDefinitions {
					rows = append(rows, withDef)
					continue
				}
				for _, ex := range idx.ExamplesOf(def.ID) {
					full := cloneRow(withDef)
					full["example_id"] = ex.ID
					full["example_no"] = ex.ExampleNo
					full["example_sentence"] = ex.Sentence
					rows = append(rows, full)
				}
			}
		}
	}
	return rows
}

func cloneRow(r Row) Row {
	out := make(Row, len(r)+4)
	for k, v := range r {
		out[k] = v
	}
	return out
}
