// Package validate checks a book dataset for referential integrity and
// reports every finding instead of stopping at the first one.
package validate

import (
	"fmt"
	"sort"

	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/samber/lo"
)

// Severity classifies an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Check names the rule that produced an issue.
type Check string

const (
	CheckBook         Check = "book"
	CheckUniqueness   Check = "uniqueness"
	CheckDerivation   Check = "derivation"
	CheckBounds       Check = "bounds"
	CheckReference    Check = "reference"
	CheckCompleteness Check = "completeness"
	CheckPlaceholder  Check = "placeholder"
)

var checkOrder = map[Check]int{
	CheckBook:         0,
	CheckUniqueness:   1,
	CheckDerivation:   2,
	CheckBounds:       3,
	CheckReference:    4,
	CheckCompleteness: 5,
	CheckPlaceholder:  6,
}

var levelOrder = map[entity.Level]int{
	entity.LevelBook:       0,
	entity.LevelWord:       1,
	entity.LevelDefinition: 2,
	entity.LevelExample:    3,
}

// Issue is one finding about one row.
type Issue struct {
	Severity  Severity     `json:"severity" yaml:"severity"`
	Level     entity.Level `json:"level" yaml:"level"`
	Check     Check        `json:"check" yaml:"check"`
	SubjectID int64        `json:"subject_id" yaml:"subject_id"`
	Message   string       `json:"message" yaml:"message"`
}

// Report is the ordered result of one validation run.
type Report struct {
	Issues []Issue       `json:"issues" yaml:"issues"`
	Stats  dataset.Stats `json:"stats" yaml:"stats"`
}

// HasErrors reports whether any issue is an error.
func (r *Report) HasErrors() bool { return r.ErrorCount() > 0 }

// ErrorCount returns the number of error issues.
func (r *Report) ErrorCount() int {
	return lo.CountBy(r.Issues, func(i Issue) bool { return i.Severity == SeverityError })
}

// WarningCount returns the number of warning issues.
func (r *Report) WarningCount() int {
	return lo.CountBy(r.Issues, func(i Issue) bool { return i.Severity == SeverityWarning })
}

// ExitCode is 1 when the report holds an error and 0 otherwise.
func (r *Report) ExitCode() int {
	if r.HasErrors() {
		return 1
	}
	return 0
}

// Filter returns the issues of one severity.
func (r *Report) Filter(sev Severity) []Issue {
	return lo.Filter(r.Issues, func(i Issue, _ int) bool { return i.Severity == sev })
}

// Run validates ds. It never modifies the dataset.
func Run(ds *dataset.Dataset) *Report {
	v := &validator{ds: ds, idx: ds.Index()}
	v.checkBook()
	v.checkWords()
	v.checkDefinitions()
	v.checkExamples()

	sort.SliceStable(v.issues, func(i, j int) bool {
		a, b := v.issues[i], v.issues[j]
		if levelOrder[a.Level] != levelOrder[b.Level] {
			return levelOrder[a.Level] < levelOrder[b.Level]
		}
		if checkOrder[a.Check] != checkOrder[b.Check] {
			return checkOrder[a.Check] < checkOrder[b.Check]
		}
		return a.SubjectID < b.SubjectID
	})
	return &Report{Issues: v.issues, Stats: ds.Stats()}
}

type validator struct {
	ds     *dataset.Dataset
	idx    *dataset.Index
	issues []Issue
}

func (v *validator) add(sev Severity, level entity.Level, check Check, id int64, format string, args ...any) {
	v.issues = append(v.issues, Issue{
		Severity:  sev,
		Level:     level,
		Check:     check,
		SubjectID: id,
		Message:   fmt.Sprintf(format, args...),
	})
}

// shape returns the book fan-out, or false when derivation and bounds checks cannot run.
func (v *validator) shape() (entity.Shape, bool) {
	b := v.ds.Book
	if b == nil || b.MaxWordsPerDay < 1 || b.MaxSensesPerWord < 1 || b.MaxExamplesPerSense < 1 {
		return entity.Shape{}, false
	}
	return b.Shape(), true
}

func (v *validator) checkBook() {
	b := v.ds.Book
	if b == nil {
		v.add(SeverityError, entity.LevelBook, CheckBook, entity.BookID,
			"book metadata missing; derivation and bounds checks skipped")
		return
	}
	if b.ID != entity.BookID {
		v.add(SeverityError, entity.LevelBook, CheckBook, b.ID, "book id %d, expected %d", b.ID, entity.BookID)
	}
	for _, f := range []struct {
		name  string
		value int64
	}{
		{"max_words_per_day", b.MaxWordsPerDay},
		{"max_senses_per_word", b.MaxSensesPerWord},
		{"max_examples_per_sense", b.MaxExamplesPerSense},
	} {
		if f.value < 1 {
			v.add(SeverityError, entity.LevelBook, CheckBook, b.ID,
				"%s is %d; derivation and bounds checks skipped", f.name, f.value)
		}
	}
}

func (v *validator) checkWords() {
	shape, ok := v.shape()
	seenIDs := make(map[int64]struct{}, len(v.ds.Words))
	seenSlots := make(map[[2]int64]int64, len(v.ds.Words))
	for _, w := range v.ds.Words {
		if _, dup := seenIDs[w.ID]; dup {
			v.add(SeverityError, entity.LevelWord, CheckUniqueness, w.ID, "duplicate word_id %d", w.ID)
		}
		seenIDs[w.ID] = struct{}{}
		slot := [2]int64{w.DayNo, w.WordNo}
		if other, dup := seenSlots[slot]; dup {
			v.add(SeverityError, entity.LevelWord, CheckUniqueness, w.ID,
				"day %d word_no %d already used by word %d", w.DayNo, w.WordNo, other)
		} else {
			seenSlots[slot] = w.ID
		}

		if ok {
			if expected := shape.WordID(w.DayNo, w.WordNo); expected != w.ID {
				v.add(SeverityError, entity.LevelWord, CheckDerivation, w.ID,
					"word %d: expected id %d from day %d word_no %d, actual %d", w.ID, expected, w.DayNo, w.WordNo, w.ID)
			}
			if err := entity.CheckWordPosition(w.DayNo, w.WordNo, shape.MaxItemsPerDay); err != nil {
				v.add(SeverityError, entity.LevelWord, CheckBounds, w.ID, "word %d: %v", w.ID, err)
			} else if maxDays := v.ds.Book.MaxDays; maxDays > 0 && w.DayNo > maxDays {
				v.add(SeverityError, entity.LevelWord, CheckBounds, w.ID,
					"word %d: day_no %d out of range [1, %d]", w.ID, w.DayNo, maxDays)
			}
		}

		if len(v.idx.DefinitionsOf(w.ID)) == 0 {
			v.add(SeverityWarning, entity.LevelWord, CheckCompleteness, w.ID, "word %d has no definitions", w.ID)
		}
		v.checkContent(entity.LevelWord, w.ID, "word", w.Text)
	}
}

func (v *validator) checkDefinitions() {
	shape, ok := v.shape()
	seenIDs := make(map[int64]struct{}, len(v.ds.Definitions))
	seenSenses := make(map[[2]int64]int64, len(v.ds.Definitions))
	for _, d := range v.ds.Definitions {
		if _, dup := seenIDs[d.ID]; dup {
			v.add(SeverityError, entity.LevelDefinition, CheckUniqueness, d.ID, "duplicate definition_id %d", d.ID)
		}
		seenIDs[d.ID] = struct{}{}
		key := [2]int64{d.WordID, d.SenseNo}
		if other, dup := seenSenses[key]; dup {
			v.add(SeverityError, entity.LevelDefinition, CheckUniqueness, d.ID,
				"word %d sense_no %d already used by definition %d", d.WordID, d.SenseNo, other)
		} else {
			seenSenses[key] = d.ID
		}

		if ok {
			if expected := shape.DefinitionID(d.WordID, d.SenseNo); expected != d.ID {
				v.add(SeverityError, entity.LevelDefinition, CheckDerivation, d.ID,
					"definition %d: expected id %d from word %d sense_no %d, actual %d", d.ID, expected, d.WordID, d.SenseNo, d.ID)
			}
			if err := entity.CheckSense(d.SenseNo, shape.MaxSenses); err != nil {
				v.add(SeverityError, entity.LevelDefinition, CheckBounds, d.ID, "definition %d: %v", d.ID, err)
			}
		}

		if _, found := v.idx.WordByID(d.WordID); !found {
			v.add(SeverityError, entity.LevelDefinition, CheckReference, d.ID,
				"definition %d references missing word %d", d.ID, d.WordID)
		}
		if len(v.idx.ExamplesOf(d.ID)) == 0 {
			v.add(SeverityWarning, entity.LevelDefinition, CheckCompleteness, d.ID, "definition %d has no examples", d.ID)
		}
		v.checkContent(entity.LevelDefinition, d.ID, "definition", d.Text)
	}
}

func (v *validator) checkExamples() {
	shape, ok := v.shape()
	seenIDs := make(map[int64]struct{}, len(v.ds.Examples))
	seenOrdinals := make(map[[2]int64]int64, len(v.ds.Examples))
	for _, e := range v.ds.Examples {
		if _, dup := seenIDs[e.ID]; dup {
			v.add(SeverityError, entity.LevelExample, CheckUniqueness, e.ID, "duplicate example_id %d", e.ID)
		}
		seenIDs[e.ID] = struct{}{}
		key := [2]int64{e.DefinitionID, e.ExampleNo}
		if other, dup := seenOrdinals[key]; dup {
			v.add(SeverityError, entity.LevelExample, CheckUniqueness, e.ID,
				"definition %d example_no %d already used by example %d", e.DefinitionID, e.ExampleNo, other)
		} else {
			seenOrdinals[key] = e.ID
		}

		if ok {
			if expected := shape.ExampleID(e.DefinitionID, e.ExampleNo); expected != e.ID {
				v.add(SeverityError, entity.LevelExample, CheckDerivation, e.ID,
					"example %d: expected id %d from definition %d example_no %d, actual %d", e.ID, expected, e.DefinitionID, e.ExampleNo, e.ID)
			}
			if err := entity.CheckExample(e.ExampleNo, shape.MaxExamples); err != nil {
				v.add(SeverityError, entity.LevelExample, CheckBounds, e.ID, "example %d: %v", e.ID, err)
			}
		}

		if _, found := v.idx.DefinitionByID(e.DefinitionID); !found {
			v.add(SeverityError, entity.LevelExample, CheckReference, e.ID,
				"example %d references missing definition %d", e.ID, e.DefinitionID)
		}
		v.checkContent(entity.LevelExample, e.ID, "example", e.Sentence)
	}
}

func (v *validator) checkContent(level entity.Level, id int64, kind, text string) {
	switch {
	case entity.IsPlaceholder(text):
		v.add(SeverityWarning, level, CheckPlaceholder, id, "%s %d still holds placeholder %q", kind, id, text)
	case text == "":
		v.add(SeverityWarning, level, CheckPlaceholder, id, "%s %d is blank", kind, id)
	}
}
