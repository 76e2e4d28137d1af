package dataset

import (
	"sort"

	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/samber/lo"
)

// Index is a read-only lookup view over a dataset. It is built once and not
// kept in sync with later mutations.
type Index struct {
	words         map[int64]entity.Word
	definitions   map[int64]entity.Definition
	examples      map[int64]entity.Example
	defsByWord    map[int64][]entity.Definition
	examplesByDef map[int64][]entity.Example
	wordsByDay    map[int64][]entity.Word
}

// Index builds lookup maps for the current content.
func (d *Dataset) Index() *Index {
	idx := &Index{
		words:         lo.KeyBy(d.Words, func(w entity.Word) int64 { return w.ID }),
		definitions:   lo.KeyBy(d.Definitions, func(x entity.Definition) int64 { return x.ID }),
		examples:      lo.KeyBy(d.Examples, func(e entity.Example) int64 { return e.ID }),
		defsByWord:    lo.GroupBy(d.Definitions, func(x entity.Definition) int64 { return x.WordID }),
		examplesByDef: lo.GroupBy(d.Examples, func(e entity.Example) int64 { return e.DefinitionID }),
		wordsByDay:    lo.GroupBy(d.Words, func(w entity.Word) int64 { return w.DayNo }),
	}
	for _, defs := range idx.defsByWord {
		sort.SliceStable(defs, func(i, j int) bool { return defs[i].SenseNo < defs[j].SenseNo })
	}
	for _, exs := range idx.examplesByDef {
		sort.SliceStable(exs, func(i, j int) bool { return exs[i].ExampleNo < exs[j].ExampleNo })
	}
	for _, ws := range idx.wordsByDay {
		sort.SliceStable(ws, func(i, j int) bool { return ws[i].WordNo < ws[j].WordNo })
	}
	return idx
}

// WordByID returns the word with the given id.
func (x *Index) WordByID(id int64) (entity.Word, bool) {
	w, ok := x.words[id]
	return w, ok
}

// DefinitionByID returns the definition with the given id.
func (x *Index) DefinitionByID(id int64) (entity.Definition, bool) {
	def, ok := x.definitions[id]
	return def, ok
}

// ExampleByID returns the example with the given id.
func (x *Index) ExampleByID(id int64) (entity.Example, bool) {
	ex, ok := x.examples[id]
	return ex, ok
}

// DefinitionsOf returns the definitions of a word ordered by sense.
func (x *Index) DefinitionsOf(wordID int64) []entity.Definition { return x.defsByWord[wordID] }

// ExamplesOf returns the examples of a definition ordered by example ordinal.
func (x *Index) ExamplesOf(definitionID int64) []entity.Example { return x.examplesByDef[definitionID] }

// WordsOfDay returns the words of a day ordered by ordinal.
func (x *Index) WordsOfDay(day int64) []entity.Word { return x.wordsByDay[day] }

// Days returns the distinct day numbers in ascending order.
func (x *Index) Days() []int64 {
	days := lo.Keys(x.wordsByDay)
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}

// Stats summarizes row and placeholder counts.
type Stats struct {
	Words               int `json:"words" yaml:"words"`
	Definitions         int `json:"definitions" yaml:"definitions"`
	Examples            int `json:"examples" yaml:"examples"`
	PlaceholderWords    int `json:"placeholder_words" yaml:"placeholder_words"`
	PlaceholderDefs     int `json:"placeholder_definitions" yaml:"placeholder_definitions"`
	PlaceholderExamples int `json:"placeholder_examples" yaml:"placeholder_examples"`
}

// Placeholders returns the total number of rows still carrying a placeholder marker.
func (s Stats) Placeholders() int {
	return s.PlaceholderWords + s.PlaceholderDefs + s.PlaceholderExamples
}

// Stats counts rows and unauthored rows per level.
func (d *Dataset) Stats() Stats {
	return Stats{
		Words:               len(d.Words),
		Definitions:         len(d.Definitions),
		Examples:            len(d.Examples),
		PlaceholderWords:    lo.CountBy(d.Words, func(w entity.Word) bool { return entity.IsPlaceholder(w.Text) }),
		PlaceholderDefs:     lo.CountBy(d.Definitions, func(x entity.Definition) bool { return entity.IsPlaceholder(x.Text) }),
		PlaceholderExamples: lo.CountBy(d.Examples, func(e entity.Example) bool { return entity.IsPlaceholder(e.Sentence) }),
	}
}

// Complete reports whether no row carries placeholder text.
func (d *Dataset) Complete() bool {
	return d.Stats().Placeholders() == 0
}
