// Package dataset holds the in-memory book graph (book, words, definitions,
// examples) independent of the store it was loaded from.
package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/samber/lo"
)

// Dataset is one snapshot of a book.
type Dataset struct {
	Book        *entity.Book
	Words       []entity.Word
	Definitions []entity.Definition
	Examples    []entity.Example
}

// Reader loads a whole dataset from a store.
type Reader interface {
	Load(ctx context.Context) (*Dataset, error)
}

// Writer replaces the content of a store with a dataset.
type Writer interface {
	Save(ctx context.Context, ds *Dataset) error
}

// Store is a Reader that can also be written back.
type Store interface {
	Reader
	Writer
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{}
}

// Load reads a dataset from r. Nothing is returned when loading fails.
func Load(ctx context.Context, r Reader) (*Dataset, error) {
	ds, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		ds = New()
	}
	return ds, nil
}

// Save writes ds to w.
func Save(ctx context.Context, w Writer, ds *Dataset) error {
	if ds == nil {
		return fmt.Errorf("save: nil dataset")
	}
	return w.Save(ctx, ds)
}

// UpsertBook replaces the singleton book. The id is always entity.BookID and a
// zero CreatedAt keeps the timestamp of the book being replaced.
func (d *Dataset) UpsertBook(meta entity.Book) *entity.Book {
	meta.ID = entity.BookID
	if meta.CreatedAt.IsZero() {
		if d.Book != nil && !d.Book.CreatedAt.IsZero() {
			meta.CreatedAt = d.Book.CreatedAt
		} else {
			meta.CreatedAt = time.Now().UTC().Truncate(time.Second)
		}
	}
	d.Book = &meta
	return d.Book
}

// PopulateSkeleton stamps every (day, ordinal) slot with a placeholder word,
// its sense-0 placeholder definition and that definition's example-0
// placeholder. It refuses to run once any word exists.
func (d *Dataset) PopulateSkeleton(maxDays, maxItemsPerDay int64) error {
	if d.Book == nil {
		return entity.ErrBookMissing
	}
	if len(d.Words) > 0 {
		return &entity.AlreadyPopulatedError{Words: len(d.Words)}
	}
	if maxDays < 1 {
		return &entity.BoundsError{Field: "max_days", Value: maxDays, Min: 1, Max: maxDays}
	}
	if maxItemsPerDay < 1 {
		return &entity.BoundsError{Field: "max_words_per_day", Value: maxItemsPerDay, Min: 1, Max: maxItemsPerDay}
	}
	if d.Book.MaxDays != 0 && d.Book.MaxDays != maxDays {
		return fmt.Errorf("%w: max_days %d, book declares %d", entity.ErrShapeMismatch, maxDays, d.Book.MaxDays)
	}
	if d.Book.MaxWordsPerDay != 0 && d.Book.MaxWordsPerDay != maxItemsPerDay {
		return fmt.Errorf("%w: max_words_per_day %d, book declares %d", entity.ErrShapeMismatch, maxItemsPerDay, d.Book.MaxWordsPerDay)
	}
	if err := entity.CheckSense(0, d.Book.MaxSensesPerWord); err != nil {
		return err
	}
	if err := entity.CheckExample(0, d.Book.MaxExamplesPerSense); err != nil {
		return err
	}
	shape := d.Book.Shape()
	shape.MaxItemsPerDay = maxItemsPerDay
	if err := entity.CheckDimensions(maxDays, shape); err != nil {
		return err
	}
	d.Book.MaxDays = maxDays
	d.Book.MaxWordsPerDay = maxItemsPerDay

	total := int(maxDays * maxItemsPerDay)
	words := make([]entity.Word, 0, total)
	defs := make([]entity.Definition, 0, total)
	examples := make([]entity.Example, 0, total)
	for day := int64(1); day <= maxDays; day++ {
		for ord := int64(1); ord <= maxItemsPerDay; ord++ {
			wordID := shape.WordID(day, ord)
			defID := shape.DefinitionID(wordID, 0)
			exID := shape.ExampleID(defID, 0)
			words = append(words, entity.Word{ID: wordID, DayNo: day, WordNo: ord, Text: entity.PlaceholderWord(wordID)})
			defs = append(defs, entity.Definition{ID: defID, WordID: wordID, SenseNo: 0, Text: entity.PlaceholderDefinition(defID)})
			examples = append(examples, entity.Example{ID: exID, DefinitionID: defID, ExampleNo: 0, Sentence: entity.PlaceholderExample(exID)})
		}
	}
	d.Words = words
	d.Definitions = append(d.Definitions, defs...)
	d.Examples = append(d.Examples, examples...)
	return nil
}

// Sort orders every level by identifier.
func (d *Dataset) Sort() {
	sort.SliceStable(d.Words, func(i, j int) bool { return d.Words[i].ID < d.Words[j].ID })
	sort.SliceStable(d.Definitions, func(i, j int) bool { return d.Definitions[i].ID < d.Definitions[j].ID })
	sort.SliceStable(d.Examples, func(i, j int) bool { return d.Examples[i].ID < d.Examples[j].ID })
}

// Equal compares two datasets entity by entity, keyed on identifier. Row order is ignored.
func (d *Dataset) Equal(o *Dataset) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !booksEqual(d.Book, o.Book) {
		return false
	}
	return sameByID(d.Words, o.Words, func(w entity.Word) int64 { return w.ID }, func(a, b entity.Word) bool { return a == b }) &&
		sameByID(d.Definitions, o.Definitions, func(x entity.Definition) int64 { return x.ID }, definitionsEqual) &&
		sameByID(d.Examples, o.Examples, func(e entity.Example) int64 { return e.ID }, func(a, b entity.Example) bool { return a == b })
}

func booksEqual(a, b *entity.Book) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID &&
		a.CodeName == b.CodeName &&
		a.MaxDays == b.MaxDays &&
		a.MaxWordsPerDay == b.MaxWordsPerDay &&
		a.MaxSensesPerWord == b.MaxSensesPerWord &&
		a.MaxExamplesPerSense == b.MaxExamplesPerSense &&
		a.CreatedAt.Equal(b.CreatedAt)
}

func definitionsEqual(a, b entity.Definition) bool {
	return a.ID == b.ID && a.WordID == b.WordID && a.SenseNo == b.SenseNo && a.Text == b.Text && a.POS() == b.POS()
}

func sameByID[T any](a, b []T, key func(T) int64, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	index := lo.KeyBy(b, key)
	if len(index) != len(b) {
		return false
	}
	for _, item := range a {
		other, ok := index[key(item)]
		if !ok || !eq(item, other) {
			return false
		}
	}
	return true
}
