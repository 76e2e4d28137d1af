package dataset

import (
	"errors"
	"testing"
	"time"

	"github.com/eslsoft/vocabook/internal/entity"
)

func newBook() entity.Book {
	return entity.Book{
		CodeName:            "ielts_voca",
		MaxDays:             2,
		MaxWordsPerDay:      3,
		MaxSensesPerWord:    10,
		MaxExamplesPerSense: 10,
		CreatedAt:           time.Date(2025, 11, 17, 9, 0, 0, 0, time.UTC),
	}
}

func TestPopulateSkeletonOnce(t *testing.T) {
	ds := New()
	ds.UpsertBook(newBook())

	if err := ds.PopulateSkeleton(2, 3); err != nil {
		t.Fatalf("first populate: %v", err)
	}
	if len(ds.Words) != 6 || len(ds.Definitions) != 6 || len(ds.Examples) != 6 {
		t.Fatalf("unexpected sizes: %d/%d/%d", len(ds.Words), len(ds.Definitions), len(ds.Examples))
	}

	err := ds.PopulateSkeleton(2, 3)
	var already *entity.AlreadyPopulatedError
	if !errors.As(err, &already) {
		t.Fatalf("second populate: expected AlreadyPopulatedError, got %v", err)
	}
	if already.Words != 6 {
		t.Fatalf("expected 6 existing words, got %d", already.Words)
	}
	if len(ds.Words) != 6 {
		t.Fatalf("refused populate mutated dataset: %d words", len(ds.Words))
	}
}

func TestPopulateSkeletonContent(t *testing.T) {
	ds := New()
	ds.UpsertBook(newBook())
	if err := ds.PopulateSkeleton(2, 3); err != nil {
		t.Fatalf("populate: %v", err)
	}

	idx := ds.Index()
	w, ok := idx.WordByID(5) // day 2, ordinal 2
	if !ok {
		t.Fatal("word 5 missing")
	}
	if w.DayNo != 2 || w.WordNo != 2 || w.Text != "TempWord_5" {
		t.Fatalf("bad word: %+v", w)
	}
	defs := idx.DefinitionsOf(5)
	if len(defs) != 1 || defs[0].ID != 50 || defs[0].SenseNo != 0 || defs[0].Text != "TempDefinition_50" {
		t.Fatalf("bad definitions: %+v", defs)
	}
	exs := idx.ExamplesOf(50)
	if len(exs) != 1 || exs[0].ID != 500 || exs[0].Sentence != "TempExample_500" {
		t.Fatalf("bad examples: %+v", exs)
	}
	if ds.Complete() {
		t.Fatal("skeleton must not be complete")
	}
	if got := ds.Stats().Placeholders(); got != 18 {
		t.Fatalf("expected 18 placeholders, got %d", got)
	}
}

func TestPopulateSkeletonPreconditions(t *testing.T) {
	ds := New()
	if err := ds.PopulateSkeleton(1, 1); !errors.Is(err, entity.ErrBookMissing) {
		t.Fatalf("expected ErrBookMissing, got %v", err)
	}

	ds.UpsertBook(newBook())
	if err := ds.PopulateSkeleton(5, 3); !errors.Is(err, entity.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	var be *entity.BoundsError
	if err := ds.PopulateSkeleton(0, 3); !errors.As(err, &be) {
		t.Fatalf("expected BoundsError, got %v", err)
	}

	book := newBook()
	book.MaxSensesPerWord = 0
	ds.UpsertBook(book)
	if err := ds.PopulateSkeleton(2, 3); !errors.As(err, &be) || be.Field != "max_senses_per_word" {
		t.Fatalf("expected max_senses_per_word bounds error, got %v", err)
	}
}

func TestUpsertBookSingleton(t *testing.T) {
	ds := New()
	first := ds.UpsertBook(newBook())
	created := first.CreatedAt

	for i := 0; i < 3; i++ {
		update := newBook()
		update.ID = 42
		update.CodeName = "renamed"
		update.CreatedAt = time.Time{}
		ds.UpsertBook(update)
	}
	if ds.Book.ID != entity.BookID {
		t.Fatalf("book id must stay %d, got %d", entity.BookID, ds.Book.ID)
	}
	if ds.Book.CodeName != "renamed" {
		t.Fatalf("descriptive field not replaced: %q", ds.Book.CodeName)
	}
	if !ds.Book.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: %v -> %v", created, ds.Book.CreatedAt)
	}
	rows, err := ds.Rows("books")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one book row, got %d", len(rows))
	}
}

func TestEqualIgnoresOrder(t *testing.T) {
	a := New()
	a.UpsertBook(newBook())
	if err := a.PopulateSkeleton(2, 3); err != nil {
		t.Fatal(err)
	}
	b := New()
	b.Book = a.Book
	for i := len(a.Words) - 1; i >= 0; i-- {
		b.Words = append(b.Words, a.Words[i])
	}
	b.Definitions = append(b.Definitions, a.Definitions...)
	b.Examples = append(b.Examples, a.Examples...)
	if !a.Equal(b) {
		t.Fatal("expected datasets equal regardless of order")
	}

	b.Words[0].Text = "abandon"
	if a.Equal(b) {
		t.Fatal("expected datasets to differ after text change")
	}
}

func TestAppendRowErrors(t *testing.T) {
	ds := New()
	err := ds.AppendRow("words.csv", "words", 2, Row{"word_id": "x1", "day_no": "1", "word_no": "1", "word": "a"})
	var pe *entity.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Column != "word_id" || pe.Row != 2 || pe.Value != "x1" {
		t.Fatalf("unexpected parse error: %+v", pe)
	}

	err = ds.AppendRow("words.csv", "words", 3, Row{"word_id": "1", "day_no": "1", "word": "a"})
	var fe *entity.FormatError
	if !errors.As(err, &fe) || fe.Column != "word_no" {
		t.Fatalf("expected FormatError for word_no, got %v", err)
	}
	if len(ds.Words) != 0 {
		t.Fatalf("failed rows must not be appended, got %d", len(ds.Words))
	}
}

func TestAppendRowSecondBook(t *testing.T) {
	ds := New()
	book := Row{
		"book_id": "1", "code_name": "ielts", "max_days": "1", "max_words_per_day": "1",
		"max_senses_per_word": "10", "max_examples_per_sense": "10", "created_at": "2025-11-17T09:00:00Z",
	}
	if err := ds.AppendRow("books", "books", 1, book); err != nil {
		t.Fatalf("first book: %v", err)
	}
	book["code_name"] = "toefl"
	if err := ds.AppendRow("books", "books", 2, book); !errors.Is(err, entity.ErrDuplicateBook) {
		t.Fatalf("expected ErrDuplicateBook, got %v", err)
	}
	if ds.Book.CodeName != "ielts" {
		t.Fatalf("first book must be kept, got %q", ds.Book.CodeName)
	}
}

func TestPopulateSkeletonRejectsOversizedShape(t *testing.T) {
	cases := []struct {
		name        string
		days, items int64
		senses      int64
		field       string
	}{
		{"huge grid", 3_000_000_000, 3_000_000_000, 10, "max_words_per_day"},
		{"too many days", 2_000_000, 1, 10, "max_days"},
		{"id overflow", 10, 10, 1 << 62, "max_senses_per_word"},
	}
	for _, c := range cases {
		ds := New()
		ds.UpsertBook(entity.Book{CodeName: "big", MaxSensesPerWord: c.senses, MaxExamplesPerSense: 10})
		err := ds.PopulateSkeleton(c.days, c.items)
		var be *entity.BoundsError
		if !errors.As(err, &be) || be.Field != c.field {
			t.Fatalf("%s: expected %s bounds error, got %v", c.name, c.field, err)
		}
		if len(ds.Words) != 0 || ds.Book.MaxDays != 0 {
			t.Fatalf("%s: rejected populate must not touch the dataset", c.name)
		}
	}
}

func TestJoin(t *testing.T) {
	pos := "v."
	ds := &Dataset{
		Words: []entity.Word{
			{ID: 2, DayNo: 1, WordNo: 2, Text: "abide"},
			{ID: 1, DayNo: 1, WordNo: 1, Text: "abandon"},
		},
		Definitions: []entity.Definition{
			{ID: 11, WordID: 1, SenseNo: 1, Text: "to give up"},
			{ID: 10, WordID: 1, SenseNo: 0, Text: "to leave", PartOfSpeech: &pos},
		},
		Examples: []entity.Example{
			{ID: 100, DefinitionID: 10, ExampleNo: 0, Sentence: "They abandoned the car."},
		},
	}

	if got := len(ds.Join(JoinWords)); got != 2 {
		t.Fatalf("word mode: expected 2 rows, got %d", got)
	}
	defRows := ds.Join(JoinDefinitions)
	if len(defRows) != 2 || defRows[0]["definition_id"] != int64(10) || defRows[0]["part_of_speech"] != "v." {
		t.Fatalf("definition mode: %+v", defRows)
	}
	exRows := ds.Join(JoinExamples)
	if len(exRows) != 1 || exRows[0]["example_id"] != int64(100) || exRows[0]["word"] != "abandon" {
		t.Fatalf("example mode: %+v", exRows)
	}

	if cols := JoinDefinitions.Columns(); cols[len(cols)-1] != "part_of_speech" || len(JoinWords.Columns()) != 4 {
		t.Fatalf("unexpected join columns: %v", cols)
	}
	if _, err := ParseJoinMode("sentence"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
