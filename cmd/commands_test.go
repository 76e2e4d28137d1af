package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/usecase/validate"
)

func newBook(t *testing.T, populate bool) *session {
	t.Helper()
	sess := newCSVSession(t.TempDir(), nil, nil)
	opts := initOptions{Name: "cet4", Days: 2, Items: 3, Senses: 4, Examples: 5, Populate: populate}
	var out bytes.Buffer
	if err := runInit(context.Background(), sess, opts, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), "cet4") {
		t.Fatalf("unexpected init output: %q", out.String())
	}
	return sess
}

func loadBook(t *testing.T, sess *session) *dataset.Dataset {
	t.Helper()
	ds, err := sess.load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return ds
}

func TestInitThenPopulate(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, false)

	if _, err := os.Stat(filepath.Join(sess.target, "book_meta.csv")); err != nil {
		t.Fatalf("book_meta.csv not written: %v", err)
	}
	ds := loadBook(t, sess)
	if ds.Book == nil || ds.Book.MaxSensesPerWord != 4 || len(ds.Words) != 0 {
		t.Fatalf("unexpected dataset after init: %+v words=%d", ds.Book, len(ds.Words))
	}

	var out bytes.Buffer
	if err := runPopulate(ctx, sess, 0, 0, &out); err != nil {
		t.Fatalf("populate: %v", err)
	}
	ds = loadBook(t, sess)
	if len(ds.Words) != 6 || len(ds.Definitions) != 6 || len(ds.Examples) != 6 {
		t.Fatalf("unexpected counts %d/%d/%d", len(ds.Words), len(ds.Definitions), len(ds.Examples))
	}
	// word 5 = day 2 ordinal 2, definition 20, example 100
	if ds.Words[4].ID != 5 || ds.Definitions[4].ID != 20 || ds.Examples[4].ID != 100 {
		t.Fatalf("unexpected ids: %+v %+v %+v", ds.Words[4], ds.Definitions[4], ds.Examples[4])
	}

	var populated *entity.AlreadyPopulatedError
	if err := runPopulate(ctx, sess, 0, 0, &out); !errors.As(err, &populated) {
		t.Fatalf("expected AlreadyPopulatedError, got %v", err)
	}
}

func TestInitRejectsShapeChange(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, true)
	var out bytes.Buffer

	opts := initOptions{Name: "cet4", Days: 2, Items: 4, Senses: 4, Examples: 5}
	if err := runInit(ctx, sess, opts, &out); !errors.Is(err, entity.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	before := loadBook(t, sess).Book.CreatedAt
	opts = initOptions{Name: "cet4-renamed", Days: 2, Items: 3, Senses: 4, Examples: 5}
	if err := runInit(ctx, sess, opts, &out); err != nil {
		t.Fatalf("rename: %v", err)
	}
	ds := loadBook(t, sess)
	if ds.Book.CodeName != "cet4-renamed" || !ds.Book.CreatedAt.Equal(before) || len(ds.Words) != 6 {
		t.Fatalf("unexpected book after rename: %+v words=%d", ds.Book, len(ds.Words))
	}

	var bounds *entity.BoundsError
	if err := runInit(ctx, sess, initOptions{Name: "x", Days: 0, Items: 1, Senses: 1, Examples: 1}, &out); !errors.As(err, &bounds) {
		t.Fatalf("expected BoundsError, got %v", err)
	}
	huge := initOptions{Name: "x", Days: 3_000_000_000, Items: 3_000_000_000, Senses: 10, Examples: 10}
	if err := runInit(ctx, sess, huge, &out); !errors.As(err, &bounds) || bounds.Field != "max_words_per_day" {
		t.Fatalf("expected max_words_per_day BoundsError, got %v", err)
	}
	if err := runInit(ctx, sess, initOptions{Name: " ", Days: 1, Items: 1, Senses: 1, Examples: 1}, &out); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestValidateCommand(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, true)

	var out bytes.Buffer
	if err := runValidate(ctx, sess, validate.FormatText, &out); err != nil {
		t.Fatalf("validate fresh skeleton: %v", err)
	}
	if !strings.Contains(out.String(), "errors=0 warnings=18") {
		t.Fatalf("unexpected summary: %q", out.String())
	}

	ds := loadBook(t, sess)
	ds.Definitions[0].ID = 999
	if err := sess.save(ctx, ds); err != nil {
		t.Fatalf("save: %v", err)
	}
	out.Reset()
	err := runValidate(ctx, sess, validate.FormatJSON, &out)
	if !errors.Is(err, entity.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	var doc struct {
		Summary struct {
			Errors int `json:"errors"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if doc.Summary.Errors == 0 {
		t.Fatalf("expected errors in report: %s", out.String())
	}
}

func TestStatusCommand(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, true)

	var out bytes.Buffer
	if err := runStatus(ctx, sess, validate.FormatJSON, &out); err != nil {
		t.Fatalf("status: %v", err)
	}
	var got statusReport
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Book == nil || got.Book.CodeName != "cet4" || got.Days != 2 || got.Complete {
		t.Fatalf("unexpected status: %+v", got)
	}
	if got.Stats.Placeholders() != 18 {
		t.Fatalf("placeholders: want 18 got %d", got.Stats.Placeholders())
	}

	out.Reset()
	if err := runStatus(ctx, sess, validate.FormatText, &out); err != nil {
		t.Fatalf("status text: %v", err)
	}
	if !strings.Contains(out.String(), "剩余占位 18") {
		t.Fatalf("unexpected text status: %q", out.String())
	}
}

func TestDayApplyAndTemplate(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, true)
	var out bytes.Buffer

	if err := runDayApply(ctx, sess, 1, strings.NewReader("alpha\nbeta\ngamma\n"), &out); err != nil {
		t.Fatalf("apply positional: %v", err)
	}
	if err := runDayApply(ctx, sess, 2, strings.NewReader("word_id,word\n5,epsilon\n"), &out); err != nil {
		t.Fatalf("apply keyed: %v", err)
	}

	ds := loadBook(t, sess)
	texts := make([]string, len(ds.Words))
	for i, w := range ds.Words {
		texts[i] = w.Text
	}
	want := "alpha,beta,gamma,TempWord_4,epsilon,TempWord_6"
	if got := strings.Join(texts, ","); got != want {
		t.Fatalf("words: want %s got %s", want, got)
	}

	out.Reset()
	if err := runDayTemplate(ctx, sess, 2, &out); err != nil {
		t.Fatalf("template: %v", err)
	}
	if got := out.String(); got != "word_id,word\n4,\n5,epsilon\n6,\n" {
		t.Fatalf("unexpected template %q", got)
	}

	if err := runDayTemplate(ctx, sess, 9, &out); !errors.Is(err, entity.ErrUnknownDay) {
		t.Fatalf("expected ErrUnknownDay, got %v", err)
	}
}

func TestJoinCommand(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, true)

	var out bytes.Buffer
	if err := runJoin(ctx, sess, dataset.JoinWords, &out); err != nil {
		t.Fatalf("join: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 7 || lines[0] != "word_id,day_no,word_no,word" || lines[1] != "1,1,1,TempWord_1" {
		t.Fatalf("unexpected join output: %q", out.String())
	}

	out.Reset()
	if err := runJoin(ctx, sess, dataset.JoinExamples, &out); err != nil {
		t.Fatalf("join examples: %v", err)
	}
	if !strings.Contains(out.String(), "6,2,3,TempWord_6,24,0,TempDefinition_24,,120,0,TempExample_120") {
		t.Fatalf("unexpected example join: %q", out.String())
	}
}

func TestRowsCommand(t *testing.T) {
	ctx := context.Background()
	sess := newBook(t, true)

	var out bytes.Buffer
	opts := rowsOptions{Table: "words", Where: "day_no == 1 && word_no >= 2", Sort: "-word_id"}
	if err := runRows(ctx, sess, opts, &out); err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := "word_id,day_no,word_no,word\n3,1,3,TempWord_3\n2,1,2,TempWord_2\n"
	if out.String() != want {
		t.Fatalf("want %q got %q", want, out.String())
	}

	if err := runRows(ctx, sess, rowsOptions{Table: "lexemes"}, &out); !errors.Is(err, entity.ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
	if err := runRows(ctx, sess, rowsOptions{Table: "words", Where: "word + 1"}, &out); err == nil {
		t.Fatal("expected error for non-bool expression")
	}
	if err := runRows(ctx, sess, rowsOptions{Table: "words", Sort: "missing"}, &out); err == nil {
		t.Fatal("expected error for unknown sort column")
	}
}

func TestTransferAndStrictImport(t *testing.T) {
	ctx := context.Background()
	src := newBook(t, true)
	dst := newCSVSession(t.TempDir(), nil, nil)

	var out bytes.Buffer
	if err := runImport(ctx, src, dst, true, &out); err != nil {
		t.Fatalf("strict import of valid data: %v", err)
	}
	if !loadBook(t, src).Equal(loadBook(t, dst)) {
		t.Fatal("copied dataset differs from source")
	}

	ds := loadBook(t, src)
	ds.Examples = ds.Examples[1:]
	ds.Definitions[0].WordID = 42
	if err := src.save(ctx, ds); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := runImport(ctx, src, dst, true, &out); !errors.Is(err, entity.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
	if len(loadBook(t, dst).Examples) != 6 {
		t.Fatal("strict import must leave the target untouched")
	}

	if err := runTransfer(ctx, src, dst, &out); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if !loadBook(t, src).Equal(loadBook(t, dst)) {
		t.Fatal("lenient import should copy the data as is")
	}
}

func TestParseDay(t *testing.T) {
	if day, err := parseDay(" 12 "); err != nil || day != 12 {
		t.Fatalf("want 12, got %d (%v)", day, err)
	}
	for _, raw := range []string{"0", "-1", "x", ""} {
		if _, err := parseDay(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestNormalizeTables(t *testing.T) {
	got := normalizeTables([]string{" Words", "", "EXAMPLES "})
	if strings.Join(got, ",") != "words,examples" {
		t.Fatalf("unexpected tables %v", got)
	}
	if normalizeTables([]string{" ", ""}) != nil {
		t.Fatal("expected nil for blank input")
	}
}

func TestProgressStep(t *testing.T) {
	cases := map[int]int{0: 1000, 10: 1, 400: 20, 1_000_000: 1000}
	for total, want := range cases {
		if got := progressStep(total); got != want {
			t.Fatalf("progressStep(%d): want %d got %d", total, want, got)
		}
	}
}
