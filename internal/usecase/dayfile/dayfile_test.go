package dayfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
)

func newBook(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := dataset.New()
	ds.UpsertBook(entity.Book{CodeName: "daily", MaxSensesPerWord: 10, MaxExamplesPerSense: 10})
	if err := ds.PopulateSkeleton(2, 3); err != nil {
		t.Fatalf("populate: %v", err)
	}
	return ds
}

func wordsOfDay(ds *dataset.Dataset, day int64) []string {
	var out []string
	for _, w := range ds.Index().WordsOfDay(day) {
		out = append(out, w.Text)
	}
	return out
}

func TestParseFormats(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		keyed  bool
		header string
		words  []string
	}{
		{"plain", "abandon\n\n abide \nabsorb\n", false, "", []string{"abandon", "abide", "absorb"}},
		{"word_id header", "word_id,word\n4,alpha\n5,\n6,gamma\n", true, "word_id", []string{"alpha", "gamma"}},
		{"day_no header", "day_no,word\n2,alpha\n2,beta\n", true, "day_no", []string{"alpha", "beta"}},
		{"headerless csv", "4,alpha\n5,beta\n", true, "", []string{"alpha", "beta"}},
		{"bom", "\ufeffword_id,word\n4,alpha\n", true, "word_id", []string{"alpha"}},
		{"commas in plain text", "look up, look after\nbreak down\n", false, "", []string{"look up, look after", "break down"}},
	}
	for _, c := range cases {
		f, err := Parse(strings.NewReader(c.in))
		if err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}
		if f.Keyed != c.keyed || f.Header != c.header {
			t.Fatalf("%s: keyed=%v header=%q", c.name, f.Keyed, f.Header)
		}
		var got []string
		for _, e := range f.Entries {
			got = append(got, e.Word)
		}
		if strings.Join(got, "|") != strings.Join(c.words, "|") {
			t.Fatalf("%s: want %v got %v", c.name, c.words, got)
		}
	}

	if _, err := Parse(strings.NewReader("\n \n")); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestApplyByWordID(t *testing.T) {
	ds := newBook(t)
	f, err := Parse(strings.NewReader("word_id,word\n6,gamma\n4,alpha\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Apply(ds, 2, f)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Mode != ModeWordID || res.Updated != 2 || len(res.Warnings) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	got := wordsOfDay(ds, 2)
	if got[0] != "alpha" || got[1] != entity.PlaceholderWord(5) || got[2] != "gamma" {
		t.Fatalf("unexpected day 2 words: %v", got)
	}
	if wordsOfDay(ds, 1)[0] != entity.PlaceholderWord(1) {
		t.Fatal("day 1 must stay untouched")
	}
}

func TestApplyPositional(t *testing.T) {
	ds := newBook(t)
	f, err := Parse(strings.NewReader("one\ntwo\nthree\nfour\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Apply(ds, 1, f)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Mode != ModePositional || res.Updated != 3 || len(res.Warnings) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := strings.Join(wordsOfDay(ds, 1), ","); got != "one,two,three" {
		t.Fatalf("unexpected words: %s", got)
	}
	if len(ds.Words) != 6 || ds.Words[0].ID != 1 || ds.Words[0].WordNo != 1 {
		t.Fatal("ids and ordinals must not change")
	}
}

func TestApplyUnknownKeysFallBackToPosition(t *testing.T) {
	ds := newBook(t)
	f, err := Parse(strings.NewReader("9,alpha\n8,beta\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Apply(ds, 2, f)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Mode != ModePositional || res.Updated != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// keyed entries are assigned in key order, not file order
	if got := wordsOfDay(ds, 2); got[0] != "beta" || got[1] != "alpha" {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestApplyPositionalRepeatedKeyKeepsLast(t *testing.T) {
	ds := newBook(t)
	f, err := Parse(strings.NewReader("word_id,word\n12,x\n11,y\n12,z\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	res, err := Apply(ds, 2, f)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.Mode != ModePositional || res.Updated != 2 || len(res.Warnings) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	got := wordsOfDay(ds, 2)
	if got[0] != "y" || got[1] != "z" || got[2] != entity.PlaceholderWord(6) {
		t.Fatalf("unexpected words: %v", got)
	}
}

func TestApplyDayNoFileKeepsFileOrder(t *testing.T) {
	ds := newBook(t)
	f, err := Parse(strings.NewReader("day_no,word\n2,gamma\n2,alpha\n2,beta\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Apply(ds, 2, f); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := strings.Join(wordsOfDay(ds, 2), ","); got != "gamma,alpha,beta" {
		t.Fatalf("unexpected words: %s", got)
	}
}

func TestApplyUnknownDay(t *testing.T) {
	ds := newBook(t)
	f := &File{Entries: []Entry{{Word: "x"}}}
	if _, err := Apply(ds, 9, f); !errors.Is(err, entity.ErrUnknownDay) {
		t.Fatalf("expected ErrUnknownDay, got %v", err)
	}
}

func TestTemplate(t *testing.T) {
	ds := newBook(t)
	ds.Words[3].Text = "alpha"

	var buf bytes.Buffer
	n, err := Template(ds, 2, &buf)
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	if n != 3 {
		t.Fatalf("want 3 rows got %d", n)
	}
	want := "word_id,word\n4,alpha\n5,\n6,\n"
	if buf.String() != want {
		t.Fatalf("want %q got %q", want, buf.String())
	}
}
