package rowfilter

import (
	"strings"
	"testing"
	"time"
)

var wordFields = []Field{
	{Name: "word_id", Kind: KindInt},
	{Name: "day_no", Kind: KindInt},
	{Name: "word", Kind: KindString},
	{Name: "created_at", Kind: KindTimestamp},
}

type row map[string]any

func sampleRows() []row {
	return []row{
		{"word_id": int64(1), "day_no": int64(1), "word": "abandon", "created_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"word_id": int64(2), "day_no": int64(1), "word": "TempWord_2", "created_at": time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"word_id": int64(4), "day_no": int64(2), "word": "absorb", "created_at": nil},
		{"word_id": int64(5), "day_no": int64(2), "word": "abide", "created_at": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func ids(rows []row) string {
	var out []string
	for _, r := range rows {
		out = append(out, r["word"].(string))
	}
	return strings.Join(out, ",")
}

func TestCompileAndApply(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"day_no == 2", "absorb,abide"},
		{"!word.startsWith('TempWord_') && day_no <= 1", "abandon"},
		{"word.contains('ab') || word_id > 4", "abandon,absorb,abide"},
		{"created_at >= timestamp('2024-02-01T00:00:00Z')", "TempWord_2,abide"},
		{"word_id in [1, 5]", "abandon,abide"},
	}
	for _, c := range cases {
		f, err := Compile(c.expr, wordFields)
		if err != nil {
			t.Fatalf("%s: compile: %v", c.expr, err)
		}
		got, err := Apply(f, sampleRows())
		if err != nil {
			t.Fatalf("%s: apply: %v", c.expr, err)
		}
		if ids(got) != c.want {
			t.Fatalf("%s: want %s got %s", c.expr, c.want, ids(got))
		}
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []string{
		"",
		"unknown == 1",
		"word == 1",
		"day_no + 1",
		"word.startsWith(",
	}
	for _, expr := range cases {
		if _, err := Compile(expr, wordFields); err == nil {
			t.Fatalf("%q: expected compile error", expr)
		}
	}
}

func TestParseOrderAndSort(t *testing.T) {
	keys, err := ParseOrder("-day_no, word asc", wordFields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(keys) != 2 || !keys[0].Desc || keys[1].Desc || keys[1].Field != "word" {
		t.Fatalf("unexpected keys: %+v", keys)
	}
	rows := sampleRows()
	Sort(rows, keys)
	if ids(rows) != "abide,absorb,TempWord_2,abandon" {
		t.Fatalf("unexpected order: %s", ids(rows))
	}

	rows = sampleRows()
	keys, _ = ParseOrder("created_at", wordFields)
	Sort(rows, keys)
	if rows[0]["word"] != "absorb" {
		t.Fatalf("nil should sort first, got %s", ids(rows))
	}
}

func TestParseOrderErrors(t *testing.T) {
	for _, raw := range []string{"missing", "word sideways", "word,word", "word asc extra", " , "} {
		if _, err := ParseOrder(raw, wordFields); err == nil {
			t.Fatalf("%q: expected error", raw)
		}
	}
	keys, err := ParseOrder("", wordFields)
	if err != nil || keys != nil {
		t.Fatalf("empty order should yield no keys, got %v %v", keys, err)
	}
}
