package entity

import (
	"errors"
	"math"
	"testing"
)

func TestDerivationScenario(t *testing.T) {
	wordID := WordID(3, 5, 30)
	if wordID != 65 {
		t.Fatalf("word id: want 65 got %d", wordID)
	}
	defID := DefinitionID(wordID, 2, 10)
	if defID != 652 {
		t.Fatalf("definition id: want 652 got %d", defID)
	}
	exID := ExampleID(defID, 1, 10)
	if exID != 6521 {
		t.Fatalf("example id: want 6521 got %d", exID)
	}

	shape := Shape{MaxItemsPerDay: 30, MaxSenses: 10, MaxExamples: 10}
	if got := shape.ExampleID(shape.DefinitionID(shape.WordID(3, 5), 2), 1); got != 6521 {
		t.Fatalf("shape derivation: want 6521 got %d", got)
	}
}

func TestWordIDInjectiveWithinBounds(t *testing.T) {
	const maxItems = 7
	seen := make(map[int64][2]int64)
	for day := int64(1); day <= 12; day++ {
		for ord := int64(1); ord <= maxItems; ord++ {
			id := WordID(day, ord, maxItems)
			if prev, ok := seen[id]; ok {
				t.Fatalf("collision: (%d,%d) and (%d,%d) -> %d", prev[0], prev[1], day, ord, id)
			}
			seen[id] = [2]int64{day, ord}

			gotDay, gotOrd := SplitWordID(id, maxItems)
			if gotDay != day || gotOrd != ord {
				t.Fatalf("split %d: want (%d,%d) got (%d,%d)", id, day, ord, gotDay, gotOrd)
			}
		}
	}
}

func TestDefinitionIDMonotonicAndDisjoint(t *testing.T) {
	const maxSenses = 4
	seen := make(map[int64]struct{})
	for wordID := int64(1); wordID <= 50; wordID++ {
		prev := int64(-1)
		for sense := int64(0); sense < maxSenses; sense++ {
			id := DefinitionID(wordID, sense, maxSenses)
			if id <= prev {
				t.Fatalf("not increasing at word %d sense %d: %d <= %d", wordID, sense, id, prev)
			}
			prev = id
			if _, ok := seen[id]; ok {
				t.Fatalf("collision at word %d sense %d: %d", wordID, sense, id)
			}
			seen[id] = struct{}{}

			w, s := SplitDefinitionID(id, maxSenses)
			if w != wordID || s != sense {
				t.Fatalf("split %d: want (%d,%d) got (%d,%d)", id, wordID, sense, w, s)
			}
		}
	}
}

func TestOrdinalOverflowCollides(t *testing.T) {
	// Exceeding the declared fan-out lands on the next parent's id range.
	if WordID(1, 31, 30) != WordID(2, 1, 30) {
		t.Fatal("expected overflow collision between day 1 ordinal 31 and day 2 ordinal 1")
	}
	if err := CheckWordPosition(1, 31, 30); err == nil {
		t.Fatal("expected bounds error for ordinal 31")
	}
}

func TestBoundsChecks(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		field string
	}{
		{"word ordinal zero", CheckWordPosition(1, 0, 30), "word_no"},
		{"day zero", CheckWordPosition(0, 1, 30), "day_no"},
		{"no fan-out", CheckWordPosition(1, 1, 0), "max_words_per_day"},
		{"sense at max", CheckSense(10, 10), "sense_no"},
		{"negative sense", CheckSense(-1, 10), "sense_no"},
		{"example at max", CheckExample(3, 3), "example_no"},
	}
	for _, c := range cases {
		var be *BoundsError
		if !errors.As(c.err, &be) {
			t.Fatalf("%s: expected BoundsError, got %v", c.name, c.err)
		}
		if be.Field != c.field {
			t.Fatalf("%s: field want %q got %q", c.name, c.field, be.Field)
		}
	}

	if err := CheckWordPosition(2, 30, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckSense(9, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckExample(0, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsPlaceholder(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{PlaceholderWord(65), true},
		{PlaceholderDefinition(650), true},
		{PlaceholderExample(6500), true},
		{"  TempWord_1 ", true},
		{"abandon", false},
		{"Temporary", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsPlaceholder(c.in); got != c.want {
			t.Fatalf("%q: want %v got %v", c.in, c.want, got)
		}
	}
}

func TestCheckDimensions(t *testing.T) {
	ok := Shape{MaxItemsPerDay: 30, MaxSenses: 10, MaxExamples: 10}
	if err := CheckDimensions(60, ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckDimensions(MaxBookWords, Shape{MaxItemsPerDay: 1, MaxSenses: 10, MaxExamples: 10}); err != nil {
		t.Fatalf("grid at the cap must pass: %v", err)
	}

	cases := []struct {
		name  string
		days  int64
		shape Shape
		field string
	}{
		{"zero days", 0, ok, "max_days"},
		{"zero examples", 1, Shape{MaxItemsPerDay: 1, MaxSenses: 1}, "max_examples_per_sense"},
		{"items past cap", 1, Shape{MaxItemsPerDay: MaxBookWords + 1, MaxSenses: 1, MaxExamples: 1}, "max_words_per_day"},
		{"grid past cap", MaxBookWords/30 + 1, ok, "max_days"},
		{"senses overflow", 10, Shape{MaxItemsPerDay: 10, MaxSenses: math.MaxInt64 / 50, MaxExamples: 1}, "max_senses_per_word"},
		{"examples overflow", 10, Shape{MaxItemsPerDay: 10, MaxSenses: 1 << 40, MaxExamples: 1 << 20}, "max_examples_per_sense"},
	}
	for _, c := range cases {
		var be *BoundsError
		if err := CheckDimensions(c.days, c.shape); !errors.As(err, &be) || be.Field != c.field {
			t.Fatalf("%s: expected %s bounds error, got %v", c.name, c.field, err)
		}
	}
}
