package entity

import "math"

// Identifiers are positional: a word id encodes its (day, ordinal) slot, a
// definition id its word and sense ordinal, an example id its definition and
// example ordinal. The arithmetic is only injective while every ordinal stays
// below the fan-out declared by the book; past that, ids of adjacent parents
// collide silently. Use the Check* helpers before deriving from untrusted input.

// MaxBookWords caps the number of word slots (max_days * max_words_per_day) a book may declare.
const MaxBookWords int64 = 1_000_000

// Shape holds the per-level fan-out a book declares.
type Shape struct {
	MaxItemsPerDay int64
	MaxSenses      int64
	MaxExamples    int64
}

// WordID returns (day-1)*maxItemsPerDay + ordinal. Ordinals are 1-based.
func WordID(day, ordinal, maxItemsPerDay int64) int64 {
	return (day-1)*maxItemsPerDay + ordinal
}

// DefinitionID returns wordID*maxSenses + senseOrdinal. Sense ordinals are 0-based.
func DefinitionID(wordID, senseOrdinal, maxSenses int64) int64 {
	return wordID*maxSenses + senseOrdinal
}

// ExampleID returns definitionID*maxExamples + exampleOrdinal. Example ordinals are 0-based.
func ExampleID(definitionID, exampleOrdinal, maxExamples int64) int64 {
	return definitionID*maxExamples + exampleOrdinal
}

// SplitWordID is the inverse of WordID for ids produced within bounds.
func SplitWordID(wordID, maxItemsPerDay int64) (day, ordinal int64) {
	if maxItemsPerDay <= 0 {
		return 0, 0
	}
	return (wordID-1)/maxItemsPerDay + 1, (wordID-1)%maxItemsPerDay + 1
}

// SplitDefinitionID is the inverse of DefinitionID.
func SplitDefinitionID(definitionID, maxSenses int64) (wordID, senseOrdinal int64) {
	if maxSenses <= 0 {
		return 0, 0
	}
	return definitionID / maxSenses, definitionID % maxSenses
}

// SplitExampleID is the inverse of ExampleID.
func SplitExampleID(exampleID, maxExamples int64) (definitionID, exampleOrdinal int64) {
	if maxExamples <= 0 {
		return 0, 0
	}
	return exampleID / maxExamples, exampleID % maxExamples
}

// CheckWordPosition validates a (day, ordinal) slot.
func CheckWordPosition(day, ordinal, maxItemsPerDay int64) error {
	if maxItemsPerDay < 1 {
		return &BoundsError{Field: "max_words_per_day", Value: maxItemsPerDay, Min: 1, Max: maxItemsPerDay}
	}
	if day < 1 {
		return &BoundsError{Field: "day_no", Value: day, Min: 1, Max: day}
	}
	if ordinal < 1 || ordinal > maxItemsPerDay {
		return &BoundsError{Field: "word_no", Value: ordinal, Min: 1, Max: maxItemsPerDay}
	}
	return nil
}

// CheckSense validates a sense ordinal.
func CheckSense(senseOrdinal, maxSenses int64) error {
	if maxSenses < 1 {
		return &BoundsError{Field: "max_senses_per_word", Value: maxSenses, Min: 1, Max: maxSenses}
	}
	if senseOrdinal < 0 || senseOrdinal >= maxSenses {
		return &BoundsError{Field: "sense_no", Value: senseOrdinal, Min: 0, Max: maxSenses - 1}
	}
	return nil
}

// CheckExample validates an example ordinal.
func CheckExample(exampleOrdinal, maxExamples int64) error {
	if maxExamples < 1 {
		return &BoundsError{Field: "max_examples_per_sense", Value: maxExamples, Min: 1, Max: maxExamples}
	}
	if exampleOrdinal < 0 || exampleOrdinal >= maxExamples {
		return &BoundsError{Field: "example_no", Value: exampleOrdinal, Min: 0, Max: maxExamples - 1}
	}
	return nil
}

// CheckDimensions validates a whole book shape: every dimension is at least
// one, the slot grid stays within MaxBookWords and the largest derivable
// example id fits in an int64.
func CheckDimensions(maxDays int64, s Shape) error {
	for _, dim := range []struct {
		field string
		value int64
	}{
		{"max_days", maxDays},
		{"max_words_per_day", s.MaxItemsPerDay},
		{"max_senses_per_word", s.MaxSenses},
		{"max_examples_per_sense", s.MaxExamples},
	} {
		if dim.value < 1 {
			return &BoundsError{Field: dim.field, Value: dim.value, Min: 1, Max: dim.value}
		}
	}
	if s.MaxItemsPerDay > MaxBookWords {
		return &BoundsError{Field: "max_words_per_day", Value: s.MaxItemsPerDay, Min: 1, Max: MaxBookWords}
	}
	if limit := MaxBookWords / s.MaxItemsPerDay; maxDays > limit {
		return &BoundsError{Field: "max_days", Value: maxDays, Min: 1, Max: limit}
	}
	// The last example of the last sense of the last word has id
	// (words+1)*senses*examples - 1.
	words := maxDays * s.MaxItemsPerDay
	if limit := math.MaxInt64 / (words + 1); s.MaxSenses > limit {
		return &BoundsError{Field: "max_senses_per_word", Value: s.MaxSenses, Min: 1, Max: limit}
	}
	if limit := math.MaxInt64 / ((words + 1) * s.MaxSenses); s.MaxExamples > limit {
		return &BoundsError{Field: "max_examples_per_sense", Value: s.MaxExamples, Min: 1, Max: limit}
	}
	return nil
}

// WordID derives a word id using the shape's fan-out.
func (s Shape) WordID(day, ordinal int64) int64 { return WordID(day, ordinal, s.MaxItemsPerDay) }

// DefinitionID derives a definition id using the shape's fan-out.
func (s Shape) DefinitionID(wordID, senseOrdinal int64) int64 {
	return DefinitionID(wordID, senseOrdinal, s.MaxSenses)
}

// ExampleID derives an example id using the shape's fan-out.
func (s Shape) ExampleID(definitionID, exampleOrdinal int64) int64 {
	return ExampleID(definitionID, exampleOrdinal, s.MaxExamples)
}
