package entity

import (
	"strings"
	"time"
)

// BookID is the fixed key of the singleton book row.
const BookID int64 = 1

// Book describes the shape of the dataset.
type Book struct {
	ID                  int64     `json:"book_id" yaml:"book_id"`
	CodeName            string    `json:"code_name" yaml:"code_name"`
	MaxDays             int64     `json:"max_days" yaml:"max_days"`
	MaxWordsPerDay      int64     `json:"max_words_per_day" yaml:"max_words_per_day"`
	MaxSensesPerWord    int64     `json:"max_senses_per_word" yaml:"max_senses_per_word"`
	MaxExamplesPerSense int64     `json:"max_examples_per_sense" yaml:"max_examples_per_sense"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
}

// Shape returns the fan-out used to derive ids.
func (b *Book) Shape() Shape {
	if b == nil {
		return Shape{}
	}
	return Shape{
		MaxItemsPerDay: b.MaxWordsPerDay,
		MaxSenses:      b.MaxSensesPerWord,
		MaxExamples:    b.MaxExamplesPerSense,
	}
}

// Word is a vocabulary item anchored to a (day, ordinal) slot.
type Word struct {
	ID     int64  `json:"word_id"`
	DayNo  int64  `json:"day_no"`
	WordNo int64  `json:"word_no"` // 1-based
	Text   string `json:"word"`
}

// Definition is one sense of a word.
type Definition struct {
	ID           int64   `json:"definition_id"`
	WordID       int64   `json:"word_id"`
	SenseNo      int64   `json:"sense_no"` // 0-based
	Text         string  `json:"definition"`
	PartOfSpeech *string `json:"part_of_speech,omitempty"`
}

// Example is one usage sentence of a definition.
type Example struct {
	ID           int64  `json:"example_id"`
	DefinitionID int64  `json:"definition_id"`
	ExampleNo    int64  `json:"example_no"` // 0-based
	Sentence     string `json:"example_sentence"`
}

// POS returns the part of speech or an empty string.
func (d Definition) POS() string {
	if d.PartOfSpeech == nil {
		return ""
	}
	return *d.PartOfSpeech
}

// NormalizePartOfSpeech trims the tag and maps blanks to nil.
func NormalizePartOfSpeech(pos string) *string {
	trimmed := strings.TrimSpace(pos)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
