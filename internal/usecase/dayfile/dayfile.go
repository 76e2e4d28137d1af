// Package dayfile rewrites the word texts of one day from a small
// hand-edited file and produces templates for such files.
package dayfile

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/eslsoft/vocabook/internal/adapter/csvstore"
	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/samber/lo"
)

// ErrNoWords is returned for a day file without any usable word.
var ErrNoWords = errors.New("day file contains no words")

// Mode tells how entries are matched to the day's slots.
type Mode string

const (
	// ModePositional assigns entries to slots in word_no order.
	ModePositional Mode = "positional"
	// ModeWordID assigns each entry to the word with the same id.
	ModeWordID Mode = "word_id"
)

// Entry is one word read from a day file. Key is the first CSV column, zero for plain lists.
type Entry struct {
	Key  int64
	Word string
}

// File is a parsed day file.
type File struct {
	Entries []Entry
	// Keyed is true for two-column CSV input.
	Keyed bool
	// Header is the lower-cased first column name when the file had a header row.
	Header string
}

// Parse reads either a plain list (one word per line) or a two-column CSV
// file with an optional word_id/day_no header. Blank words are skipped.
func Parse(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read day file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err == nil && len(records) > 0 && len(records[0]) >= 2 {
		if f, ok := parseKeyed(records); ok {
			if len(f.Entries) == 0 {
				return nil, ErrNoWords
			}
			return f, nil
		}
	}

	f := &File{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if word := strings.TrimSpace(scanner.Text()); word != "" {
			f.Entries = append(f.Entries, Entry{Word: word})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read day file: %w", err)
	}
	if len(f.Entries) == 0 {
		return nil, ErrNoWords
	}
	return f, nil
}

func parseKeyed(records [][]string) (*File, bool) {
	f := &File{Keyed: true}
	first := strings.ToLower(strings.TrimSpace(records[0][0]))
	switch first {
	case "word_id", "day_no":
		f.Header = first
		records = records[1:]
	default:
		if _, err := strconv.ParseInt(first, 10, 64); err != nil {
			return nil, false
		}
	}
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		key, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			continue
		}
		if word := strings.TrimSpace(rec[1]); word != "" {
			f.Entries = append(f.Entries, Entry{Key: key, Word: word})
		}
	}
	return f, true
}

// Result summarizes an Apply call.
type Result struct {
	Day      int64
	Mode     Mode
	Updated  int
	Warnings []string
}

// Apply replaces the texts of the words of day. Keyed files whose keys are
// all word ids of that day are matched by id; every other file is matched
// by position. Ids, ordinals and the rest of the hierarchy are untouched.
func Apply(ds *dataset.Dataset, day int64, f *File) (*Result, error) {
	slots := ds.Index().WordsOfDay(day)
	if len(slots) == 0 {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnknownDay, day)
	}
	if f == nil || len(f.Entries) == 0 {
		return nil, ErrNoWords
	}
	position := make(map[int64]int, len(ds.Words))
	for i, w := range ds.Words {
		position[w.ID] = i
	}

	res := &Result{Day: day, Mode: chooseMode(slots, f)}
	switch res.Mode {
	case ModeWordID:
		byID := make(map[int64]string, len(f.Entries))
		for _, e := range f.Entries {
			byID[e.Key] = e.Word
		}
		for _, w := range slots {
			word, ok := byID[w.ID]
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("word_id %d has no entry, left unchanged", w.ID))
				continue
			}
			ds.Words[position[w.ID]].Text = word
			res.Updated++
		}
	default:
		entries := positionalEntries(f)
		for i, w := range slots {
			if i >= len(entries) {
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("day %d has %d slots but only %d words; word_no %d onwards left unchanged", day, len(slots), len(entries), w.WordNo))
				break
			}
			ds.Words[position[w.ID]].Text = entries[i].Word
			res.Updated++
		}
		if extra := len(entries) - len(slots); extra > 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%d words beyond the %d slots of day %d were ignored", extra, len(slots), day))
		}
	}
	return res, nil
}

// positionalEntries returns the entries in assignment order. Files keyed by
// word id are ordered by key and a repeated key keeps its last word; plain
// lists and day_no files keep file order.
func positionalEntries(f *File) []Entry {
	if !f.Keyed || f.Header == "day_no" {
		return f.Entries
	}
	last := make(map[int64]string, len(f.Entries))
	for _, e := range f.Entries {
		last[e.Key] = e.Word
	}
	keys := lo.Keys(last)
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return lo.Map(keys, func(k int64, _ int) Entry { return Entry{Key: k, Word: last[k]} })
}

func chooseMode(slots []entity.Word, f *File) Mode {
	if !f.Keyed || f.Header == "day_no" {
		return ModePositional
	}
	ids := make(map[int64]struct{}, len(slots))
	for _, w := range slots {
		ids[w.ID] = struct{}{}
	}
	for _, e := range f.Entries {
		if _, ok := ids[e.Key]; !ok {
			return ModePositional
		}
	}
	return ModeWordID
}

// Template writes a word_id,word CSV listing the slots of day. Slots that
// still hold a placeholder get an empty word.
func Template(ds *dataset.Dataset, day int64, w io.Writer) (int, error) {
	slots := ds.Index().WordsOfDay(day)
	if len(slots) == 0 {
		return 0, fmt.Errorf("%w: %d", entity.ErrUnknownDay, day)
	}
	rows := make([]dataset.Row, len(slots))
	for i, word := range slots {
		text := word.Text
		if entity.IsPlaceholder(text) {
			text = ""
		}
		rows[i] = dataset.Row{"word_id": word.ID, "word": text}
	}
	if err := csvstore.WriteTable(w, []string{"word_id", "word"}, rows); err != nil {
		return 0, fmt.Errorf("write template: %w", err)
	}
	return len(rows), nil
}
