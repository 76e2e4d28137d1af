package dataset

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
)

// Row is one table row keyed by column name. Values are int64, string,
// time.Time or nil when read back from a store; decoding also accepts the
// textual and driver-specific forms CSV files and SQL drivers produce.
type Row map[string]any

// TimeLayout is the textual timestamp format used in CSV files. Fractional
// seconds are kept so that any timestamp read back is written unchanged.
const TimeLayout = time.RFC3339Nano

// RequireColumns returns a FormatError naming the first column of table that is missing from present.
func RequireColumns(source string, table *entschema.Table, present []string) error {
	set := make(map[string]struct{}, len(present))
	for _, name := range present {
		set[strings.TrimSpace(name)] = struct{}{}
	}
	for _, col := range table.Columns {
		if _, ok := set[col.Name]; !ok {
			return &entity.FormatError{Source: source, Column: col.Name}
		}
	}
	return nil
}

// AppendRow decodes row into the entity of the given table and appends it.
// line is the 1-based position of the row in its source, used in errors.
func (d *Dataset) AppendRow(source, table string, line int, row Row) error {
	tbl, ok := schema.Lookup(table)
	if !ok {
		return fmt.Errorf("%w: %s", entity.ErrUnknownTable, table)
	}
	dec := rowDecoder{source: source, line: line, row: row}
	switch tbl.Name {
	case schema.Books:
		b := entity.Book{
			ID:                  dec.integer("book_id"),
			CodeName:            dec.text("code_name"),
			MaxDays:             dec.integer("max_days"),
			MaxWordsPerDay:      dec.integer("max_words_per_day"),
			MaxSensesPerWord:    dec.integer("max_senses_per_word"),
			MaxExamplesPerSense: dec.integer("max_examples_per_sense"),
			CreatedAt:           dec.timestamp("created_at"),
		}
		if dec.err != nil {
			return dec.err
		}
		if d.Book != nil {
			return fmt.Errorf("%w: %s row %d", entity.ErrDuplicateBook, source, line)
		}
		d.Book = &b
	case schema.Words:
		w := entity.Word{
			ID:     dec.integer("word_id"),
			DayNo:  dec.integer("day_no"),
			WordNo: dec.integer("word_no"),
			Text:   dec.text("word"),
		}
		if dec.err != nil {
			return dec.err
		}
		d.Words = append(d.Words, w)
	case schema.Definitions:
		def := entity.Definition{
			ID:           dec.integer("definition_id"),
			WordID:       dec.integer("word_id"),
			SenseNo:      dec.integer("sense_no"),
			Text:         dec.text("definition"),
			PartOfSpeech: entity.NormalizePartOfSpeech(dec.text("part_of_speech")),
		}
		if dec.err != nil {
			return dec.err
		}
		d.Definitions = append(d.Definitions, def)
	case schema.Examples:
		ex := entity.Example{
			ID:           dec.integer("example_id"),
			DefinitionID: dec.integer("definition_id"),
			ExampleNo:    dec.integer("example_no"),
			Sentence:     dec.text("example_sentence"),
		}
		if dec.err != nil {
			return dec.err
		}
		d.Examples = append(d.Examples, ex)
	}
	return nil
}

// Rows encodes the entities of one table. Nullable empty values are nil.
func (d *Dataset) Rows(table string) ([]Row, error) {
	tbl, ok := schema.Lookup(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownTable, table)
	}
	switch tbl.Name {
	case schema.Books:
		if d.Book == nil {
			return nil, nil
		}
		b := d.Book
		return []Row{{
			"book_id":                b.ID,
			"code_name":              b.CodeName,
			"max_days":               b.MaxDays,
			"max_words_per_day":      b.MaxWordsPerDay,
			"max_senses_per_word":    b.MaxSensesPerWord,
			"max_examples_per_sense": b.MaxExamplesPerSense,
			"created_at":             b.CreatedAt.UTC(),
		}}, nil
	case schema.Words:
		rows := make([]Row, len(d.Words))
		for i, w := range d.Words {
			rows[i] = Row{"word_id": w.ID, "day_no": w.DayNo, "word_no": w.WordNo, "word": w.Text}
		}
		return rows, nil
	case schema.Definitions:
		rows := make([]Row, len(d.Definitions))
		for i, def := range d.Definitions {
			var pos any
			if def.PartOfSpeech != nil {
				pos = *def.PartOfSpeech
			}
			rows[i] = Row{
				"definition_id":  def.ID,
				"word_id":        def.WordID,
				"sense_no":       def.SenseNo,
				"definition":     def.Text,
				"part_of_speech": pos,
			}
		}
		return rows, nil
	default:
		rows := make([]Row, len(d.Examples))
		for i, ex := range d.Examples {
			rows[i] = Row{
				"example_id":       ex.ID,
				"definition_id":    ex.DefinitionID,
				"example_no":       ex.ExampleNo,
				"example_sentence": ex.Sentence,
			}
		}
		return rows, nil
	}
}

// FormatValue renders a row value as CSV cell text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case time.Time:
		return val.UTC().Format(TimeLayout)
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// rowDecoder converts the cells of one row, keeping the first error.
type rowDecoder struct {
	source string
	line   int
	row    Row
	err    error
}

func (r *rowDecoder) fail(column string, value any, err error) {
	if r.err != nil {
		return
	}
	r.err = &entity.ParseError{Source: r.source, Row: r.line, Column: column, Value: FormatValue(value), Err: err}
}

func (r *rowDecoder) value(column string) (any, bool) {
	v, ok := r.row[column]
	if !ok && r.err == nil {
		r.err = &entity.FormatError{Source: r.source, Column: column}
	}
	return v, ok
}

func (r *rowDecoder) integer(column string) int64 {
	v, ok := r.value(column)
	if !ok {
		return 0
	}
	n, err := toInt64(v)
	if err != nil {
		r.fail(column, v, err)
		return 0
	}
	return n
}

func (r *rowDecoder) text(column string) string {
	v, ok := r.value(column)
	if !ok || v == nil {
		return ""
	}
	return FormatValue(v)
}

func (r *rowDecoder) timestamp(column string) time.Time {
	v, ok := r.value(column)
	if !ok || v == nil {
		return time.Time{}
	}
	t, err := toTime(v)
	if err != nil {
		r.fail(column, v, err)
		return time.Time{}
	}
	return t
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("non-integer number %v", v)
		}
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unsupported int type %T", value)
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

func toTime(value any) (time.Time, error) {
	var s string
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return time.Time{}, fmt.Errorf("unsupported time type %T", value)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
