// Package schema declares the four tables of a book dataset. CSV headers,
// SQL DDL, row codecs and backups all read their column sets from here.
package schema

import (
	"strings"

	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	Books       = "books"
	Words       = "words"
	Definitions = "definitions"
	Examples    = "examples"
)

var (
	// BooksColumns holds the columns for the "books" table.
	BooksColumns = []*entschema.Column{
		{Name: "book_id", Type: field.TypeInt64},
		{Name: "code_name", Type: field.TypeString},
		{Name: "max_days", Type: field.TypeInt64},
		{Name: "max_words_per_day", Type: field.TypeInt64},
		{Name: "max_senses_per_word", Type: field.TypeInt64},
		{Name: "max_examples_per_sense", Type: field.TypeInt64},
		{Name: "created_at", Type: field.TypeTime},
	}
	// BooksTable holds the schema information for the "books" table.
	BooksTable = &entschema.Table{
		Name:       Books,
		Columns:    BooksColumns,
		PrimaryKey: []*entschema.Column{BooksColumns[0]},
	}
	// WordsColumns holds the columns for the "words" table.
	WordsColumns = []*entschema.Column{
		{Name: "word_id", Type: field.TypeInt64},
		{Name: "day_no", Type: field.TypeInt64},
		{Name: "word_no", Type: field.TypeInt64},
		{Name: "word", Type: field.TypeString},
	}
	// WordsTable holds the schema information for the "words" table.
	WordsTable = &entschema.Table{
		Name:       Words,
		Columns:    WordsColumns,
		PrimaryKey: []*entschema.Column{WordsColumns[0]},
		Indexes: []*entschema.Index{
			{
				Name:    "word_day_no_word_no",
				Unique:  true,
				Columns: []*entschema.Column{WordsColumns[1], WordsColumns[2]},
			},
		},
	}
	// DefinitionsColumns holds the columns for the "definitions" table.
	DefinitionsColumns = []*entschema.Column{
		{Name: "definition_id", Type: field.TypeInt64},
		{Name: "word_id", Type: field.TypeInt64},
		{Name: "sense_no", Type: field.TypeInt64},
		{Name: "definition", Type: field.TypeString},
		{Name: "part_of_speech", Type: field.TypeString, Nullable: true},
	}
	// DefinitionsTable holds the schema information for the "definitions" table.
	DefinitionsTable = &entschema.Table{
		Name:       Definitions,
		Columns:    DefinitionsColumns,
		PrimaryKey: []*entschema.Column{DefinitionsColumns[0]},
		ForeignKeys: []*entschema.ForeignKey{
			{
				Symbol:     "definitions_words_definitions",
				Columns:    []*entschema.Column{DefinitionsColumns[1]},
				RefColumns: []*entschema.Column{WordsColumns[0]},
				OnDelete:   entschema.NoAction,
			},
		},
		Indexes: []*entschema.Index{
			{
				Name:    "definition_word_id_sense_no",
				Unique:  true,
				Columns: []*entschema.Column{DefinitionsColumns[1], DefinitionsColumns[2]},
			},
		},
	}
	// ExamplesColumns holds the columns for the "examples" table.
	ExamplesColumns = []*entschema.Column{
		{Name: "example_id", Type: field.TypeInt64},
		{Name: "definition_id", Type: field.TypeInt64},
		{Name: "example_no", Type: field.TypeInt64},
		{Name: "example_sentence", Type: field.TypeString},
	}
	// ExamplesTable holds the schema information for the "examples" table.
	ExamplesTable = &entschema.Table{
		Name:       Examples,
		Columns:    ExamplesColumns,
		PrimaryKey: []*entschema.Column{ExamplesColumns[0]},
		ForeignKeys: []*entschema.ForeignKey{
			{
				Symbol:     "examples_definitions_examples",
				Columns:    []*entschema.Column{ExamplesColumns[1]},
				RefColumns: []*entschema.Column{DefinitionsColumns[0]},
				OnDelete:   entschema.NoAction,
			},
		},
		Indexes: []*entschema.Index{
			{
				Name:    "example_definition_id_example_no",
				Unique:  true,
				Columns: []*entschema.Column{ExamplesColumns[1], ExamplesColumns[2]},
			},
		},
	}
	// Tables holds all the tables in the schema, parents first.
	Tables = []*entschema.Table{
		BooksTable,
		WordsTable,
		DefinitionsTable,
		ExamplesTable,
	}
)

func init() {
	DefinitionsTable.ForeignKeys[0].RefTable = WordsTable
	ExamplesTable.ForeignKeys[0].RefTable = DefinitionsTable
}

// Lookup returns the table with the given name.
func Lookup(name string) (*entschema.Table, bool) {
	n := strings.TrimSpace(strings.ToLower(name))
	for _, tbl := range Tables {
		if tbl.Name == n {
			return tbl, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names of a table in declaration order.
func ColumnNames(table *entschema.Table) []string {
	cols := make([]string, len(table.Columns))
	for i, col := range table.Columns {
		cols[i] = col.Name
	}
	return cols
}

// Column returns the named column of a table, or nil.
func Column(table *entschema.Table, name string) *entschema.Column {
	for _, col := range table.Columns {
		if col.Name == name {
			return col
		}
	}
	return nil
}

// PrimaryKey returns the name of the single-column primary key.
func PrimaryKey(table *entschema.Table) string {
	if len(table.PrimaryKey) == 0 {
		return ""
	}
	return table.PrimaryKey[0].Name
}

// FileName returns the CSV file name for a table. The books table is stored as book_meta.csv.
func FileName(table string) string {
	if table == Books {
		return "book_meta.csv"
	}
	return table + ".csv"
}

// IsInteger reports whether a column holds integers.
func IsInteger(col *entschema.Column) bool {
	switch col.Type {
	case field.TypeInt, field.TypeInt8, field.TypeInt16, field.TypeInt32, field.TypeInt64,
		field.TypeUint, field.TypeUint8, field.TypeUint16, field.TypeUint32, field.TypeUint64:
		return true
	default:
		return false
	}
}

// IsTime reports whether a column holds timestamps.
func IsTime(col *entschema.Column) bool {
	return col.Type == field.TypeTime
}
