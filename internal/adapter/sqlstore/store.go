// Package sqlstore persists a book dataset in a relational database using
// the declarative table set and ent's SQL builder.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/infrastructure/database"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
	"github.com/sirupsen/logrus"
)

// insertBatchRows bounds the number of rows per INSERT statement so the
// bound parameter count stays under sqlite's limit.
const insertBatchRows = 100

// Store reads and writes a dataset in one database.
type Store struct {
	db     *database.DB
	logger logrus.FieldLogger
}

type Option func(*Store)

// WithLogger sets the logger used for load/save summaries.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a store over db. The schema must already exist, see database.Migrate.
func New(db *database.DB, opts ...Option) *Store {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := &Store{db: db, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads every table ordered by primary key.
func (s *Store) Load(ctx context.Context) (*dataset.Dataset, error) {
	ds := dataset.New()
	for _, tbl := range schema.Tables {
		n, err := s.loadTable(ctx, ds, tbl)
		if err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{"table": tbl.Name, "rows": n}).Debug("sql table loaded")
	}
	return ds, nil
}

func (s *Store) loadTable(ctx context.Context, ds *dataset.Dataset, tbl *entschema.Table) (int, error) {
	query, args := entsql.Dialect(s.db.Dialect).
		Select("*").
		From(entsql.Table(tbl.Name)).
		OrderBy(schema.PrimaryKey(tbl)).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", tbl.Name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("columns %s: %w", tbl.Name, err)
	}
	if err := dataset.RequireColumns(tbl.Name, tbl, columns); err != nil {
		return 0, err
	}

	count := 0
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return 0, fmt.Errorf("scan %s: %w", tbl.Name, err)
		}
		row := make(dataset.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		count++
		if err := ds.AppendRow(tbl.Name, tbl.Name, count, row); err != nil {
			return 0, err
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate %s: %w", tbl.Name, err)
	}
	return count, nil
}

// Save replaces the whole content of the database with ds in one
// transaction. Children are cleared before parents and inserted after them.
func (s *Store) Save(ctx context.Context, ds *dataset.Dataset) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for i := len(schema.Tables) - 1; i >= 0; i-- {
			tbl := schema.Tables[i]
			query, args := entsql.Dialect(s.db.Dialect).Delete(tbl.Name).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("clear %s: %w", tbl.Name, err)
			}
		}
		for _, tbl := range schema.Tables {
			rows, err := ds.Rows(tbl.Name)
			if err != nil {
				return err
			}
			if err := s.insertRows(ctx, tx, tbl, rows); err != nil {
				return err
			}
			s.logger.WithFields(logrus.Fields{"table": tbl.Name, "rows": len(rows)}).Debug("sql table saved")
		}
		return nil
	})
}

// UpsertBook writes the singleton book row, leaving the other tables untouched.
func (s *Store) UpsertBook(ctx context.Context, book entity.Book) error {
	ds := &dataset.Dataset{Book: &book}
	rows, err := ds.Rows(schema.Books)
	if err != nil {
		return err
	}
	columns := schema.ColumnNames(schema.BooksTable)
	query, args := entsql.Dialect(s.db.Dialect).
		Insert(schema.Books).
		Columns(columns...).
		Values(rowValues(columns, rows[0])...).
		OnConflict(
			entsql.ConflictColumns(schema.PrimaryKey(schema.BooksTable)),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert book: %w", err)
	}
	return nil
}

func (s *Store) insertRows(ctx context.Context, tx *sql.Tx, tbl *entschema.Table, rows []dataset.Row) error {
	columns := schema.ColumnNames(tbl)
	for start := 0; start < len(rows); start += insertBatchRows {
		end := min(start+insertBatchRows, len(rows))
		insert := entsql.Dialect(s.db.Dialect).Insert(tbl.Name).Columns(columns...)
		for _, row := range rows[start:end] {
			insert.Values(rowValues(columns, row)...)
		}
		query, args := insert.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", tbl.Name, err)
		}
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func rowValues(columns []string, row dataset.Row) []any {
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = row[col]
	}
	return values
}
