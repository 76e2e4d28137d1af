// Package backup streams the book tables of a database to and from a
// newline-delimited JSON archive. The first record describes the archive,
// every following record carries one row.
package backup

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/infrastructure/database"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
	"github.com/samber/lo"
)

const (
	defaultBatchSize = 512
	formatVersion    = 1
	metaRecordType   = "meta"
)

var (
	errNoTablesSelected = errors.New("backup: no tables selected")
	// ErrSchemaMismatch is returned when an archive was written against a different table layout.
	ErrSchemaMismatch = errors.New("backup: schema hash mismatch")
)

type ProgressReporter interface {
	StartTable(table string, total int)
	Increment(table string, delta int)
	FinishTable(table string)
}

type noopProgress struct{}

func (noopProgress) StartTable(string, int) {}
func (noopProgress) Increment(string, int)  {}
func (noopProgress) FinishTable(string)     {}

type Service struct {
	db         *database.DB
	batchSize  int
	schemaHash string
}

type Option func(*Service)

func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// NewService constructs a backup service bound to an open database.
func NewService(db *database.DB, opts ...Option) (*Service, error) {
	if db == nil || db.DB == nil {
		return nil, errors.New("backup: database is required")
	}
	svc := &Service{
		db:         db,
		batchSize:  defaultBatchSize,
		schemaHash: computeSchemaHash(schema.Tables),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

type ExportOption func(*exportConfig)

type exportConfig struct {
	tables   []string
	reporter ProgressReporter
}

// WithTables restricts export to the provided table names.
func WithTables(tables []string) ExportOption {
	return func(cfg *exportConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithProgressReporter registers a reporter that receives progress callbacks during export.
func WithProgressReporter(reporter ProgressReporter) ExportOption {
	return func(cfg *exportConfig) {
		cfg.reporter = reporter
	}
}

type ImportOption func(*importConfig)

type importConfig struct {
	tables  []string
	replace bool
}

// WithImportTables restricts import to the provided table names.
func WithImportTables(tables []string) ImportOption {
	return func(cfg *importConfig) {
		if len(tables) == 0 {
			return
		}
		cfg.tables = append([]string{}, tables...)
	}
}

// WithReplace clears the selected tables before rows are restored.
func WithReplace(replace bool) ImportOption {
	return func(cfg *importConfig) {
		cfg.replace = replace
	}
}

type record struct {
	Type       string         `json:"type"`
	Version    int            `json:"version,omitempty"`
	ExportedAt *time.Time     `json:"exported_at,omitempty"`
	SchemaHash string         `json:"schema_hash,omitempty"`
	Tables     []string       `json:"tables,omitempty"`
	RowCounts  map[string]int `json:"row_counts,omitempty"`
	Payload    any            `json:"payload,omitempty"`
}

type rawRecord struct {
	Type       string          `json:"type"`
	Version    int             `json:"version"`
	ExportedAt *time.Time      `json:"exported_at"`
	SchemaHash string          `json:"schema_hash"`
	Tables     []string        `json:"tables"`
	RowCounts  map[string]int  `json:"row_counts"`
	Payload    json.RawMessage `json:"payload"`
}

// Summary describes a restored archive.
type Summary struct {
	ExportedAt *time.Time
	Rows       map[string]int
}

func (s *Service) Export(ctx context.Context, w io.Writer, opts ...ExportOption) error {
	cfg := exportConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := selectTables(cfg.tables)
	if err != nil {
		return err
	}
	reporter := cfg.reporter
	if reporter == nil {
		reporter = noopProgress{}
	}

	counts := make(map[string]int, len(tables))
	for _, tbl := range tables {
		count, err := s.countTableRows(ctx, tbl.Name)
		if err != nil {
			return fmt.Errorf("count table %s: %w", tbl.Name, err)
		}
		counts[tbl.Name] = count
	}

	writer := bufio.NewWriter(w)
	defer writer.Flush()

	now := time.Now().UTC()
	meta := record{
		Type:       metaRecordType,
		Version:    formatVersion,
		ExportedAt: &now,
		SchemaHash: s.schemaHash,
		Tables:     tableNames(tables),
		RowCounts:  counts,
	}
	if err := writeRecord(writer, meta); err != nil {
		return err
	}

	for _, tbl := range tables {
		reporter.StartTable(tbl.Name, counts[tbl.Name])
		if err := s.exportTable(ctx, tbl, reporter, writer); err != nil {
			return err
		}
		reporter.FinishTable(tbl.Name)
	}
	return writer.Flush()
}

// Import restores an archive inside one transaction. Rows that already exist
// are overwritten, keyed on the primary key.
func (s *Service) Import(ctx context.Context, r io.Reader, opts ...ImportOption) (*Summary, error) {
	cfg := importConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	tables, err := selectTables(cfg.tables)
	if err != nil {
		return nil, err
	}
	tableFilter := lo.KeyBy(tables, func(tbl *entschema.Table) string { return tbl.Name })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	if cfg.replace {
		for i := len(tables) - 1; i >= 0; i-- {
			query, args := entsql.Dialect(s.db.Dialect).Delete(tables[i].Name).Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return nil, fmt.Errorf("clear %s: %w", tables[i].Name, err)
			}
		}
	}

	br := bufio.NewReader(r)
	summary := &Summary{Rows: make(map[string]int, len(tables))}
	metaSeen := false
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read backup: %w", err)
		}
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var rec rawRecord
			if err := json.Unmarshal(line, &rec); err != nil {
				return nil, fmt.Errorf("decode record on line %d: %w", lineNo, err)
			}
			if rec.Type == metaRecordType {
				if err := s.checkMeta(rec); err != nil {
					return nil, err
				}
				metaSeen = true
				summary.ExportedAt = rec.ExportedAt
			} else {
				if !metaSeen {
					return nil, errors.New("backup: missing meta record")
				}
				if tbl, ok := tableFilter[rec.Type]; ok {
					if len(rec.Payload) == 0 {
						return nil, fmt.Errorf("backup: missing payload for table %s", rec.Type)
					}
					if err := s.importRow(ctx, tx, tbl, lineNo, rec.Payload); err != nil {
						return nil, err
					}
					summary.Rows[tbl.Name]++
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if !metaSeen {
		return nil, errors.New("backup: missing meta record")
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	commit = true
	return summary, nil
}

func (s *Service) checkMeta(rec rawRecord) error {
	if rec.Version != formatVersion {
		return fmt.Errorf("backup: unsupported format version %d", rec.Version)
	}
	if rec.SchemaHash != s.schemaHash {
		return fmt.Errorf("%w: archive %s, database %s", ErrSchemaMismatch, shortHash(rec.SchemaHash), shortHash(s.schemaHash))
	}
	return nil
}

func (s *Service) exportTable(ctx context.Context, table *entschema.Table, reporter ProgressReporter, w io.Writer) error {
	columns := schema.ColumnNames(table)
	for offset := 0; ; offset += s.batchSize {
		query, args := entsql.Dialect(s.db.Dialect).
			Select(columns...).
			From(entsql.Table(table.Name)).
			OrderBy(schema.PrimaryKey(table)).
			Limit(s.batchSize).
			Offset(offset).
			Query()
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query %s: %w", table.Name, err)
		}

		rowCount := 0
		for rows.Next() {
			values := make([]any, len(columns))
			dest := make([]any, len(columns))
			for i := range dest {
				dest[i] = &values[i]
			}
			if err := rows.Scan(dest...); err != nil {
				rows.Close()
				return fmt.Errorf("scan %s: %w", table.Name, err)
			}
			payload := make(map[string]any, len(columns))
			for i, col := range columns {
				payload[col] = exportValue(values[i])
			}
			if err := writeRecord(w, record{Type: table.Name, Payload: payload}); err != nil {
				rows.Close()
				return err
			}
			reporter.Increment(table.Name, 1)
			rowCount++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("iterate %s: %w", table.Name, err)
		}
		rows.Close()
		if rowCount < s.batchSize {
			break
		}
	}
	return nil
}

// importRow decodes a payload through the dataset codec so archive values get
// the same type checks as CSV cells, then upserts it.
func (s *Service) importRow(ctx context.Context, tx *sql.Tx, table *entschema.Table, lineNo int, payload json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw dataset.Row
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode payload for %s: %w", table.Name, err)
	}
	for key := range raw {
		if schema.Column(table, key) == nil {
			return fmt.Errorf("backup: column %s not found in table %s", key, table.Name)
		}
	}

	scratch := dataset.New()
	if err := scratch.AppendRow("backup", table.Name, lineNo, raw); err != nil {
		return err
	}
	rows, err := scratch.Rows(table.Name)
	if err != nil {
		return err
	}
	if len(rows) != 1 {
		return fmt.Errorf("backup: line %d: expected one %s row", lineNo, table.Name)
	}

	columns := schema.ColumnNames(table)
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = rows[0][col]
	}
	query, args := entsql.Dialect(s.db.Dialect).
		Insert(table.Name).
		Columns(columns...).
		Values(values...).
		OnConflict(
			entsql.ConflictColumns(schema.PrimaryKey(table)),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table.Name, err)
	}
	return nil
}

// selectTables returns the requested tables in parent-first order so rows are
// restored before the rows that reference them.
func selectTables(requested []string) ([]*entschema.Table, error) {
	if len(requested) == 0 {
		return append([]*entschema.Table(nil), schema.Tables...), nil
	}
	set := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		n := strings.TrimSpace(strings.ToLower(name))
		if n == "" {
			continue
		}
		if _, ok := schema.Lookup(n); !ok {
			return nil, fmt.Errorf("backup: unsupported table %q", name)
		}
		set[n] = struct{}{}
	}
	if len(set) == 0 {
		return nil, errNoTablesSelected
	}
	return lo.Filter(schema.Tables, func(tbl *entschema.Table, _ int) bool {
		_, ok := set[tbl.Name]
		return ok
	}), nil
}

func (s *Service) countTableRows(ctx context.Context, table string) (int, error) {
	query, args := entsql.Dialect(s.db.Dialect).
		Select(entsql.Count("*")).
		From(entsql.Table(table)).
		Query()
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func exportValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return v
	}
}

func tableNames(tables []*entschema.Table) []string {
	return lo.Map(tables, func(tbl *entschema.Table, _ int) string { return tbl.Name })
}

func computeSchemaHash(tables []*entschema.Table) string {
	builder := &strings.Builder{}
	sortedTables := make([]*entschema.Table, len(tables))
	copy(sortedTables, tables)
	sort.Slice(sortedTables, func(i, j int) bool { return sortedTables[i].Name < sortedTables[j].Name })

	for _, tbl := range sortedTables {
		builder.WriteString(tbl.Name)
		builder.WriteString("|cols:")
		sortedCols := make([]*entschema.Column, len(tbl.Columns))
		copy(sortedCols, tbl.Columns)
		sort.Slice(sortedCols, func(i, j int) bool { return sortedCols[i].Name < sortedCols[j].Name })
		for _, col := range sortedCols {
			fmt.Fprintf(builder, "%s:%d:%t;", col.Name, col.Type, col.Nullable)
		}
		builder.WriteString("|pk:")
		for _, pk := range tbl.PrimaryKey {
			builder.WriteString(pk.Name)
			builder.WriteByte(',')
		}
		builder.WriteByte('\n')
	}
	sum := sha256.Sum256([]byte(builder.String()))
	return fmt.Sprintf("%x", sum[:])
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func writeRecord(w io.Writer, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	return nil
}
