// Package csvstore reads and writes a book dataset as a directory of CSV
// files, one per table, with the fixed headers of the declarative schema.
package csvstore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	entschema "entgo.io/ent/dialect/sql/schema"
	"github.com/eslsoft/vocabook/internal/dataset"
	"github.com/eslsoft/vocabook/internal/entity"
	"github.com/eslsoft/vocabook/internal/infrastructure/database/schema"
	"github.com/sirupsen/logrus"
)

const utf8BOM = "\ufeff"

// Dir is a CSV file set rooted at a directory.
type Dir struct {
	path   string
	logger logrus.FieldLogger
}

type Option func(*Dir)

// WithLogger sets the logger used for load/save summaries.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(d *Dir) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New returns a CSV store for the directory at path.
func New(path string, opts ...Option) *Dir {
	d := &Dir{path: filepath.Clean(path), logger: discardLogger()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Path returns the root directory.
func (d *Dir) Path() string { return d.path }

// Load reads every table file. Any missing file, missing column or
// unparsable value aborts the load.
func (d *Dir) Load(ctx context.Context) (*dataset.Dataset, error) {
	ds := dataset.New()
	for _, tbl := range schema.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := d.loadTable(ds, tbl)
		if err != nil {
			return nil, err
		}
		d.logger.WithFields(logrus.Fields{"table": tbl.Name, "rows": n}).Debug("csv table loaded")
	}
	return ds, nil
}

func (d *Dir) loadTable(ds *dataset.Dataset, tbl *entschema.Table) (int, error) {
	name := schema.FileName(tbl.Name)
	f, err := os.Open(filepath.Join(d.path, name))
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	return ReadTable(ds, name, tbl, f)
}

// ReadTable decodes one CSV stream into ds. source names the stream in errors.
func ReadTable(ds *dataset.Dataset, source string, tbl *entschema.Table, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, &entity.FormatError{Source: source}
	}
	if err != nil {
		return 0, fmt.Errorf("read %s header: %w", source, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], utf8BOM))
	}
	if err := dataset.RequireColumns(source, tbl, header); err != nil {
		return 0, err
	}

	count := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", source, err)
		}
		row := make(dataset.Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := ds.AppendRow(source, tbl.Name, line, row); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// Save rewrites every table file. Each file is written to a temporary file
// first and renamed into place.
func (d *Dir) Save(ctx context.Context, ds *dataset.Dataset) error {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("create csv directory: %w", err)
	}
	for _, tbl := range schema.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		rows, err := ds.Rows(tbl.Name)
		if err != nil {
			return err
		}
		if err := d.saveTable(tbl, rows); err != nil {
			return err
		}
		d.logger.WithFields(logrus.Fields{"table": tbl.Name, "rows": len(rows)}).Debug("csv table saved")
	}
	return nil
}

func (d *Dir) saveTable(tbl *entschema.Table, rows []dataset.Row) (err error) {
	name := schema.FileName(tbl.Name)
	tmp, err := os.CreateTemp(d.path, "."+name+"-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = WriteTable(tmp, schema.ColumnNames(tbl), rows); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err = os.Rename(tmp.Name(), filepath.Join(d.path, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

// WriteTable writes a header and rows in column order.
func WriteTable(w io.Writer, columns []string, rows []dataset.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			record[i] = dataset.FormatValue(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
