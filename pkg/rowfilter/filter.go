// Package rowfilter evaluates CEL predicates against table rows held as
// column maps, and sorts such rows by a short order expression.
package rowfilter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"
)

// ValueKind describes the type a column is exposed as.
type ValueKind string

const (
	KindString    ValueKind = "string"
	KindInt       ValueKind = "int"
	KindTimestamp ValueKind = "timestamp"
)

// Field declares one column visible to expressions.
type Field struct {
	Name string
	Kind ValueKind
}

// Filter is a compiled predicate.
type Filter struct {
	expr    string
	fields  []Field
	program cel.Program
}

// Compile parses and type-checks expr. Every field becomes a CEL variable of
// its kind and the expression must evaluate to a bool.
func Compile(expr string, fields []Field) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("filter expression is empty")
	}
	if len(fields) == 0 {
		return nil, errors.New("filter schema has no fields defined")
	}

	env, err := buildEnv(fields)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid filter: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build filter program: %w", err)
	}
	return &Filter{expr: expr, fields: fields, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the filter against one row. Missing or nil values are
// bound to the zero value of the field kind.
func (f *Filter) Match(row map[string]any) (bool, error) {
	vars := make(map[string]any, len(f.fields))
	for _, field := range f.fields {
		v, err := bindValue(field, row[field.Name])
		if err != nil {
			return false, err
		}
		vars[field.Name] = v
	}
	out, _, err := f.program.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("evaluate filter: %w", err)
	}
	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return matched, nil
}

// Apply returns the rows that match f, keeping their order.
func Apply[R ~map[string]any](f *Filter, rows []R) ([]R, error) {
	if f == nil {
		return rows, nil
	}
	out := make([]R, 0, len(rows))
	for _, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func buildEnv(fields []Field) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(fields)+1)
	for _, field := range fields {
		celType, err := celTypeForKind(field.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name, err)
		}
		opts = append(opts, cel.Variable(field.Name, celType))
	}
	opts = append(opts, cel.CrossTypeNumericComparisons(true))
	return cel.NewEnv(opts...)
}

func celTypeForKind(kind ValueKind) (*cel.Type, error) {
	switch kind {
	case KindString:
		return cel.StringType, nil
	case KindInt:
		return cel.IntType, nil
	case KindTimestamp:
		return cel.TimestampType, nil
	default:
		return nil, fmt.Errorf("unsupported field kind %s", kind)
	}
}

func bindValue(field Field, value any) (any, error) {
	switch field.Kind {
	case KindString:
		switch v := value.(type) {
		case nil:
			return "", nil
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		default:
			return fmt.Sprintf("%v", v), nil
		}
	case KindInt:
		switch v := value.(type) {
		case nil:
			return int64(0), nil
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case int32:
			return int64(v), nil
		default:
			return nil, fmt.Errorf("field %q: unsupported int value %T", field.Name, value)
		}
	case KindTimestamp:
		switch v := value.(type) {
		case nil:
			return time.Time{}, nil
		case time.Time:
			return v, nil
		default:
			return nil, fmt.Errorf("field %q: unsupported timestamp value %T", field.Name, value)
		}
	default:
		return nil, fmt.Errorf("unsupported field kind %s", field.Kind)
	}
}
