// Package params supplies the ordered parameter tuples of a run.
package params

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/paramretry/internal/core/domain"
)

// ErrSource is returned when a provider cannot produce its tuples.
var ErrSource = errors.New("parameter source failed")

// Source supplies an ordered, finite sequence of argument lists.
type Source interface {
	Tuples(ctx context.Context) ([][]any, error)
}

// Values is a fixed list of argument lists.
type Values [][]any

// Tuples returns the values as-is.
func (v Values) Tuples(ctx context.Context) ([][]any, error) {
	return v, nil
}

// Single builds a source with one argument per tuple.
func Single(args ...any) Values {
	out := make(Values, len(args))
	for i, a := range args {
		out[i] = []any{a}
	}
	return out
}

// Func adapts a function to a Source.
type Func func(ctx context.Context) ([][]any, error)

// Tuples calls f.
func (f Func) Tuples(ctx context.Context) ([][]any, error) {
	return f(ctx)
}

// YAMLFile reads a YAML list of argument lists:
//
//	- [1, "one"]
//	- [2, "two"]
type YAMLFile string

// Tuples reads and parses the file.
func (f YAMLFile) Tuples(ctx context.Context) ([][]any, error) {
	data, err := os.ReadFile(string(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read tuple file: %w", err)
	}

	var rows [][]any
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse tuple file %s: %w", f, err)
	}
	return rows, nil
}

// Collect drains every source in order into one indexed buffer, fitting each
// argument list to sig. Any source error is a configuration error and no
// tuples are returned.
func Collect(ctx context.Context, sig Signature, sources ...Source) ([]domain.Tuple, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no parameter sources", domain.ErrInvalidConfig)
	}

	var out []domain.Tuple
	for i, src := range sources {
		if src == nil {
			return nil, fmt.Errorf("%w: source %d is nil", domain.ErrInvalidConfig, i)
		}
		rows, err := src.Tuples(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: source %d: %w", ErrSource, i, err)
		}
		for _, args := range rows {
			out = append(out, domain.Tuple{
				Index: len(out),
				Args:  sig.Fit(args),
			})
		}
	}
	return out, nil
}
