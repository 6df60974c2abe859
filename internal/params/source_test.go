package params

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vietddude/paramretry/internal/core/domain"
)

func TestCollect_IndexesAcrossSources(t *testing.T) {
	got, err := Collect(context.Background(), Signature{},
		Values{{1, "a"}, {2, "b"}},
		Single("c"),
	)
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}

	want := []domain.Tuple{
		{Index: 0, Args: []any{1, "a"}},
		{Index: 1, Args: []any{2, "b"}},
		{Index: 2, Args: []any{"c"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect mismatch (-want +got):\n%s", diff)
	}
}

func TestCollect_Truncation(t *testing.T) {
	src := Values{{1, 2, 3}, {4}}

	tests := []struct {
		name string
		sig  Signature
		want [][]any
	}{
		{"truncates to arity", Signature{Params: 2}, [][]any{{1, 2}, {4}}},
		{"aggregator keeps remainder", Signature{Params: 2, Aggregates: true}, [][]any{{1, 2, 3}, {4}}},
		{"zero params keeps all", Signature{}, [][]any{{1, 2, 3}, {4}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(context.Background(), tt.sig, src)
			if err != nil {
				t.Fatalf("Collect failed: %v", err)
			}
			args := make([][]any, len(got))
			for i, tup := range got {
				args[i] = tup.Args
			}
			if diff := cmp.Diff(tt.want, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollect_SourceError(t *testing.T) {
	boom := errors.New("boom")
	got, err := Collect(context.Background(), Signature{},
		Values{{1}},
		Func(func(ctx context.Context) ([][]any, error) { return nil, boom }),
	)
	if !errors.Is(err, ErrSource) || !errors.Is(err, boom) {
		t.Errorf("expected ErrSource wrapping boom, got %v", err)
	}
	if got != nil {
		t.Errorf("expected no tuples, got %v", got)
	}
}

func TestCollect_NoSources(t *testing.T) {
	if _, err := Collect(context.Background(), Signature{}); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuples.yaml")
	content := `
- [1, "one"]
- [2, "two", true]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	got, err := Collect(context.Background(), Signature{Params: 2}, YAMLFile(path))
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tuples, got %d", len(got))
	}
	if diff := cmp.Diff([]any{2, "two"}, got[1].Args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLFile_Missing(t *testing.T) {
	_, err := Collect(context.Background(), Signature{}, YAMLFile("does-not-exist.yaml"))
	if !errors.Is(err, ErrSource) {
		t.Errorf("expected ErrSource, got %v", err)
	}
}
