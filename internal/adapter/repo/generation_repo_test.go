package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"artstudio/internal/domain"
	"artstudio/internal/infra"
)

type stubExec struct {
	execSQL  []string
	execArgs [][]any
	execErr  error
	rows     [][]any
	queryArg []any
}

func (s *stubExec) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, query)
	s.execArgs = append(s.execArgs, args)
	return pgconn.NewCommandTag("INSERT 0 1"), s.execErr
}

func (s *stubExec) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return nil
}

func (s *stubExec) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	s.queryArg = args
	return &stubRows{data: s.rows, idx: -1}, nil
}

type stubRows struct {
	data [][]any
	idx  int
}

func (r *stubRows) Close()                                       {}
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return r.data[r.idx], nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

func (r *stubRows) Scan(dest ...any) error {
	row := r.data[r.idx]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d columns, %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestGenerationRepositoryCreate(t *testing.T) {
	exec := &stubExec{}
	repo := NewGenerationRepository(infra.NewSQLRunner(exec, *infra.NopLogger()))
	rec := &domain.GenerationRecord{
		ID:        "4f1c2d3e-0000-4000-8000-000000000001",
		Kind:      domain.GenerationKindTextToImage,
		Prompt:    "a red fox",
		Outcome:   domain.OutcomeSucceeded,
		Image:     "/generated/1.png",
		CreatedAt: time.Unix(0, 0).UTC(),
	}
	if err := repo.Create(context.Background(), rec); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if len(exec.execSQL) != 1 || !strings.Contains(exec.execSQL[0], "insert into generations") {
		t.Fatalf("unexpected statements: %v", exec.execSQL)
	}
	if strings.HasPrefix(strings.TrimSpace(exec.execSQL[0]), "--sql") {
		t.Fatalf("marker line should be stripped before execution")
	}
	args := exec.execArgs[0]
	if args[1] != "text_to_image" || args[5] != "succeeded" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestGenerationRepositoryCreateWrapsPersistenceError(t *testing.T) {
	exec := &stubExec{execErr: errors.New("connection refused")}
	repo := NewGenerationRepository(exec)
	err := repo.Create(context.Background(), &domain.GenerationRecord{ID: "x"})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestGenerationRepositoryListRecent(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	exec := &stubExec{rows: [][]any{
		{"id-1", "style_transfer", "", "cartoon", "", "succeeded", "/generated/2.png", "", created},
		{"id-2", "text_to_image", "cat", "oil", "1:1", "failed", "", "vendor error: http 500", created.Add(-time.Minute)},
	}}
	repo := NewGenerationRepository(exec)

	records, err := repo.ListRecent(context.Background(), 500)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if exec.queryArg[0] != MaxHistoryLimit {
		t.Fatalf("limit = %v, want %d", exec.queryArg[0], MaxHistoryLimit)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Kind != domain.GenerationKindStyleTransfer || !records[0].CreatedAt.Equal(created) {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Outcome != domain.OutcomeFailed || records[1].Error == "" {
		t.Fatalf("unexpected second record: %+v", records[1])
	}
}

func TestGenerationRepositoryEnsureSchema(t *testing.T) {
	exec := &stubExec{}
	repo := NewGenerationRepository(infra.NewSQLRunner(exec, *infra.NopLogger()))
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema error: %v", err)
	}
	if !strings.Contains(exec.execSQL[0], "create table if not exists generations") {
		t.Fatalf("unexpected ddl: %s", exec.execSQL[0])
	}
}

func TestClampLimit(t *testing.T) {
	tests := map[int]int{-1: 20, 0: 20, 1: 1, 50: 50, 100: 100, 101: 100}
	for in, want := range tests {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
