package repo

import (
	"context"
	"fmt"

	"artstudio/internal/domain"
	"artstudio/internal/infra"
	"artstudio/internal/sqlinline"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// GenerationRepositoryPG implements domain.GenerationRepository.
type GenerationRepositoryPG struct {
	db infra.SQLExecutor
}

// NewGenerationRepository creates a history repository on top of an executor,
// normally an infra.SQLRunner wrapping a pgxpool.Pool.
func NewGenerationRepository(db infra.SQLExecutor) *GenerationRepositoryPG {
	return &GenerationRepositoryPG{db: db}
}

// EnsureSchema creates the generations table when it does not exist yet.
func (r *GenerationRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, sqlinline.QEnsureGenerationsTable); err != nil {
		return fmt.Errorf("ensure generations table: %w", err)
	}
	return nil
}

// Create inserts a history record.
func (r *GenerationRepositoryPG) Create(ctx context.Context, rec *domain.GenerationRecord) error {
	_, err := r.db.Exec(ctx, sqlinline.QInsertGeneration,
		rec.ID,
		string(rec.Kind),
		rec.Prompt,
		rec.Style,
		rec.Ratio,
		string(rec.Outcome),
		rec.Image,
		rec.Error,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: insert generation: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (r *GenerationRepositoryPG) ListRecent(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListRecentGenerations, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	defer rows.Close()

	records := make([]domain.GenerationRecord, 0)
	for rows.Next() {
		var (
			rec     domain.GenerationRecord
			kind    string
			outcome string
		)
		if err := rows.Scan(
			&rec.ID,
			&kind,
			&rec.Prompt,
			&rec.Style,
			&rec.Ratio,
			&outcome,
			&rec.Image,
			&rec.Error,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		rec.Kind = domain.GenerationKind(kind)
		rec.Outcome = domain.Outcome(outcome)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return records, nil
}

// ClampLimit maps a requested page size into [1, MaxHistoryLimit].
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

var _ domain.GenerationRepository = (*GenerationRepositoryPG)(nil)
