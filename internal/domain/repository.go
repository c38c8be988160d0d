package domain

import "context"

// GenerationRepository persists the generation history.
type GenerationRepository interface {
	Create(ctx context.Context, record *GenerationRecord) error
	ListRecent(ctx context.Context, limit int) ([]GenerationRecord, error)
}
