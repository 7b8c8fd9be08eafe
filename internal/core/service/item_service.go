package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

type itemService struct {
	repo ports.ItemRepository
	log  zerolog.Logger
}

// NewItemService returns an ItemService implementation.
func NewItemService(repo ports.ItemRepository, log zerolog.Logger) ports.ItemService {
	return &itemService{repo: repo, log: log}
}

func (s *itemService) Create(ctx context.Context, tagID string, position domain.Position, overdue bool) (*domain.Item, error) {
	if tagID == "" {
		return nil, fmt.Errorf("create item: blank tag id")
	}
	id, err := s.repo.Create(ctx, tagID, position, overdue)
	if err != nil {
		return nil, fmt.Errorf("create item %q: %w", tagID, err)
	}
	return s.repo.ByID(ctx, id, false)
}

func (s *itemService) Get(ctx context.Context, id int64, includeDeleted bool) (*domain.Item, error) {
	return s.repo.ByID(ctx, id, includeDeleted)
}

func (s *itemService) GetByTag(ctx context.Context, tagID string, includeDeleted bool) (*domain.Item, error) {
	return s.repo.ByTag(ctx, tagID, includeDeleted)
}

func (s *itemService) ListActive(ctx context.Context) ([]domain.Item, error) {
	return s.repo.List(ctx, false)
}

func (s *itemService) ListForOrder(ctx context.Context, orderID int64, includeDeleted bool) ([]domain.Item, error) {
	return s.repo.ListByOrder(ctx, orderID, includeDeleted)
}

func (s *itemService) Move(ctx context.Context, id int64, position domain.Position) (bool, error) {
	return s.repo.UpdatePosition(ctx, id, position)
}

func (s *itemService) MarkOverdue(ctx context.Context, id int64, overdue bool) (bool, error) {
	return s.repo.UpdateOverdue(ctx, id, overdue)
}

func (s *itemService) ChangeTag(ctx context.Context, id int64, tagID string) (bool, error) {
	if tagID == "" {
		return false, nil
	}
	return s.repo.UpdateTag(ctx, id, tagID)
}

func (s *itemService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.SoftDelete(ctx, id)
}
