package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

type orderService struct {
	repo ports.OrderRepository
	log  zerolog.Logger
}

// NewOrderService returns an OrderService implementation.
func NewOrderService(repo ports.OrderRepository, log zerolog.Logger) ports.OrderService {
	return &orderService{repo: repo, log: log}
}

// Create inserts a new order. A nil createdDate defaults to today; the stored
// creation date is immutable from then on.
func (s *orderService) Create(ctx context.Context, createdDate *time.Time, customerID, loggedByID *int64) (*domain.Order, error) {
	created := time.Now().UTC()
	if createdDate != nil {
		created = *createdDate
	}

	id, err := s.repo.Create(ctx, created, customerID, loggedByID)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return s.repo.ByID(ctx, id, true)
}

func (s *orderService) Get(ctx context.Context, id int64, includeDeleted bool) (*domain.Order, error) {
	return s.repo.ByID(ctx, id, includeDeleted)
}

func (s *orderService) ListActive(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx, false)
}

// UpdateDates rejects the write when both dates are set and end < start.
func (s *orderService) UpdateDates(ctx context.Context, id int64, start, end *time.Time) (bool, error) {
	if start != nil && end != nil && end.Before(*start) {
		s.log.Warn().
			Int64("order_id", id).
			Time("start", *start).
			Time("end", *end).
			Msg("end date before start date")
		return false, domain.ErrInvalidDates
	}
	return s.repo.UpdateDates(ctx, id, start, end)
}

// Start stamps the order's start date, keeping any existing end date.
func (s *orderService) Start(ctx context.Context, id int64, when *time.Time) (bool, error) {
	o, err := s.repo.ByID(ctx, id, false)
	if err != nil {
		return false, err
	}
	start := time.Now().UTC()
	if when != nil {
		start = *when
	}
	return s.repo.UpdateDates(ctx, o.ID, &start, o.EndDate)
}

// Close stamps the order's end date; an order never started is closed with
// start == end.
func (s *orderService) Close(ctx context.Context, id int64, when *time.Time) (bool, error) {
	o, err := s.repo.ByID(ctx, id, false)
	if err != nil {
		return false, err
	}
	end := time.Now().UTC()
	if when != nil {
		end = *when
	}
	start := end
	if o.StartDate != nil {
		start = *o.StartDate
	}
	return s.repo.UpdateDates(ctx, o.ID, &start, &end)
}

func (s *orderService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.SoftDelete(ctx, id)
}
