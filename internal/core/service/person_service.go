package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

type personService struct {
	repo ports.PersonRepository
	log  zerolog.Logger
}

// NewPersonService returns a PersonService implementation.
func NewPersonService(repo ports.PersonRepository, log zerolog.Logger) ports.PersonService {
	return &personService{repo: repo, log: log}
}

func (s *personService) Create(ctx context.Context, name string, role domain.PersonRole) (*domain.Person, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrBlankName
	}
	id, err := s.repo.Create(ctx, name, role)
	if err != nil {
		return nil, err
	}
	return s.repo.ByID(ctx, id, true)
}

func (s *personService) Get(ctx context.Context, id int64, includeDeleted bool) (*domain.Person, error) {
	return s.repo.ByID(ctx, id, includeDeleted)
}

func (s *personService) ListActive(ctx context.Context) ([]domain.Person, error) {
	return s.repo.List(ctx, false)
}

func (s *personService) Update(ctx context.Context, id int64, name string, role domain.PersonRole) (*domain.Person, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrBlankName
	}
	ok, err := s.repo.Update(ctx, id, name, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrPersonNotFound
	}
	return s.repo.ByID(ctx, id, true)
}

func (s *personService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.SoftDelete(ctx, id)
}
