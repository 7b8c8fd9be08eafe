package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

type personCreateRequest struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role"`
}

type personUpdateRequest struct {
	PersonID int64  `json:"personId" validate:"required,gt=0"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role"`
}

type personDeleteRequest struct {
	PersonID int64 `json:"personId" validate:"required,gt=0"`
}

type personView struct {
	PersonID int64  `json:"personId"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// PersonHandler translates Person.* wire messages into PersonService calls.
type PersonHandler struct {
	svc ports.PersonService
	log zerolog.Logger
}

func NewPersonHandler(svc ports.PersonService, log zerolog.Logger) *PersonHandler {
	return &PersonHandler{svc: svc, log: log}
}

// Register wires the Person message family into the dispatch table.
func (h *PersonHandler) Register(d *dispatch.Dispatcher) {
	d.Handle(transport.PersonList, h.List)
	d.Handle(transport.PersonCreate, h.Upsert)
	d.Handle(transport.PersonUpdate, h.Upsert)
	d.Handle(transport.PersonDelete, h.Delete)
}

// List answers Person.List with a snapshot of all non-deleted people.
func (h *PersonHandler) List(ctx context.Context, _ transport.Envelope) (string, error) {
	people, err := h.svc.ListActive(ctx)
	if err != nil {
		return "", err
	}

	views := make([]personView, 0, len(people))
	for _, p := range people {
		views = append(views, newPersonView(p))
	}
	return transport.Encode(transport.PersonSnapshot, map[string]any{"orders": views})
}

// Upsert answers Person.Create and Person.Update with a Person.Upsert.
func (h *PersonHandler) Upsert(ctx context.Context, env transport.Envelope) (string, error) {
	var result *domain.Person

	switch env.Type {
	case transport.PersonCreate:
		var req personCreateRequest
		if err := bind(env, &req); err != nil {
			h.log.Warn().Err(err).Msg("invalid Person.Create payload")
			return "", nil
		}
		person, err := h.svc.Create(ctx, req.Name, domain.ParsePersonRole(req.Role))
		if err != nil {
			h.log.Warn().Err(err).Msg("person create rejected")
			return "", nil
		}
		result = person

	default:
		var req personUpdateRequest
		if err := bind(env, &req); err != nil {
			h.log.Warn().Err(err).Msg("invalid Person.Update payload")
			return "", nil
		}
		person, err := h.svc.Update(ctx, req.PersonID, req.Name, domain.ParsePersonRole(req.Role))
		if err != nil {
			h.log.Warn().Err(err).Int64("person_id", req.PersonID).Msg("person update rejected")
			return "", nil
		}
		result = person
	}

	return transport.Encode(transport.PersonUpsert, newPersonView(*result))
}

// Delete answers Person.Delete with Person.Deleted.
func (h *PersonHandler) Delete(ctx context.Context, env transport.Envelope) (string, error) {
	var req personDeleteRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid Person.Delete payload")
		return "", nil
	}

	ok, err := h.svc.Delete(ctx, req.PersonID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.log.Warn().Int64("person_id", req.PersonID).Msg("person delete had no effect")
		return "", nil
	}
	return transport.Encode(transport.PersonDeleted, map[string]any{
		"personId": req.PersonID,
		"deleted":  true,
	})
}

func newPersonView(p domain.Person) personView {
	return personView{PersonID: p.ID, Name: p.Name, Role: string(p.Role)}
}
