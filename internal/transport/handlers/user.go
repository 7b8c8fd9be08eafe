package handlers

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
	"github.com/fieldtrack/assettrack/internal/transport"
	"github.com/fieldtrack/assettrack/internal/transport/dispatch"
)

type userCreateRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

type userUpdateRequest struct {
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	Username string `json:"username"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role"`
}

type userDeleteRequest struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

// userView never carries credential material.
type userView struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserHandler translates User.* wire messages into account calls. These
// operations are also what the HTTP admin endpoints reach through; the
// handler itself does no authorization, the session gateway already did.
type UserHandler struct {
	svc ports.UserService
	log zerolog.Logger
}

func NewUserHandler(svc ports.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{svc: svc, log: log}
}

// Register wires the User message family into the dispatch table.
func (h *UserHandler) Register(d *dispatch.Dispatcher) {
	d.Handle(transport.UserList, h.List)
	d.Handle(transport.UserCreate, h.Create)
	d.Handle(transport.UserUpdate, h.Update)
	d.Handle(transport.UserDelete, h.Delete)
}

// List answers User.List with a snapshot of all accounts.
func (h *UserHandler) List(ctx context.Context, _ transport.Envelope) (string, error) {
	users, err := h.svc.List(ctx)
	if err != nil {
		return "", err
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	return transport.Encode(transport.UserSnapshot, map[string]any{"orders": views})
}

// Create answers User.Create with a User.Upsert. A taken username produces
// no reply.
func (h *UserHandler) Create(ctx context.Context, env transport.Envelope) (string, error) {
	var req userCreateRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid User.Create payload")
		return "", nil
	}

	user, err := h.svc.Register(ctx, req.Username, req.Password, domain.ParseUserRole(req.Role))
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			h.log.Warn().Str("username", req.Username).Msg("username already taken")
			return "", nil
		}
		return "", err
	}
	return transport.Encode(transport.UserUpsert, newUserView(*user))
}

// Update answers User.Update with a User.Upsert. Username, password and role
// are each optional; absent fields stay unchanged.
func (h *UserHandler) Update(ctx context.Context, env transport.Envelope) (string, error) {
	var req userUpdateRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid User.Update payload")
		return "", nil
	}

	if req.Username != "" {
		if _, err := h.svc.UpdateUsername(ctx, req.UserID, req.Username); err != nil {
			h.log.Warn().Err(err).Int64("user_id", req.UserID).Msg("username update rejected")
			return "", nil
		}
	}
	if req.Password != "" {
		if _, err := h.svc.UpdatePassword(ctx, req.UserID, req.Password); err != nil {
			h.log.Warn().Err(err).Int64("user_id", req.UserID).Msg("password update rejected")
			return "", nil
		}
	}
	if req.Role != "" {
		if _, err := h.svc.UpdateRole(ctx, req.UserID, domain.ParseUserRole(req.Role)); err != nil {
			h.log.Warn().Err(err).Int64("user_id", req.UserID).Msg("role update rejected")
			return "", nil
		}
	}

	user, err := h.svc.Get(ctx, req.UserID)
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", req.UserID).Msg("user not found after update")
		return "", nil
	}
	return transport.Encode(transport.UserUpsert, newUserView(*user))
}

// Delete answers User.Delete with User.Deleted. Unlike the other entities the
// account row is actually removed.
func (h *UserHandler) Delete(ctx context.Context, env transport.Envelope) (string, error) {
	var req userDeleteRequest
	if err := bind(env, &req); err != nil {
		h.log.Warn().Err(err).Msg("invalid User.Delete payload")
		return "", nil
	}

	ok, err := h.svc.Delete(ctx, req.UserID)
	if err != nil {
		return "", err
	}
	if !ok {
		h.log.Warn().Int64("user_id", req.UserID).Msg("user delete had no effect")
		return "", nil
	}
	return transport.Encode(transport.UserDeleted, map[string]any{"userId": req.UserID})
}

func newUserView(u domain.AppUser) userView {
	return userView{UserID: u.ID, Username: u.Username, Role: string(u.Role)}
}
