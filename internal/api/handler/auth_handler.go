package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fieldtrack/assettrack/internal/auth"
	"github.com/fieldtrack/assettrack/internal/core/domain"
	"github.com/fieldtrack/assettrack/internal/core/ports"
)

// AuthHandler serves the HTTP login and registration endpoints. Clients log
// in here first, then present the returned token when opening their session.
type AuthHandler struct {
	users    ports.UserService
	tokens   *auth.Authenticator
	tokenTTL time.Duration
}

func NewAuthHandler(users ports.UserService, tokens *auth.Authenticator, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type authResponse struct {
	Token string        `json:"token,omitempty"`
	User  *userResponse `json:"user,omitempty"`
}

// Register creates a new login account. The route sits behind admin scope.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Register(c.Request().Context(), req.Username, req.Password, domain.ParseUserRole(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authResponse{User: newUserResponse(user)})
}

// Login authenticates an account and returns a bearer token whose scope is
// the account's role.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	token, err := h.tokens.Issue(user.Username, string(user.Role), h.tokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Token: token, User: newUserResponse(user)})
}

func newUserResponse(u *domain.AppUser) *userResponse {
	return &userResponse{UserID: u.ID, Username: u.Username, Role: string(u.Role)}
}
