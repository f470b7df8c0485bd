package session

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/businessbook/directory/internal/models"
	"github.com/businessbook/directory/internal/traffic"
	"github.com/businessbook/directory/pkg/response"
)

// Authenticator looks up registered accounts for display names.
type Authenticator interface {
	Authenticate(email, password string) (models.Account, bool)
}

// Cleaner drops per-session data on logout.
type Cleaner interface {
	Clear(sessionID uuid.UUID)
}

// LoginRequest is the body for POST /session/login.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

// View is what a client needs to render its navigation.
type View struct {
	Role     models.Role     `json:"role"`
	Identity Identity        `json:"identity"`
	Screens  []models.Screen `json:"screens"`
}

// CreatedResponse is returned by POST /sessions.
type CreatedResponse struct {
	Token     string    `json:"token"`
	SessionID uuid.UUID `json:"session_id"`
	View
}

// Handler handles session HTTP endpoints. Every route except Create runs
// behind the session middleware.
type Handler struct {
	registry *Registry
	tokens   *TokenService
	accounts Authenticator
	cleaners []Cleaner
	traffic  traffic.Counter
	logger   *zap.Logger
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Registry *Registry
	Tokens   *TokenService
	Accounts Authenticator
	Cleaners []Cleaner
	Traffic  traffic.Counter
	Logger   *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Handler{
		registry: cfg.Registry,
		tokens:   cfg.Tokens,
		accounts: cfg.Accounts,
		cleaners: cfg.Cleaners,
		traffic:  cfg.Traffic,
		logger:   cfg.Logger,
	}
}

func viewOf(st *State) View {
	return View{Role: st.Role(), Identity: st.Identity(), Screens: st.Screens()}
}

// Create handles POST /sessions.
func (h *Handler) Create(c *gin.Context) {
	id, st := h.registry.Create()
	visitor := id.String()
	st.Observe(func(role models.Role) {
		if role == models.RoleUnauthenticated || h.traffic == nil {
			return
		}
		if err := h.traffic.RecordVisit(context.Background(), visitor); err != nil {
			h.logger.Warn("record visit failed", zap.Error(err))
		}
	})

	token, err := h.tokens.Generate(id)
	if err != nil {
		h.registry.Drop(id)
		response.Internal(c, "failed to generate token")
		return
	}
	h.logger.Debug("session created", zap.String("session_id", visitor))
	response.Created(c, CreatedResponse{Token: token, SessionID: id, View: viewOf(st)})
}

// Get handles GET /session.
func (h *Handler) Get(c *gin.Context) {
	_, st := FromGin(c)
	response.OK(c, viewOf(st))
}

// EnterAsVisitor handles POST /session/visitor.
func (h *Handler) EnterAsVisitor(c *gin.Context) {
	_, st := FromGin(c)
	st.EnterAsVisitor()
	response.OK(c, viewOf(st))
}

// Login handles POST /session/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	id, st := FromGin(c)
	role, err := st.Login(req.Identifier, req.Secret)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		response.Internal(c, "login failed")
		return
	}
	if h.accounts != nil {
		if a, ok := h.accounts.Authenticate(strings.TrimSpace(req.Identifier), req.Secret); ok {
			st.SetDisplayName(a.Username)
		}
	}
	h.logger.Info("session logged in",
		zap.String("session_id", id.String()), zap.String("role", string(role)))
	response.OK(c, viewOf(st))
}

// Logout handles POST /session/logout.
func (h *Handler) Logout(c *gin.Context) {
	id, st := FromGin(c)
	st.Logout()
	for _, cl := range h.cleaners {
		cl.Clear(id)
	}
	response.OK(c, viewOf(st))
}
