// Package httpapi exposes the REST surface: message history, presence,
// search, stats and authentication.
package httpapi

import (
	"chat-relay/auth"
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/observability"
	"chat-relay/projection"
	"chat-relay/repositories"
	"chat-relay/search"
	"chat-relay/services"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"
)

type Handler struct {
	log          *slog.Logger
	messages     repositories.IMessageRepository
	registry     contract.IRegistry
	auth         services.IAuthService
	index        *search.Index
	timeline     *projection.Timeline
	monitor      *observability.Manager
	tokens       *auth.TokenIssuer
	authRequired bool
	searchLimit  int
}

func NewHandler(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	registry contract.IRegistry,
	authService services.IAuthService,
	index *search.Index,
	timeline *projection.Timeline,
	monitor *observability.Manager,
	tokens *auth.TokenIssuer,
	authRequired bool,
	searchLimit int,
) *Handler {
	return &Handler{
		log:          log,
		messages:     messages,
		registry:     registry,
		auth:         authService,
		index:        index,
		timeline:     timeline,
		monitor:      monitor,
		tokens:       tokens,
		authRequired: authRequired,
		searchLimit:  searchLimit,
	}
}

// Register mounts every route on the given mux. The websocket endpoint is
// mounted by the caller so this package stays transport-agnostic.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /api/messages", h.protected(h.listMessages))
	mux.HandleFunc("GET /api/messages/search", h.protected(h.searchMessages))
	mux.HandleFunc("GET /api/presence", h.protected(h.presence))
	mux.HandleFunc("GET /api/timeline", h.protected(h.recentTimeline))
	mux.HandleFunc("GET /api/stats", h.stats)
	mux.HandleFunc("POST /api/auth/register", h.register)
	mux.HandleFunc("POST /api/auth/login", h.login)
}

// protected gates a handler behind a bearer token when authentication is
// enabled. With auth disabled it is a pass-through.
func (h *Handler) protected(next http.HandlerFunc) http.HandlerFunc {
	if !h.authRequired {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := h.tokens.Validate(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type messageResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// listMessages returns the full persisted transcript in append order,
// oldest first.
func (h *Handler) listMessages(w http.ResponseWriter, _ *http.Request) {
	stored, err := h.messages.ListAscending()
	if err != nil {
		h.log.Error("history read failed", slog.String("error", err.Error()))
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	out := lo.Map(stored, func(m repositories.DiskMessage, _ int) messageResponse {
		return messageResponse{
			ID:        m.ID.String(),
			Kind:      string(domain.KindChat),
			Sender:    m.Sender,
			Content:   m.Content,
			Timestamp: m.At.Format(time.RFC3339Nano),
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) searchMessages(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if terms == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	results, err := h.index.Search(r.Context(), terms, h.searchLimit)
	if err != nil {
		h.log.Error("search failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if results == nil {
		results = []search.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

type presenceResponse struct {
	DisplayName string `json:"display_name"`
	ConnectedAt string `json:"connected_at"`
}

// presence lists identified sessions in connection order.
func (h *Handler) presence(w http.ResponseWriter, _ *http.Request) {
	sessions := h.registry.Snapshot()
	out := lo.Map(sessions, func(s domain.Session, _ int) presenceResponse {
		return presenceResponse{
			DisplayName: s.DisplayName,
			ConnectedAt: s.ConnectedAt.Format(time.RFC3339Nano),
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) recentTimeline(w http.ResponseWriter, _ *http.Request) {
	events := h.timeline.Recent()
	out := lo.Map(events, func(e domain.ChatEvent, _ int) messageResponse {
		return messageResponse{
			ID:        e.ID.String(),
			Kind:      string(e.Kind),
			Sender:    e.Sender,
			Content:   e.Content,
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
		}
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.GetLatest())
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Register(req.Username, req.Password)
	switch {
	case stderrors.Is(err, errors.ErrUserAlreadyExists):
		writeError(w, http.StatusConflict, "username already taken")
		return
	case stderrors.Is(err, errors.ErrInvalidPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("registration failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: string(token)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: string(token)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
