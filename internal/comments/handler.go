package comments

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/platform/httpx"
)

const (
	postLimit  = 20
	postWindow = time.Minute
)

// Handler exposes the comment JSON API.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers the comment endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(postLimit, postWindow,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if p := perm.PrincipalFromContext(r.Context()); !p.Anonymous() {
				return "user:" + p.ID, nil
			}
			return httprate.KeyByIP(r)
		}),
	)
	r.Route("/comments", func(r chi.Router) {
		r.Get("/", h.list)
		r.With(limiter).Post("/", h.create)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "room_id is required")
		return
	}
	list, err := h.service.ListByRoom(r.Context(), roomID)
	if err != nil {
		h.logger.Error("list comments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"comments": list})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	comment, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create comment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, comment)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete comment", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
