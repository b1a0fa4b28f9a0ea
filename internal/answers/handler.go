package answers

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
	submitLimit  = 30
	submitWindow = time.Minute
)

// Handler exposes the answer JSON API.
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

// MountRoutes registers the answer endpoints. Submission is rate limited
// per principal (per IP for anonymous participants).
func (h *Handler) MountRoutes(r chi.Router) {
	limiter := httprate.Limit(submitLimit, submitWindow,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "answer submission rate exceeded")
		}),
	)
	r.Route("/answers", func(r chi.Router) {
		r.Get("/", h.list)
		r.With(limiter).Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Delete("/{id}", h.delete)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if p := perm.PrincipalFromContext(r.Context()); !p.Anonymous() {
		return "user:" + p.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	contentID := r.URL.Query().Get("content_id")
	if contentID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "content_id is required")
		return
	}
	list, err := h.service.ListByContent(r.Context(), contentID)
	if err != nil {
		h.logger.Error("list answers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"answers": list})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateAnswerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	answer, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create answer", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, answer)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	answer, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, answer)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete answer", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
