package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"artstudio/internal/domain"
	"artstudio/internal/generation"
	"artstudio/internal/i18n"
	"artstudio/internal/infra"
	"artstudio/internal/middleware"
	"artstudio/internal/storage"
)

// App carries the dependencies shared by every handler.
type App struct {
	Config  *infra.Config
	Logger  *infra.Logger
	Service *generation.Service
	Uploads storage.ImageStore
	Now     func() time.Time
}

func NewApp(cfg *infra.Config, logger *infra.Logger, svc *generation.Service, uploads storage.ImageStore) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{Config: cfg, Logger: logger, Service: svc, Uploads: uploads, Now: time.Now}
}

type successResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image,omitempty"`
	Message string `json:"message"`
	Outcome string `json:"outcome,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Raw     any    `json:"raw,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, errorResponse{Error: message})
}

// fail maps a generation error onto a status code and a localized message.
// failedKey formats vendor failures for the operation at hand.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error, failedKey string) {
	locale := middleware.LocaleFromContext(r.Context())
	var (
		verr *domain.ValidationError
		rerr *domain.ReconciliationError
	)
	switch {
	case errors.As(err, &verr):
		key := i18n.MsgInvalidRequest
		switch verr.Field {
		case "prompt":
			key = i18n.MsgPromptRequired
		case "image":
			key = i18n.MsgInvalidImage
		}
		a.error(w, http.StatusBadRequest, i18n.T(locale, key))
	case errors.Is(err, domain.ErrConfiguration):
		a.error(w, http.StatusServiceUnavailable, i18n.T(locale, i18n.MsgAPIKeyMissing))
	case errors.As(err, &rerr):
		a.json(w, http.StatusInternalServerError, errorResponse{
			Error: i18n.T(locale, i18n.MsgInvalidResponse),
			Raw:   rawPayload(rerr.Raw),
		})
	default:
		a.error(w, http.StatusInternalServerError, i18n.T(locale, failedKey, err.Error()))
	}
}

// rawPayload keeps valid JSON structured in the response and falls back to
// a string otherwise.
func rawPayload(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return json.RawMessage(raw)
	}
	return string(raw)
}

func (a *App) success(w http.ResponseWriter, r *http.Request, res domain.Result, key string) {
	locale := middleware.LocaleFromContext(r.Context())
	if res.Outcome == domain.OutcomeSucceededWithFallback {
		key = i18n.MsgImageFallback
	}
	a.json(w, http.StatusOK, successResponse{
		Success: true,
		Image:   res.Image,
		Message: i18n.T(locale, key),
		Outcome: string(res.Outcome),
	})
}
