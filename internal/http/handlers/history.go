package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"artstudio/internal/adapter/repo"
	"artstudio/internal/domain"
	"artstudio/internal/i18n"
	"artstudio/internal/middleware"
)

type historyItem struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Prompt    string    `json:"prompt,omitempty"`
	Style     string    `json:"style,omitempty"`
	Ratio     string    `json:"ratio,omitempty"`
	Outcome   string    `json:"outcome"`
	Image     string    `json:"image,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// History handles GET /api/history?limit=N.
func (a *App) History(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := a.Service.ListHistory(r.Context(), repo.ClampLimit(limit))
	if err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			a.error(w, http.StatusServiceUnavailable, i18n.T(locale, i18n.MsgHistoryDisabled))
			return
		}
		a.Logger.Error().Err(err).Msg("history: list failed")
		a.error(w, http.StatusInternalServerError, i18n.T(locale, i18n.MsgHistoryFailed))
		return
	}
	items := make([]historyItem, 0, len(records))
	for _, rec := range records {
		items = append(items, historyItem{
			ID:        rec.ID,
			Kind:      string(rec.Kind),
			Prompt:    rec.Prompt,
			Style:     rec.Style,
			Ratio:     rec.Ratio,
			Outcome:   string(rec.Outcome),
			Image:     rec.Image,
			Error:     rec.Error,
			CreatedAt: rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "items": items})
}
