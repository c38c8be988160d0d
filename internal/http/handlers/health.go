package handlers

import (
	"net/http"

	"artstudio/internal/i18n"
	"artstudio/internal/middleware"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports the state of the last generation. Generation is synchronous
// so there is never anything pending.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, map[string]string{
		"status":  "done",
		"message": i18n.T(locale, i18n.MsgStatusDone),
	})
}
