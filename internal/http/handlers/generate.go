package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"artstudio/internal/domain"
	"artstudio/internal/i18n"
	"artstudio/internal/middleware"
)

const maxJSONBody = 1 << 20

// TextToImage handles POST /api/text-to-image and its aliases.
func (a *App) TextToImage(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	var req domain.GenerationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
		key := i18n.MsgInvalidRequest
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "prompt" {
			key = i18n.MsgPromptRequired
		}
		a.error(w, http.StatusBadRequest, i18n.T(locale, key))
		return
	}
	res, err := a.Service.Generate(r.Context(), req)
	if err != nil {
		a.fail(w, r, err, i18n.MsgGenerationFailed)
		return
	}
	a.success(w, r, res, i18n.MsgImageGenerated)
}
