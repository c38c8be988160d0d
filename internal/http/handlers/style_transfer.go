package handlers

import (
	"net/http"

	"artstudio/internal/domain"
	"artstudio/internal/i18n"
)

// StyleTransfer handles POST /api/style-transfer.
func (a *App) StyleTransfer(w http.ResponseWriter, r *http.Request) {
	img, ok := a.readImage(w, r)
	if !ok {
		return
	}
	res, err := a.Service.StyleTransfer(r.Context(), domain.StyleTransferRequest{
		Image:    img.Data,
		MIMEType: img.ContentType,
		Style:    r.FormValue("style"),
	})
	if err != nil {
		a.fail(w, r, err, i18n.MsgStyleTransferFail)
		return
	}
	a.success(w, r, res, i18n.MsgStyleTransferred)
}
