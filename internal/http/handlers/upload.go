package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"artstudio/internal/i18n"
	"artstudio/internal/middleware"
	"artstudio/internal/storage"
)

const multipartOverhead = 1 << 20

type uploadedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

// readImage pulls the "image" part out of a multipart request. On failure it
// has already written the 400 response.
func (a *App) readImage(w http.ResponseWriter, r *http.Request) (*uploadedImage, bool) {
	locale := middleware.LocaleFromContext(r.Context())
	limit := a.Config.UploadMaxBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgImageTooLarge, limit>>20))
			return nil, false
		}
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgNoImage))
		return nil, false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgNoImage))
		return nil, false
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	mediaType, _, perr := mime.ParseMediaType(contentType)
	if perr != nil || !strings.HasPrefix(mediaType, "image/") {
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgImagesOnly))
		return nil, false
	}
	if header.Size > limit {
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgImageTooLarge, limit>>20))
		return nil, false
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil || len(data) == 0 {
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgInvalidImage))
		return nil, false
	}
	if int64(len(data)) > limit {
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgImageTooLarge, limit>>20))
		return nil, false
	}
	// the declared type and file name are client input; trust the bytes
	sniffed := http.DetectContentType(data)
	if !strings.HasPrefix(sniffed, "image/") {
		a.error(w, http.StatusBadRequest, i18n.T(locale, i18n.MsgImagesOnly))
		return nil, false
	}
	return &uploadedImage{Data: data, ContentType: sniffed, Ext: storage.ExtensionFor(sniffed)}, true
}

// Upload handles POST /api/upload.
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	img, ok := a.readImage(w, r)
	if !ok {
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	ref, err := a.Uploads.Save(r.Context(), storage.TimestampKey(a.Now(), img.Ext), img.Data, img.ContentType)
	if err != nil {
		a.Logger.Error().Err(err).Msg("upload: save failed")
		a.error(w, http.StatusInternalServerError, i18n.T(locale, i18n.MsgUploadFailed))
		return
	}
	a.json(w, http.StatusOK, successResponse{
		Success: true,
		Image:   ref,
		Message: i18n.T(locale, i18n.MsgUploadSucceeded),
	})
}
