package storage

import (
	"context"
	"mime"
	"strconv"
	"strings"
	"time"
)

// ImageStore persists image bytes and returns a durable reference a browser
// can load: a site-relative path or an absolute URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ExtensionFor picks a file extension for a MIME type, defaulting to .png.
func ExtensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	default:
		return ".png"
	}
}

// TimestampKey names an object after the unix-millisecond time it was
// created. Collisions need two writes within the same millisecond.
func TimestampKey(now time.Time, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + strings.ToLower(ext)
}
