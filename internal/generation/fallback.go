package generation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"artstudio/internal/storage"
)

// DefaultPlaceholderURL is served when no style sample is available.
const DefaultPlaceholderURL = "/img/hero-illustration.png"

var sampleByStyle = map[string]string{
	"watercolor": "水彩艺术.png",
	"cartoon":    "动漫插画.png",
	"oil":        "经典油画.png",
}

const defaultSample = "像素艺术.png"

// Placeholder produces a bundled sample image when the vendor is unreachable.
type Placeholder struct {
	dir   string
	url   string
	store storage.ImageStore
	now   func() time.Time
}

// NewPlaceholder serves samples from dir, copying them into store. url is
// the last-resort reference when the sample itself is missing.
func NewPlaceholder(dir, url string, store storage.ImageStore) *Placeholder {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultPlaceholderURL
	}
	return &Placeholder{dir: dir, url: url, store: store, now: time.Now}
}

// SampleFor names the bundled sample for a user-facing style token.
func SampleFor(style string) string {
	if name, ok := sampleByStyle[style]; ok {
		return name
	}
	return defaultSample
}

// Resolve returns an image reference for style.
func (p *Placeholder) Resolve(ctx context.Context, style string) (string, error) {
	if p == nil {
		return "", errors.New("placeholder: not configured")
	}
	data, err := os.ReadFile(filepath.Join(p.dir, SampleFor(style)))
	if errors.Is(err, fs.ErrNotExist) {
		return p.url, nil
	}
	if err != nil {
		return "", fmt.Errorf("placeholder: read sample: %w", err)
	}
	if p.store == nil {
		return "", errors.New("placeholder: no store configured")
	}
	ref, err := p.store.Save(ctx, storage.TimestampKey(p.now(), ".jpg"), data, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("placeholder: copy sample: %w", err)
	}
	return ref, nil
}
