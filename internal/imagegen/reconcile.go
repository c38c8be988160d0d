package imagegen

import (
	"encoding/json"
	"strings"

	"artstudio/internal/domain"
)

// Extractor looks for an image URL at one known location of a vendor payload.
type Extractor struct {
	Name    string
	Extract func(payload map[string]any) (string, bool)
}

// Extractors lists the known response shapes in priority order.
var Extractors = []Extractor{
	{Name: "output.url", Extract: func(p map[string]any) (string, bool) {
		return stringAt(objectAt(p, "output"), "url")
	}},
	{Name: "output.results[0].url", Extract: func(p map[string]any) (string, bool) {
		return stringAt(firstObject(objectAt(p, "output"), "results"), "url")
	}},
	{Name: "images[0].url", Extract: func(p map[string]any) (string, bool) {
		return stringAt(firstObject(p, "images"), "url")
	}},
	{Name: "result.url", Extract: func(p map[string]any) (string, bool) {
		return stringAt(objectAt(p, "result"), "url")
	}},
}

// Reconcile returns the first image URL found by Extractors. Anything else,
// including payloads that are not JSON objects, yields a
// *domain.ReconciliationError carrying the raw bytes.
func Reconcile(raw []byte) (string, error) {
	url, _, err := ReconcileWith(raw, Extractors)
	return url, err
}

// ReconcileWith runs a custom extractor list and also reports which one
// matched.
func ReconcileWith(raw []byte, extractors []Extractor) (string, string, error) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return "", "", &domain.ReconciliationError{Raw: raw}
	}
	for _, ex := range extractors {
		if url, ok := ex.Extract(payload); ok {
			return url, ex.Name, nil
		}
	}
	return "", "", &domain.ReconciliationError{Raw: raw}
}

func objectAt(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	obj, _ := m[key].(map[string]any)
	return obj
}

func firstObject(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	list, _ := m[key].([]any)
	if len(list) == 0 {
		return nil
	}
	obj, _ := list[0].(map[string]any)
	return obj
}

func stringAt(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, _ := m[key].(string)
	s = strings.TrimSpace(s)
	return s, s != ""
}
