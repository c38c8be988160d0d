package imagegen

import (
	"errors"
	"testing"

	"artstudio/internal/domain"
)

func TestReconcileKnownShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
		matched string
	}{
		{name: "output url", payload: `{"output":{"url":"http://x/a.png"}}`, want: "http://x/a.png", matched: "output.url"},
		{name: "output results", payload: `{"output":{"results":[{"url":"http://x/b.png"},{"url":"http://x/c.png"}]}}`, want: "http://x/b.png", matched: "output.results[0].url"},
		{name: "images", payload: `{"images":[{"url":"http://x/1.png"}]}`, want: "http://x/1.png", matched: "images[0].url"},
		{name: "result url", payload: `{"result":{"url":"http://x/d.png"}}`, want: "http://x/d.png", matched: "result.url"},
		{name: "priority output url first", payload: `{"result":{"url":"http://x/r.png"},"images":[{"url":"http://x/i.png"}],"output":{"url":"http://x/o.png"}}`, want: "http://x/o.png", matched: "output.url"},
		{name: "empty output url skipped", payload: `{"output":{"url":"","results":[{"url":"http://x/e.png"}]}}`, want: "http://x/e.png", matched: "output.results[0].url"},
		{name: "result without url skipped", payload: `{"output":{"results":[{}]},"result":{"url":"http://x/f.png"}}`, want: "http://x/f.png", matched: "result.url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, matched, err := ReconcileWith([]byte(tc.payload), Extractors)
			if err != nil {
				t.Fatalf("Reconcile error: %v", err)
			}
			if got != tc.want || matched != tc.matched {
				t.Fatalf("got (%q, %q), want (%q, %q)", got, matched, tc.want, tc.matched)
			}
		})
	}
}

func TestReconcileFailures(t *testing.T) {
	payloads := []string{
		`{}`,
		`{"output":{"task_id":"abc","task_status":"PENDING"}}`,
		`{"output":{"results":[]}}`,
		`{"images":"not-a-list"}`,
		`{"output":{"url":42}}`,
		`{"result":null}`,
		`[]`,
		`null`,
		`"string"`,
		`not json`,
		``,
	}
	for _, payload := range payloads {
		_, err := Reconcile([]byte(payload))
		var rec *domain.ReconciliationError
		if !errors.As(err, &rec) {
			t.Fatalf("payload %q: expected ReconciliationError, got %v", payload, err)
		}
		if string(rec.Raw) != payload {
			t.Fatalf("payload %q: raw = %q", payload, rec.Raw)
		}
	}
}
