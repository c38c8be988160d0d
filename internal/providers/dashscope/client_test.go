package dashscope

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"artstudio/internal/domain"
	"artstudio/internal/imagegen"
)

func textBody() imagegen.VendorRequestBody {
	body, _ := imagegen.NewNormalizer(imagegen.BodyFormatDimensions, "", "").Normalize(domain.GenerationRequest{
		Prompt: "a red fox",
		Style:  "watercolor",
		Ratio:  "4:3",
	})
	return body
}

func TestTextToImageSendsBearerAndBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		if r.URL.Path != "/models/wanx-v1/generation" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("content type = %s", got)
		}
		var payload imagegen.VendorRequestBody
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if payload.Parameters.Width != 1024 || payload.Parameters.Height != 768 || payload.Parameters.Style != "watercolor" {
			t.Fatalf("unexpected parameters: %+v", payload.Parameters)
		}
		_, _ = w.Write([]byte(`{"output":{"url":"https://cdn.example.com/out.png"}}`))
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "test-key", BaseURL: ts.URL + "/"})
	raw, err := client.TextToImage(context.Background(), textBody())
	if err != nil {
		t.Fatalf("TextToImage error: %v", err)
	}
	url, err := imagegen.Reconcile(raw)
	if err != nil || url != "https://cdn.example.com/out.png" {
		t.Fatalf("reconciled (%q, %v)", url, err)
	}
}

func TestTextToImageSizeFormatEndpoint(t *testing.T) {
	client := NewClient(Options{APIKey: "k", BaseURL: "https://example.com/api/v1", Format: imagegen.BodyFormatSize})
	if got := client.TextToImageEndpoint(); got != "https://example.com/api/v1/services/aigc/text2image/image-generation" {
		t.Fatalf("endpoint = %s", got)
	}
	client = NewClient(Options{APIKey: "k", BaseURL: "https://example.com/api/v1", Model: "wanx2.1-t2i-turbo"})
	if got := client.TextToImageEndpoint(); got != "https://example.com/api/v1/models/wanx2.1-t2i-turbo/generation" {
		t.Fatalf("endpoint = %s", got)
	}
}

func TestTextToImageMissingKeyMakesNoCall(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer ts.Close()

	client := NewClient(Options{BaseURL: ts.URL})
	if client.HasCredentials() {
		t.Fatalf("expected no credentials")
	}
	_, err := client.TextToImage(context.Background(), textBody())
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected zero outbound calls")
	}
}

func TestTextToImageVendorErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{name: "json error", status: http.StatusBadRequest, body: `{"code":"InvalidParameter","message":"size not supported"}`, code: "InvalidParameter", message: "size not supported"},
		{name: "plain error", status: http.StatusBadGateway, body: `upstream down`},
		{name: "malformed 200", status: http.StatusOK, body: `{"output":`, message: "malformed response"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer ts.Close()

			client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
			_, err := client.TextToImage(context.Background(), textBody())
			var verr *domain.VendorError
			if !errors.As(err, &verr) {
				t.Fatalf("expected VendorError, got %v", err)
			}
			if verr.Status != tc.status || verr.Code != tc.code || verr.Message != tc.message {
				t.Fatalf("unexpected vendor error: %+v", verr)
			}
			if !errors.Is(err, domain.ErrVendorCall) {
				t.Fatalf("expected ErrVendorCall")
			}
		})
	}
}

func TestTextToImageTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL, RequestTimeout: 50 * time.Millisecond})
	_, err := client.TextToImage(context.Background(), textBody())
	var verr *domain.VendorError
	if !errors.As(err, &verr) || !verr.Timeout {
		t.Fatalf("expected timeout vendor error, got %v", err)
	}
}

func TestStyleTransferEndpoint(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/services/aigc/style-transfer/style-transfer" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		var payload imagegen.VendorRequestBody
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Model != "wanx-style-transfer-v1" || payload.Parameters.StyleName != "cartoon" {
			t.Fatalf("unexpected payload: %+v", payload)
		}
		_, _ = w.Write([]byte(`{"output":{"results":[{"url":"https://cdn.example.com/st.png"}]}}`))
	}))
	defer ts.Close()

	body, err := imagegen.NewNormalizer("", "", "").NormalizeStyleTransfer(domain.StyleTransferRequest{
		Image:    []byte{0xff, 0xd8, 0xff},
		MIMEType: "image/jpeg",
		Style:    "cartoon",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	client := NewClient(Options{APIKey: "k", BaseURL: ts.URL})
	raw, err := client.StyleTransfer(context.Background(), body)
	if err != nil {
		t.Fatalf("StyleTransfer error: %v", err)
	}
	if url, _ := imagegen.Reconcile(raw); url != "https://cdn.example.com/st.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestDownload(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(png)
		case "/sniff":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write(png)
		case "/big":
			_, _ = io.WriteString(w, "0123456789abcdef")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	client := NewClient(Options{APIKey: "k", MaxImageBytes: 12})
	img, err := client.Download(context.Background(), ts.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if img.ContentType != "image/png" || string(img.Data) != string(png) {
		t.Fatalf("unexpected image: %+v", img)
	}

	img, err = client.Download(context.Background(), ts.URL+"/sniff")
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}
	if img.ContentType != "image/png" {
		t.Fatalf("sniffed content type = %q", img.ContentType)
	}

	if _, err := client.Download(context.Background(), ts.URL+"/missing"); err == nil {
		t.Fatalf("expected error for 404")
	}
	if _, err := client.Download(context.Background(), ts.URL+"/big"); err == nil {
		t.Fatalf("expected size limit error")
	}
	if _, err := client.Download(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Fatalf("expected invalid url error")
	}
}

func TestRedactImage(t *testing.T) {
	out := redactImage([]byte(`{"model":"m","input":{"image":"data:image/png;base64,AAAA"},"parameters":{}}`))
	var body imagegen.VendorRequestBody
	if err := json.Unmarshal(out, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Input.Image != "<26 bytes>" {
		t.Fatalf("image = %q", body.Input.Image)
	}
}
