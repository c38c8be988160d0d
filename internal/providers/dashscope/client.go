package dashscope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"artstudio/internal/domain"
	"artstudio/internal/imagegen"
	"artstudio/internal/infra"
)

var tracer = otel.Tracer("dashscope-client")

const (
	DefaultBaseURL       = "https://dashscope.aliyuncs.com/api/v1"
	DefaultTimeout       = 60 * time.Second
	DefaultMaxImageBytes = 20 << 20

	textToImageServicePath   = "/services/aigc/text2image/image-generation"
	styleTransferServicePath = "/services/aigc/style-transfer/style-transfer"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = fmt.Errorf("dashscope: api key is required: %w", domain.ErrConfiguration)

// Options configures the DashScope client.
type Options struct {
	APIKey         string
	BaseURL        string
	Model          string
	Format         imagegen.BodyFormat
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	MaxImageBytes  int64
}

// Client performs the outbound DashScope calls. Response bodies are returned
// raw; turning them into an image URL is the reconciler's job.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	format        imagegen.BodyFormat
	maxImageBytes int64
	httpClient    *http.Client
	logger        *infra.Logger
}

// Image is a downloaded binary image.
type Image struct {
	Data        []byte
	ContentType string
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// NewClient constructs a client with defaults for every empty option.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = imagegen.DefaultModel
	}
	format := opts.Format
	if format == "" {
		format = imagegen.BodyFormatDimensions
	}
	maxBytes := opts.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:        strings.TrimSpace(opts.APIKey),
		baseURL:       baseURL,
		model:         model,
		format:        format,
		maxImageBytes: maxBytes,
		httpClient:    httpClient,
		logger:        logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.apiKey != ""
}

// TextToImageEndpoint returns the URL matching the configured body format.
func (c *Client) TextToImageEndpoint() string {
	if c.format == imagegen.BodyFormatSize {
		return c.baseURL + textToImageServicePath
	}
	return c.baseURL + "/models/" + url.PathEscape(c.model) + "/generation"
}

// TextToImage posts a normalized text-to-image body and returns the raw
// response payload.
func (c *Client) TextToImage(ctx context.Context, body imagegen.VendorRequestBody) ([]byte, error) {
	return c.post(ctx, "text_to_image", c.TextToImageEndpoint(), body)
}

// StyleTransfer posts a normalized style-transfer body.
func (c *Client) StyleTransfer(ctx context.Context, body imagegen.VendorRequestBody) ([]byte, error) {
	return c.post(ctx, "style_transfer", c.baseURL+styleTransferServicePath, body)
}

func (c *Client) post(ctx context.Context, op, endpoint string, body imagegen.VendorRequestBody) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	ctx, span := tracer.Start(ctx, "dashscope_"+op)
	defer span.End()
	span.SetAttributes(attribute.String("dashscope.endpoint", endpoint))

	payload, err := json.Marshal(body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dashscope: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dashscope: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug().Str("op", op).Str("endpoint", endpoint).RawJSON("request", redactImage(payload)).Msg("dashscope: request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.VendorError{Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.VendorError{Status: resp.StatusCode, Timeout: isTimeout(err), Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().
		Str("op", op).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Bytes("response", truncate(raw, 2048)).
		Msg("dashscope: response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		verr := &domain.VendorError{Status: resp.StatusCode}
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil {
			verr.Code = detail.Code
			verr.Message = detail.Message
		}
		span.RecordError(verr, trace.WithAttributes(attribute.String("dashscope.code", verr.Code)))
		return nil, verr
	}
	if !json.Valid(raw) {
		verr := &domain.VendorError{Status: resp.StatusCode, Message: "malformed response"}
		span.RecordError(verr)
		return nil, verr
	}
	return raw, nil
}

// Download fetches the image behind a vendor URL. Vendor URLs expire, so this
// runs right after reconciliation.
func (c *Client) Download(ctx context.Context, imageURL string) (*Image, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("dashscope: invalid image url %q", imageURL)
	}
	ctx, span := tracer.Start(ctx, "dashscope_download")
	defer span.End()
	span.SetAttributes(attribute.String("dashscope.image_host", parsed.Host))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dashscope: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dashscope: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dashscope: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImageBytes+1))
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dashscope: read image: %w", err)
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, fmt.Errorf("dashscope: image exceeds %d bytes", c.maxImageBytes)
	}
	if len(data) == 0 {
		return nil, errors.New("dashscope: empty image")
	}
	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return &Image{Data: data, ContentType: contentType}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// redactImage keeps base64 image payloads out of the logs.
func redactImage(payload []byte) []byte {
	var body imagegen.VendorRequestBody
	if err := json.Unmarshal(payload, &body); err != nil || body.Input.Image == "" {
		return payload
	}
	body.Input.Image = fmt.Sprintf("<%d bytes>", len(body.Input.Image))
	out, err := json.Marshal(body)
	if err != nil {
		return payload
	}
	return out
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
