package imagegen

import (
	"encoding/base64"
	"strings"

	"artstudio/internal/domain"
)

// BodyFormat selects which DashScope text-to-image contract the body follows.
type BodyFormat string

const (
	// BodyFormatDimensions targets /models/{model}/generation with explicit
	// width and height parameters.
	BodyFormatDimensions BodyFormat = "dimensions"
	// BodyFormatSize targets /services/aigc/text2image/image-generation with
	// a "W*H" size token and the model named in the body.
	BodyFormatSize BodyFormat = "size"
)

// ParseBodyFormat accepts free-form configuration input.
func ParseBodyFormat(v string) BodyFormat {
	if strings.EqualFold(strings.TrimSpace(v), string(BodyFormatSize)) {
		return BodyFormatSize
	}
	return BodyFormatDimensions
}

const (
	DefaultModel              = "wanx-v1"
	DefaultStyleTransferModel = "wanx-style-transfer-v1"
	DefaultTransferStyle      = "watercolor"
)

// VendorRequestBody is the JSON document posted to DashScope. Field order is
// fixed by the struct so identical requests encode to identical bytes.
type VendorRequestBody struct {
	Model      string           `json:"model,omitempty"`
	Input      VendorInput      `json:"input"`
	Parameters VendorParameters `json:"parameters"`
}

type VendorInput struct {
	Prompt string `json:"prompt,omitempty"`
	Image  string `json:"image,omitempty"`
}

type VendorParameters struct {
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Size      string `json:"size,omitempty"`
	N         int    `json:"n,omitempty"`
	Style     string `json:"style,omitempty"`
	StyleName string `json:"style_name,omitempty"`
}

// Normalizer maps user requests onto vendor request bodies.
type Normalizer struct {
	Format             BodyFormat
	Model              string
	StyleTransferModel string
}

// NewNormalizer applies defaults for empty fields.
func NewNormalizer(format BodyFormat, model, styleTransferModel string) Normalizer {
	if format == "" {
		format = BodyFormatDimensions
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	styleTransferModel = strings.TrimSpace(styleTransferModel)
	if styleTransferModel == "" {
		styleTransferModel = DefaultStyleTransferModel
	}
	return Normalizer{Format: format, Model: model, StyleTransferModel: styleTransferModel}
}

// Validate rejects requests that must never reach the vendor.
func Validate(req domain.GenerationRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return &domain.ValidationError{Field: "prompt", Reason: "must not be empty"}
	}
	return nil
}

// Normalize validates req and builds the text-to-image body.
func (n Normalizer) Normalize(req domain.GenerationRequest) (VendorRequestBody, error) {
	if err := Validate(req); err != nil {
		return VendorRequestBody{}, err
	}
	dims := ResolveRatio(req.Ratio)
	body := VendorRequestBody{
		Input: VendorInput{Prompt: strings.TrimSpace(req.Prompt)},
		Parameters: VendorParameters{
			N:     1,
			Style: MapStyle(req.Style),
		},
	}
	switch n.Format {
	case BodyFormatSize:
		body.Model = n.Model
		body.Parameters.Size = dims.Size()
	default:
		body.Parameters.Width = dims.Width
		body.Parameters.Height = dims.Height
	}
	return body, nil
}

// NormalizeStyleTransfer builds the style-transfer body, inlining the image
// as a base64 data URL.
func (n Normalizer) NormalizeStyleTransfer(req domain.StyleTransferRequest) (VendorRequestBody, error) {
	if len(req.Image) == 0 {
		return VendorRequestBody{}, &domain.ValidationError{Field: "image", Reason: "must not be empty"}
	}
	mimeType := strings.TrimSpace(req.MIMEType)
	if !strings.HasPrefix(mimeType, "image/") {
		return VendorRequestBody{}, &domain.ValidationError{Field: "image", Reason: "only image files are supported"}
	}
	style := strings.TrimSpace(req.Style)
	if style == "" {
		style = DefaultTransferStyle
	}
	model := n.StyleTransferModel
	if model == "" {
		model = DefaultStyleTransferModel
	}
	return VendorRequestBody{
		Model:      model,
		Input:      VendorInput{Image: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(req.Image)},
		Parameters: VendorParameters{StyleName: style},
	}, nil
}
