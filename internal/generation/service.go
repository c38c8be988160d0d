package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"artstudio/internal/domain"
	"artstudio/internal/imagegen"
	"artstudio/internal/infra"
	"artstudio/internal/providers/dashscope"
	"artstudio/internal/storage"
)

// Vendor is the outbound surface the service needs from DashScope.
type Vendor interface {
	HasCredentials() bool
	TextToImage(ctx context.Context, body imagegen.VendorRequestBody) ([]byte, error)
	StyleTransfer(ctx context.Context, body imagegen.VendorRequestBody) ([]byte, error)
	Download(ctx context.Context, imageURL string) (*dashscope.Image, error)
}

// Options wires a Service.
type Options struct {
	Vendor      Vendor
	Normalizer  imagegen.Normalizer
	Store       storage.ImageStore
	Persist     bool
	Placeholder *Placeholder
	History     domain.GenerationRepository
	Logger      *infra.Logger
	Now         func() time.Time
}

// Service runs one generation per call:
// validate, call the vendor, reconcile, persist, and fall back when allowed.
type Service struct {
	vendor      Vendor
	normalizer  imagegen.Normalizer
	store       storage.ImageStore
	persist     bool
	placeholder *Placeholder
	history     domain.GenerationRepository
	logger      *infra.Logger
	now         func() time.Time
}

func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if opts.Placeholder != nil && opts.Now != nil {
		opts.Placeholder.now = opts.Now
	}
	return &Service{
		vendor:      opts.Vendor,
		normalizer:  opts.Normalizer,
		store:       opts.Store,
		persist:     opts.Persist && opts.Store != nil,
		placeholder: opts.Placeholder,
		history:     opts.History,
		logger:      logger,
		now:         now,
	}
}

// Generate turns a text prompt into an image reference. Vendor call failures
// are masked by the placeholder when one is configured, and the Result says
// so. Reconciliation failures are never masked.
func (s *Service) Generate(ctx context.Context, req domain.GenerationRequest) (domain.Result, error) {
	body, err := s.normalizer.Normalize(req)
	if err != nil {
		return failed(), err
	}
	if s.vendor == nil || !s.vendor.HasCredentials() {
		return failed(), fmt.Errorf("dashscope api key is not configured: %w", domain.ErrConfiguration)
	}

	result, err := s.run(ctx, func(ctx context.Context) ([]byte, error) {
		return s.vendor.TextToImage(ctx, body)
	})
	if err != nil && errors.Is(err, domain.ErrVendorCall) && s.placeholder != nil {
		result, err = s.fallback(ctx, req.Style, err)
	}
	s.record(ctx, domain.GenerationRecord{
		Kind:   domain.GenerationKindTextToImage,
		Prompt: body.Input.Prompt,
		Style:  body.Parameters.Style,
		Ratio:  req.Ratio,
	}, result, err)
	return result, err
}

// StyleTransfer re-renders an uploaded image in the requested style.
func (s *Service) StyleTransfer(ctx context.Context, req domain.StyleTransferRequest) (domain.Result, error) {
	body, err := s.normalizer.NormalizeStyleTransfer(req)
	if err != nil {
		return failed(), err
	}
	if s.vendor == nil || !s.vendor.HasCredentials() {
		return failed(), fmt.Errorf("dashscope api key is not configured: %w", domain.ErrConfiguration)
	}
	result, err := s.run(ctx, func(ctx context.Context) ([]byte, error) {
		return s.vendor.StyleTransfer(ctx, body)
	})
	s.record(ctx, domain.GenerationRecord{
		Kind:  domain.GenerationKindStyleTransfer,
		Style: body.Parameters.StyleName,
	}, result, err)
	return result, err
}

func (s *Service) run(ctx context.Context, call func(context.Context) ([]byte, error)) (domain.Result, error) {
	raw, err := call(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("generation: vendor call failed")
		return failed(), err
	}
	vendorURL, err := imagegen.Reconcile(raw)
	if err != nil {
		s.logger.Error().Bytes("raw", clip(raw, 4096)).Msg("generation: unrecognized vendor response")
		return failed(), err
	}
	result := domain.Result{Outcome: domain.OutcomeSucceeded, Image: vendorURL, VendorURL: vendorURL}
	if !s.persist {
		return result, nil
	}
	ref, err := s.persistImage(ctx, vendorURL)
	if err != nil {
		// the vendor URL still works for a while; hand that out instead
		s.logger.Warn().Err(err).Str("url", vendorURL).Msg("generation: persisting image failed, returning vendor url")
		return result, nil
	}
	result.Image = ref
	result.Persisted = true
	return result, nil
}

func (s *Service) persistImage(ctx context.Context, vendorURL string) (string, error) {
	img, err := s.vendor.Download(ctx, vendorURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	key := storage.TimestampKey(s.now(), storage.ExtensionFor(img.ContentType))
	ref, err := s.store.Save(ctx, key, img.Data, img.ContentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return ref, nil
}

func (s *Service) fallback(ctx context.Context, style string, cause error) (domain.Result, error) {
	ref, err := s.placeholder.Resolve(ctx, style)
	if err != nil {
		s.logger.Error().Err(err).Msg("generation: placeholder fallback failed")
		return failed(), cause
	}
	s.logger.Warn().Err(cause).Str("image", ref).Msg("generation: serving placeholder")
	return domain.Result{Outcome: domain.OutcomeSucceededWithFallback, Image: ref}, nil
}

func (s *Service) record(ctx context.Context, rec domain.GenerationRecord, result domain.Result, err error) {
	if s.history == nil {
		return
	}
	rec.ID = uuid.NewString()
	rec.Outcome = result.Outcome
	rec.Image = result.Image
	rec.CreatedAt = s.now().UTC()
	if err != nil {
		rec.Outcome = domain.OutcomeFailed
		rec.Error = err.Error()
	}
	if herr := s.history.Create(context.WithoutCancel(ctx), &rec); herr != nil {
		s.logger.Warn().Err(herr).Str("kind", string(rec.Kind)).Msg("generation: history write failed")
	}
}

// ListHistory returns recent generations, or ErrConfiguration when no
// history store is wired.
func (s *Service) ListHistory(ctx context.Context, limit int) ([]domain.GenerationRecord, error) {
	if s.history == nil {
		return nil, fmt.Errorf("generation history is not configured: %w", domain.ErrConfiguration)
	}
	return s.history.ListRecent(ctx, limit)
}

func failed() domain.Result {
	return domain.Result{Outcome: domain.OutcomeFailed}
}

func clip(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
