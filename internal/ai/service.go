package ai

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"runtime"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Vovarama1992/pdf_vision/internal/error_notificator"
	"github.com/Vovarama1992/pdf_vision/internal/pdf"
)

const defaultPrompt = "Describe the content of these images."

var ErrNoImages = errors.New("no images to describe")

type Options struct {
	DefaultPrompt string
	Timeout       time.Duration
	// RequestsPerMinute paces model calls; zero disables pacing.
	RequestsPerMinute int
	// MaxImageSide downscales larger images before encoding; zero keeps
	// the original size.
	MaxImageSide int
}

type AiService struct {
	model    VisionModel
	limiter  *rate.Limiter
	opts     Options
	Notifier error_notificator.Notificator
	log      *zap.Logger
}

func NewAiService(model VisionModel, opts Options, notifier error_notificator.Notificator, log *zap.Logger) *AiService {
	if opts.DefaultPrompt == "" {
		opts.DefaultPrompt = defaultPrompt
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &AiService{model: model, opts: opts, Notifier: notifier, log: log}
	if opts.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute)
	}
	return s
}

func (s *AiService) ModelName() string { return s.model.Name() }

func (s *AiService) IsHealthy(ctx context.Context) bool { return s.model.IsHealthy(ctx) }

// Describe asks the model about images. An empty prompt is replaced with
// the default one.
func (s *AiService) Describe(ctx context.Context, prompt string, images []image.Image) (string, error) {
	if len(images) == 0 {
		return "", ErrNoImages
	}

	start := time.Now()
	fullPrompt := s.BuildPrompt(prompt, len(images))

	encoded, err := EncodeImages(ctx, images, s.opts.MaxImageSide)
	if err != nil {
		return "", fmt.Errorf("encode images: %w", err)
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	reply, err := s.model.Describe(ctx, fullPrompt, encoded)
	s.log.Info("model call done",
		zap.String("backend", s.model.Name()),
		zap.Int("images", len(images)),
		zap.Duration("took", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		s.notifyModelError(ctx, err)
		return "", fmt.Errorf("%s: %w", s.model.Name(), err)
	}

	return strings.TrimSpace(reply), nil
}

// BuildPrompt prepends one placeholder line per image for backends that
// reference images from the prompt text.
func (s *AiService) BuildPrompt(prompt string, n int) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = s.opts.DefaultPrompt
	}

	ph, ok := s.model.(InlinePlaceholders)
	if !ok {
		return prompt
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString(ph.Placeholder(i))
		b.WriteByte('\n')
	}
	b.WriteString(prompt)
	return b.String()
}

func (s *AiService) notifyModelError(ctx context.Context, err error) {
	if s.Notifier == nil {
		return
	}
	kind := ClassifyError(err)
	// the request context may already be done
	_ = s.Notifier.Notify(context.WithoutCancel(ctx), err,
		fmt.Sprintf("Model error\nBackend: %s\n%s", s.model.Name(), kind.Describe()))
}

// EncodeImages downscales and PNG-encodes images concurrently, keeping
// their order.
func EncodeImages(ctx context.Context, images []image.Image, maxSide int) ([]EncodedImage, error) {
	out := make([]EncodedImage, len(images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, img := range images {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := pdf.EncodePNG(Downscale(img, maxSide))
			if err != nil {
				return fmt.Errorf("image %d: %w", i+1, err)
			}
			out[i] = EncodedImage{MimeType: "image/png", Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Downscale shrinks img so its longer side is at most maxSide, keeping the
// aspect ratio.
func Downscale(img image.Image, maxSide int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSide <= 0 || max(w, h) <= maxSide {
		return img
	}

	nw, nh := maxSide, maxSide
	if w >= h {
		nh = max(1, h*maxSide/w)
	} else {
		nw = max(1, w*maxSide/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindRateLimit
	KindModelNotFound
	KindBadRequest
	KindUpstream
	KindTimeout
)

func (k ErrorKind) Describe() string {
	switch k {
	case KindAuth:
		return "Invalid API key."
	case KindRateLimit:
		return "Rate limit exceeded."
	case KindModelNotFound:
		return "Model not found."
	case KindBadRequest:
		return "Bad request to the model."
	case KindUpstream:
		return "Model server error."
	case KindTimeout:
		return "Model call timed out."
	}
	return "Unknown model error."
}

// ClassifyError maps backend errors onto a small set of operator facing kinds.
func ClassifyError(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var code int
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var stErr *StatusError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		code = reqErr.HTTPStatusCode
	case errors.As(err, &stErr):
		code = stErr.Code
	default:
		return KindUnknown
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimit
	case code == http.StatusNotFound:
		return KindModelNotFound
	case code >= 400 && code < 500:
		return KindBadRequest
	case code >= 500:
		return KindUpstream
	}
	return KindUnknown
}
