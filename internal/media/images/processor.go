package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"log/slog"
)

var (
	// ErrUnsupportedFormat is returned for data that is not a JPEG, PNG, GIF or WebP image.
	ErrUnsupportedFormat = errors.New("unsupported image format")
	// ErrTooLarge is returned when an image exceeds the configured pixel dimensions.
	ErrTooLarge = errors.New("image dimensions too large")
)

// formats maps the decoder name reported by image.DecodeConfig to its
// content type and file extension.
var formats = map[string]struct {
	contentType string
	ext         string
}{
	"jpeg": {"image/jpeg", ".jpg"},
	"png":  {"image/png", ".png"},
	"gif":  {"image/gif", ".gif"},
	"webp": {"image/webp", ".webp"},
}

// Info describes a validated image.
type Info struct {
	Format      string
	ContentType string
	Ext         string
	Width       int
	Height      int
	BlurHash    string
}

// Processor validates uploaded bytes and derives their metadata.
type Processor struct {
	maxDimension int
	logger       *slog.Logger
}

// NewProcessor creates a Processor. maxDimension <= 0 disables the size check.
func NewProcessor(maxDimension int, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{maxDimension: maxDimension, logger: logger}
}

// Inspect sniffs the format from the data itself, enforces the dimension
// limit and computes a BlurHash placeholder. A BlurHash failure is logged
// and leaves Info.BlurHash empty.
func (p *Processor) Inspect(data []byte) (*Info, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	f, ok := formats[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if p.maxDimension > 0 && (cfg.Width > p.maxDimension || cfg.Height > p.maxDimension) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooLarge, cfg.Width, cfg.Height, p.maxDimension)
	}

	info := &Info{
		Format:      format,
		ContentType: f.contentType,
		Ext:         f.ext,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	hash, err := ComputeBlurHash(img)
	if err != nil {
		p.logger.Warn("blurhash failed", "format", format, "error", err)
	} else {
		info.BlurHash = hash
	}

	p.logger.Debug("image inspected",
		"format", format,
		"width", cfg.Width,
		"height", cfg.Height,
		"size", len(data),
	)
	return info, nil
}
