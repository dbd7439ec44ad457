package qr

import (
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"
)

type Options struct {
	// Size is the PNG edge in pixels.
	Size int
	// ErrorCorrection is one of "low", "medium", "high", "highest".
	ErrorCorrection string
}

const (
	minSize     = 64
	maxSize     = 2048
	defaultSize = 256
)

var ErrBadOptions = errors.New("invalid qr options")

func (o Options) withDefaults() Options {
	if o.Size == 0 {
		o.Size = defaultSize
	}
	if o.ErrorCorrection == "" {
		o.ErrorCorrection = "medium"
	}
	return o
}

func (o Options) validate() error {
	if o.Size < minSize || o.Size > maxSize {
		return fmt.Errorf("%w: size must be between %d and %d", ErrBadOptions, minSize, maxSize)
	}
	if _, ok := levels[o.ErrorCorrection]; !ok {
		return fmt.Errorf("%w: unknown error correction %q", ErrBadOptions, o.ErrorCorrection)
	}
	return nil
}

var levels = map[string]qrcode.RecoveryLevel{
	"low":     qrcode.Low,
	"medium":  qrcode.Medium,
	"high":    qrcode.High,
	"highest": qrcode.Highest,
}

// Encode renders url as a PNG QR code.
func Encode(url string, opts Options) ([]byte, error) {
	opts = opts.withDefaults()

	if err := opts.validate(); err != nil {
		return nil, err
	}

	code, err := qrcode.New(url, levels[opts.ErrorCorrection])
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	png, err := code.PNG(opts.Size)
	if err != nil {
		return nil, fmt.Errorf("render qr png: %w", err)
	}

	return png, nil
}
