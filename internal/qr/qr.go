// SPDX-License-Identifier: MIT

// Package qr renders QR codes as PNGs. Encoding is delegated entirely to the
// go-qrcode library; this package only validates input and maps parameters.
package qr

import (
	"errors"
	"fmt"
	"strings"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/quillhq/quill/internal/metrics"
)

// Level names the QR error-correction level on the wire.
type Level string

const (
	LevelLow     Level = "L"
	LevelMedium  Level = "M"
	LevelQuality Level = "Q"
	LevelHigh    Level = "H"
)

const (
	// MinSize and MaxSize bound the rendered square edge in pixels.
	MinSize = 64
	MaxSize = 2048

	// DefaultSize is used when the caller does not specify one.
	DefaultSize = 256

	// MaxPayload caps the encoded data length. QR version 40 holds more,
	// but dense codes are unscannable at the sizes we serve.
	MaxPayload = 1024
)

var (
	ErrEmptyPayload   = errors.New("qr: empty payload")
	ErrPayloadTooLong = fmt.Errorf("qr: payload exceeds %d bytes", MaxPayload)
	ErrInvalidPayload = errors.New("qr: payload contains control characters")
)

// recoveryLevels maps wire names to library levels.
var recoveryLevels = map[Level]qrcode.RecoveryLevel{
	LevelLow:     qrcode.Low,
	LevelMedium:  qrcode.Medium,
	LevelQuality: qrcode.High,
	LevelHigh:    qrcode.Highest,
}

// ParseLevel resolves a wire-level name, case-insensitively.
// Empty input selects Medium, the library default.
func ParseLevel(s string) (Level, error) {
	if s == "" {
		return LevelMedium, nil
	}
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := recoveryLevels[l]; !ok {
		return "", fmt.Errorf("qr: unknown error-correction level %q", s)
	}
	return l, nil
}

// ValidatePayload checks the data to encode.
func ValidatePayload(data string) error {
	if data == "" {
		return ErrEmptyPayload
	}
	if len(data) > MaxPayload {
		return ErrPayloadTooLong
	}
	for _, r := range data {
		if r < 0x20 && r != '\n' && r != '\t' {
			return ErrInvalidPayload
		}
		if r == 0x7f {
			return ErrInvalidPayload
		}
	}
	return nil
}

// Generate renders data as a size x size PNG at the given correction level.
func Generate(data string, size int, level Level) ([]byte, error) {
	if err := ValidatePayload(data); err != nil {
		return nil, err
	}
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("qr: size %d out of range [%d,%d]", size, MinSize, MaxSize)
	}
	recovery, ok := recoveryLevels[level]
	if !ok {
		return nil, fmt.Errorf("qr: unknown error-correction level %q", level)
	}

	start := time.Now()
	png, err := qrcode.Encode(data, recovery, size)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}

	metrics.QRGenerationDuration.Observe(time.Since(start).Seconds())
	metrics.QRGenerated.WithLabelValues(string(level)).Inc()

	return png, nil
}
