// SPDX-License-Identifier: MIT

// Package avatar renders deterministic initials avatars: one letter over a
// solid background color chosen by a checksum of the identifier.
package avatar

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"unicode"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrNoInitial is returned when an identity cannot produce a display initial.
// A blank avatar would hide the bug, so this fails loudly instead.
var ErrNoInitial = errors.New("avatar: identity has no display initial")

// Palette is the fixed set of background colors. Index selection is stable
// across releases; do not reorder.
var Palette = []color.RGBA{
	{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF}, // red
	{R: 0xFB, G: 0x8C, B: 0x00, A: 0xFF}, // orange
	{R: 0xFD, G: 0xD8, B: 0x35, A: 0xFF}, // yellow
	{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF}, // green
	{R: 0x00, G: 0xAC, B: 0xC1, A: 0xFF}, // cyan
	{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF}, // blue
	{R: 0x5E, G: 0x35, B: 0xB1, A: 0xFF}, // violet
	{R: 0xD8, G: 0x1B, B: 0x60, A: 0xFF}, // magenta
}

// PaletteIndex derives the background color index for an identifier.
// It is a pure function: the CRC-32 checksum of the identifier reduced
// modulo the palette size.
func PaletteIndex(identifier string) int {
	return int(crc32.ChecksumIEEE([]byte(identifier)) % uint32(len(Palette)))
}

// BackgroundColor returns the palette color for an identifier.
func BackgroundColor(identifier string) color.RGBA {
	return Palette[PaletteIndex(identifier)]
}

// Initial extracts the display initial from a name: the first rune,
// uppercased. Names without a usable rune yield ErrNoInitial.
func Initial(name string) (rune, error) {
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r), nil
		}
		break
	}
	return 0, ErrNoInitial
}

const (
	// MinSize and MaxSize bound the rendered square edge in pixels.
	MinSize = 16
	MaxSize = 1024

	// DefaultSize is used when the caller does not specify one.
	DefaultSize = 256

	// glyph cell of basicfont.Face7x13, plus padding for the small canvas
	glyphWidth  = 7
	glyphHeight = 13
	smallEdge   = 28
)

// Render produces a PNG avatar for the given identity: the initial of name
// centered in white over the identifier-derived background color.
// The identifier (not the name) selects the color, so renaming a user keeps
// their color stable.
func Render(identifier, name string, size int) ([]byte, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("avatar: size %d out of range [%d,%d]", size, MinSize, MaxSize)
	}

	initial, err := Initial(name)
	if err != nil {
		return nil, err
	}

	bg := BackgroundColor(identifier)

	// Draw at glyph resolution, then scale up. basicfont only exists at
	// 7x13, and the smooth upscale gives acceptably soft letter edges.
	small := image.NewRGBA(image.Rect(0, 0, smallEdge, smallEdge))
	xdraw.Draw(small, small.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)

	drawer := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
	}
	text := string(initial)
	textWidth := drawer.MeasureString(text).Ceil()
	x := (smallEdge - textWidth) / 2
	y := (smallEdge-glyphHeight)/2 + basicfont.Face7x13.Ascent
	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(text)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("avatar: png encode: %w", err)
	}
	return buf.Bytes(), nil
}
