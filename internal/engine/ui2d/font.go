package ui2d

import (
	"image"
	"image/draw"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph  = ' '
	lastGlyph   = '~'
	atlasCols   = 16
	replacement = '?'
)

// Font is a fixed-width bitmap font packed into an RGBA atlas. Glyph
// coverage is stored in the alpha channel.
type Font struct {
	atlas   *image.RGBA
	advance int
	height  int

	texture uint32
}

// NewFont rasterizes the printable ASCII range of the 7x13 basic face.
func NewFont() *Font {
	return newFontFrom(basicfont.Face7x13, basicfont.Face7x13.Advance, basicfont.Face7x13.Height, basicfont.Face7x13.Ascent)
}

func newFontFrom(face font.Face, advance, height, ascent int) *Font {
	count := int(lastGlyph-firstGlyph) + 1
	rows := (count + atlasCols - 1) / atlasCols
	atlas := image.NewRGBA(image.Rect(0, 0, atlasCols*advance, rows*height))

	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		i := int(r - firstGlyph)
		x, y := (i%atlasCols)*advance, (i/atlasCols)*height
		dot := fixed.P(x, y+ascent)
		dr, mask, maskp, _, ok := face.Glyph(dot, r)
		if !ok {
			continue
		}
		draw.DrawMask(atlas, dr, image.White, image.Point{}, mask, maskp, draw.Over)
	}
	return &Font{atlas: atlas, advance: advance, height: height}
}

// Atlas returns the glyph atlas image.
func (f *Font) Atlas() *image.RGBA { return f.atlas }

// GlyphSize returns the cell size of one glyph in pixels.
func (f *Font) GlyphSize() (int, int) { return f.advance, f.height }

// GlyphUV returns the atlas coordinates of r. Runes outside the atlas map to
// a question mark.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = replacement
	}
	i := int(r - firstGlyph)
	b := f.atlas.Bounds()
	w, h := float32(b.Dx()), float32(b.Dy())
	x, y := float32((i%atlasCols)*f.advance), float32((i/atlasCols)*f.height)
	return x / w, y / h, (x + float32(f.advance)) / w, (y + float32(f.height)) / h
}

// MeasureText returns the size of text drawn at scale.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	if text == "" {
		return 0, 0
	}
	lines := strings.Split(text, "\n")
	widest := 0
	for _, l := range lines {
		widest = max(widest, utf8.RuneCountInString(l))
	}
	return float32(widest*f.advance) * scale, float32(len(lines)*f.height) * scale
}

// TextureID returns the GL texture holding the atlas, or 0 before upload.
func (f *Font) TextureID() uint32 { return f.texture }
