package ui2d

// Color is an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Palette used by the widgets.
var (
	ColorTransparent = Color{0, 0, 0, 0}
	ColorWhite       = Color{1, 1, 1, 1}

	ColorPanelBg      = Color{0.06, 0.07, 0.1, 0.85}
	ColorPanelBorder  = Color{0.25, 0.3, 0.4, 1}
	ColorTitleBg      = Color{0.1, 0.12, 0.18, 1}
	ColorButtonNormal = Color{0.14, 0.16, 0.22, 1}
	ColorButtonHover  = Color{0.22, 0.26, 0.36, 1}
	ColorButtonActive = Color{0.0, 0.45, 0.35, 1}
	ColorTrack        = Color{0.04, 0.05, 0.08, 1}
	ColorText         = Color{0.92, 0.92, 0.92, 1}
	ColorTextDim      = Color{0.5, 0.52, 0.6, 1}
	ColorHighlight    = Hex(0x00d4aa)
	ColorWarning      = Hex(0xffaa00)
	ColorError        = Hex(0xff5c5c)
)

// Hex converts a 0xRRGGBB value into an opaque Color.
func Hex(v uint32) Color {
	return Color{
		R: float32(v>>16&0xff) / 255,
		G: float32(v>>8&0xff) / 255,
		B: float32(v&0xff) / 255,
		A: 1,
	}
}

// WithAlpha returns a copy of the color with a different alpha value.
func (c Color) WithAlpha(a float32) Color {
	return Color{c.R, c.G, c.B, a}
}

// Darken returns a darker version of the color.
func (c Color) Darken(factor float32) Color {
	return Color{
		R: c.R * (1 - factor),
		G: c.G * (1 - factor),
		B: c.B * (1 - factor),
		A: c.A,
	}
}
