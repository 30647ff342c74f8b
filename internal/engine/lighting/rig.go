// Package lighting builds the light setups used by the viewer.
package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

// Rig is a studio three-point setup plus ambient fill.
type Rig struct {
	Ambient *scene.Light
	Main    *scene.Light
	Fill    *scene.Light
	Rim     *scene.Light
}

// StudioRig builds the ambient, main, fill and rim lights. Main and fill take
// the primary color; only the main light casts shadows, and only when
// shadows is set.
func StudioRig(primary scene.Color, shadows bool) *Rig {
	return &Rig{
		Ambient: &scene.Light{
			Name:      "ambient",
			Kind:      scene.Ambient,
			Color:     scene.Hex(0x404040),
			Intensity: 0.7,
		},
		Main: &scene.Light{
			Name:       "main",
			Kind:       scene.Directional,
			Color:      primary,
			Intensity:  1.2,
			Position:   mgl32.Vec3{3, 5, 5},
			CastShadow: shadows,
		},
		Fill: &scene.Light{
			Name:      "fill",
			Kind:      scene.Directional,
			Color:     primary,
			Intensity: 0.4,
			Position:  mgl32.Vec3{-3, -2, -5},
		},
		Rim: &scene.Light{
			Name:      "rim",
			Kind:      scene.Directional,
			Color:     scene.Hex(0xffffff),
			Intensity: 0.3,
			Position:  mgl32.Vec3{0, 5, -3},
		},
	}
}

// Lights returns the rig in drawing order.
func (r *Rig) Lights() []*scene.Light {
	return []*scene.Light{r.Ambient, r.Main, r.Fill, r.Rim}
}

// AddTo attaches every light of the rig to s.
func (r *Rig) AddTo(s *scene.Scene) {
	for _, l := range r.Lights() {
		s.AddLight(l)
	}
}
