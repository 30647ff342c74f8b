package lighting

import (
	"testing"

	"github.com/techcore/gpu3d/internal/engine/scene"
)

func TestStudioRig(t *testing.T) {
	primary := scene.Hex(0x00ff41)
	r := StudioRig(primary, true)

	tests := []struct {
		name      string
		light     *scene.Light
		kind      scene.LightKind
		color     scene.Color
		intensity float32
		shadow    bool
	}{
		{"ambient", r.Ambient, scene.Ambient, scene.Hex(0x404040), 0.7, false},
		{"main", r.Main, scene.Directional, primary, 1.2, true},
		{"fill", r.Fill, scene.Directional, primary, 0.4, false},
		{"rim", r.Rim, scene.Directional, scene.Hex(0xffffff), 0.3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.light.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", tt.light.Kind, tt.kind)
			}
			if tt.light.Color != tt.color {
				t.Errorf("color = %+v, want %+v", tt.light.Color, tt.color)
			}
			if tt.light.Intensity != tt.intensity {
				t.Errorf("intensity = %v, want %v", tt.light.Intensity, tt.intensity)
			}
			if tt.light.CastShadow != tt.shadow {
				t.Errorf("cast shadow = %v, want %v", tt.light.CastShadow, tt.shadow)
			}
		})
	}
}

func TestStudioRigWithoutShadows(t *testing.T) {
	s := scene.New(scene.Hex(0))
	StudioRig(scene.Hex(0xffffff), false).AddTo(s)

	if len(s.Lights) != 4 {
		t.Fatalf("expected 4 lights, got %d", len(s.Lights))
	}
	if s.ShadowLight() != nil {
		t.Error("expected no shadow casting light")
	}
}
