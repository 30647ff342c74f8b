package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Hex is a 24-bit RGB color written as "#rrggbb" or "0xrrggbb".
type Hex uint32

// UnmarshalText parses "#0a0a0a", "0x0a0a0a" or a bare "0a0a0a".
func (h *Hex) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	switch {
	case strings.HasPrefix(s, "#"):
		s = s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
	}
	if len(s) != 6 {
		return fmt.Errorf("color %q: expected 6 hex digits", string(text))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fmt.Errorf("color %q: %w", string(text), err)
	}
	*h = Hex(v)
	return nil
}

// MarshalText writes the color as "#rrggbb".
func (h Hex) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h Hex) String() string {
	return fmt.Sprintf("#%06x", uint32(h)&0xffffff)
}
