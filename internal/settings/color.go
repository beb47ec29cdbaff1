package settings

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Color is an RGBA color serialized as "#rrggbbaa".
type Color struct {
	R, G, B, A uint8
}

var (
	White      = Color{0xff, 0xff, 0xff, 0xff}
	Black      = Color{0x00, 0x00, 0x00, 0xff}
	HotPink    = Color{0xff, 0x69, 0xb4, 0xff}
	Gold       = Color{0xff, 0xd7, 0x00, 0xff}
	DarkOrange = Color{0xff, 0x8c, 0x00, 0xff}
)

// WithAlpha returns c with the alpha channel replaced.
func (c Color) WithAlpha(a uint8) Color {
	c.A = a
	return c
}

// Hex returns the color as "#rrggbb", dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "#rrggbb" (opaque) and "#rrggbbaa".
func (c *Color) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color %q", string(text))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", string(text), err)
	}
	*c = Color{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return nil
}
