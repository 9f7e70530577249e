package view

import (
	"image/color"

	"github.com/Garsondee/formation-sense/internal/formation"
)

// camera maps world coordinates to screen pixels, centred on a point.
type camera struct {
	cx, cy float64 // world point at the screen centre
	scale  float64 // pixels per world unit
	w, h   int     // viewport size in pixels
}

func (c camera) toScreen(x, y float64) (float32, float32) {
	sx := float64(c.w)/2 + (x-c.cx)*c.scale
	sy := float64(c.h)/2 + (y-c.cy)*c.scale
	return float32(sx), float32(sy)
}

// zoomed returns c with its scale multiplied by f, clamped to [1, 40].
func (c camera) zoomed(f float64) camera {
	c.scale *= f
	if c.scale < 1 {
		c.scale = 1
	}
	if c.scale > 40 {
		c.scale = 40
	}
	return c
}

// roleColors maps each role to its render colour.
var roleColors = map[formation.Role]color.RGBA{
	formation.RoleTank:   {R: 90, G: 140, B: 255, A: 255}, // blue
	formation.RoleMelee:  {R: 230, G: 80, B: 60, A: 255},  // red
	formation.RoleRanged: {R: 240, G: 200, B: 60, A: 255}, // yellow
	formation.RoleHealer: {R: 80, G: 220, B: 120, A: 255}, // green
}

func roleColor(r formation.Role) color.RGBA {
	if c, ok := roleColors[r]; ok {
		return c
	}
	return color.RGBA{R: 200, G: 200, B: 200, A: 255}
}

// faded returns c at the given alpha.
func faded(c color.RGBA, alpha uint8) color.RGBA {
	c.A = alpha
	return c
}
