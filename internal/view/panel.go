package view

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/formation-sense/internal/sim"
)

const (
	panelWidth      = 320
	panelMaxEntries = 48
	panelLineHeight = 14
)

// eventPanel shows the latest non-trivial world events.
type eventPanel struct {
	lines []string
}

// refresh keeps the newest notable events: failures, roster and anchor.
func (p *eventPanel) refresh(log *sim.EventLog) {
	p.lines = p.lines[:0]
	for _, e := range log.Notable(panelMaxEntries) {
		p.lines = append(p.lines, panelLine(e))
	}
}

func panelLine(e sim.Event) string {
	return fmt.Sprintf("[%04d] %-7.7s %s", e.Tick, e.Member, e.Key)
}

func (p *eventPanel) draw(screen *ebiten.Image, x, h int) {
	vector.FillRect(screen, float32(x), 0, panelWidth, float32(h), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(x), 0, float32(x), float32(h), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(x), 0, panelWidth, 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "EVENTS", x+8, 0)
	vector.StrokeLine(screen, float32(x), 16, float32(x+panelWidth), 16, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	// Newest at the bottom.
	y := h - panelLineHeight - 4
	for i := len(p.lines) - 1; i >= 0 && y > 18; i-- {
		ebitenutil.DebugPrintAt(screen, p.lines[i], x+8, y)
		y -= panelLineHeight
	}
}
