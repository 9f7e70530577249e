// Package view renders a live simulated formation in an ebiten window.
//
// Keys: Space pauses, F toggles arrow/raid, Up/Down change range, Tab cycles
// the bot whose layout is drawn, Q/E zoom.
package view

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/formation-sense/internal/formation"
	"github.com/Garsondee/formation-sense/internal/sim"
)

const (
	defaultWidth  = 1280
	defaultHeight = 720
	memberRadius  = 5
)

var labelFace = text.NewGoXFace(basicfont.Face7x13)

// Game steps a sim.World once per ebiten update and draws it.
type Game struct {
	world  *sim.World
	cam    camera
	panel  eventPanel
	paused bool
	focus  int // index into world.Bots()
	// every is how many updates pass between world steps.
	every   int
	updates int
}

// New creates a viewer for w. stepEvery slows the world relative to the
// 60 Hz update rate.
func New(w *sim.World, stepEvery int) *Game {
	if stepEvery < 1 {
		stepEvery = 1
	}
	return &Game{
		world: w,
		cam:   camera{scale: 8, w: defaultWidth - panelWidth, h: defaultHeight},
		every: stepEvery,
	}
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, title string) error {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(defaultWidth, defaultHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	g.handleKeys()
	if !g.paused {
		g.updates++
		if g.updates%g.every == 0 {
			g.world.Step()
			g.panel.refresh(g.world.Log)
		}
	}
	if a := g.world.AnchorMember(); a != nil {
		g.cam.cx, g.cam.cy = a.X, a.Y
	}
	return nil
}

func (g *Game) handleKeys() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.world.SetLayout(nextKind(g.world.Kind), g.world.Range)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) {
		g.world.SetLayout(g.world.Kind, g.world.Range+1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) && g.world.Range > 1 {
		g.world.SetLayout(g.world.Kind, g.world.Range-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if n := len(g.world.Bots()); n > 0 {
			g.focus = (g.focus + 1) % n
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.cam = g.cam.zoomed(1 / 1.25)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.cam = g.cam.zoomed(1.25)
	}
}

func nextKind(k formation.Kind) formation.Kind {
	if k == formation.KindArrow {
		return formation.KindRaid
	}
	return formation.KindArrow
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 28, G: 42, B: 28, A: 255})
	g.drawGrid(screen)
	g.drawLayout(screen)
	g.drawMembers(screen)
	g.drawHUD(screen)
	g.panel.draw(screen, g.cam.w, g.cam.h)
}

// drawGrid draws world lines every 10 units.
func (g *Game) drawGrid(screen *ebiten.Image) {
	const step = 10.0
	lineCol := color.RGBA{R: 40, G: 58, B: 40, A: 255}
	halfW := float64(g.cam.w) / 2 / g.cam.scale
	halfH := float64(g.cam.h) / 2 / g.cam.scale
	for x := math.Floor((g.cam.cx-halfW)/step) * step; x <= g.cam.cx+halfW; x += step {
		sx, _ := g.cam.toScreen(x, 0)
		vector.StrokeLine(screen, sx, 0, sx, float32(g.cam.h), 1, lineCol, false)
	}
	for y := math.Floor((g.cam.cy-halfH)/step) * step; y <= g.cam.cy+halfH; y += step {
		_, sy := g.cam.toScreen(0, y)
		vector.StrokeLine(screen, 0, sy, float32(g.cam.w), sy, 1, lineCol, false)
	}
}

// drawLayout shows every slot of the focused bot's layout as a ring.
func (g *Game) drawLayout(screen *ebiten.Image) {
	bots := g.world.Bots()
	if len(bots) == 0 {
		return
	}
	focus := bots[g.focus%len(bots)]
	pts, ok := g.world.Layout(focus.ID)
	if !ok {
		return
	}
	for _, p := range pts {
		sx, sy := g.cam.toScreen(p.X, p.Y)
		col := faded(roleColor(p.Role), 110)
		width := float32(1)
		if p.IsSelf {
			col = color.RGBA{R: 255, G: 255, B: 255, A: 200}
			width = 2
		}
		vector.StrokeCircle(screen, sx, sy, memberRadius+3, width, col, true)
	}
}

func (g *Game) drawMembers(screen *ebiten.Image) {
	heading := g.world.Heading()
	var anchorID formation.MemberID
	if a := g.world.AnchorMember(); a != nil {
		anchorID = a.ID
	}
	for _, m := range g.world.Members() {
		sx, sy := g.cam.toScreen(m.X, m.Y)
		col := roleColor(m.Role)

		if m.ID == anchorID {
			hx := sx + float32(math.Cos(heading)*24)
			hy := sy + float32(math.Sin(heading)*24)
			vector.StrokeLine(screen, sx, sy, hx, hy, 2, color.White, true)
			vector.FillCircle(screen, sx, sy, memberRadius+2, col, true)
		} else {
			if m.Reason == "resolved" {
				tx, ty := g.cam.toScreen(m.Target.X, m.Target.Y)
				vector.StrokeLine(screen, sx, sy, tx, ty, 1, faded(col, 90), true)
			}
			vector.FillCircle(screen, sx, sy, memberRadius, col, true)
			if m.Reason != "" && m.Reason != "resolved" {
				vector.StrokeCircle(screen, sx, sy, memberRadius+1, 2, color.RGBA{R: 255, G: 0, B: 0, A: 255}, true)
			}
		}

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(sx)+memberRadius+3, float64(sy)-6)
		op.ColorScale.ScaleWithColor(color.RGBA{R: 220, G: 220, B: 220, A: 255})
		text.Draw(screen, string(m.ID), labelFace, op)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	state := "running"
	if g.paused {
		state = "paused"
	}
	hud := fmt.Sprintf("tick %d  %s  range %.1f  zoom %.1fx  %s", g.world.Tick, g.world.Kind, g.world.Range, g.cam.scale, state)
	bots := g.world.Bots()
	if len(bots) > 0 {
		hud += fmt.Sprintf("  focus %s", bots[g.focus%len(bots)].ID)
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(8, 6)
	op.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, hud, labelFace, op)
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.cam.w = max(outsideWidth-panelWidth, 1)
	g.cam.h = outsideHeight
	return outsideWidth, outsideHeight
}
