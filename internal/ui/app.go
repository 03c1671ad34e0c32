// Package ui implements the ebiten-based display front-end described in
// SPEC_FULL §C: it is the concrete implementation of the two callbacks
// (present, poll_input) spec §6 requires from whatever drives the core.
// Grounded on the teacher's ebitenapp.go (App struct, NewApp/Run/Update/
// Draw/Layout shape, ebiten.Image.WritePixels framebuffer blit, inpututil
// edge-triggered key handling, JSON settings persistence via
// SaveSettings/internal/config), trimmed to the GBA core's actual surface:
// no APU (sound is an explicit Non-goal), no save-state menu, no ROM
// browser — a single cartridge is supplied on the command line and the
// window presents the 240x160 mode-4 framebuffer every VBlank.
package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/tinygba/gba/internal/config"
	"github.com/tinygba/gba/internal/gba"
	"github.com/tinygba/gba/internal/ppu"
)

// App is an ebiten.Game driving a gba.Machine.
type App struct {
	cfg config.Config
	m   *gba.Machine
	tex *ebiten.Image

	paused bool
	rgba   []byte // scratch RGBA8888 buffer, converted from BGR555 each frame
}

// NewApp wires a into an ebiten.Game around m, applying cfg (already
// Load()-merged by the caller) as the window title/scale.
func NewApp(cfg config.Config, m *gba.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(ppu.ScreenWidth*cfg.Scale, ppu.ScreenHeight*cfg.Scale)
	a := &App{cfg: cfg, m: m, rgba: make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4)}
	m.SetPresent(func(fb *[ppu.ScreenWidth * ppu.ScreenHeight]uint16) { a.blit(fb) })
	m.SetPollInput(a.pollInput)
	return a
}

// Run starts the ebiten game loop (blocking, matching teacher's App.Run).
func (a *App) Run() error { return ebiten.RunGame(a) }

// SaveSettings persists the current window config, matching the teacher's
// exit-time settings save.
func (a *App) SaveSettings() { config.Save(a.cfg) }

// blit converts the PPU's BGR555 framebuffer to RGBA8888 into the scratch
// buffer backing a.tex, matching the teacher's tex.WritePixels(fb) call but
// with the GBA's 5-5-5 packed color format expanded to 8 bits per channel.
func (a *App) blit(fb *[ppu.ScreenWidth * ppu.ScreenHeight]uint16) {
	for i, px := range fb {
		r := uint8(px&0x1F) << 3
		g := uint8((px>>5)&0x1F) << 3
		b := uint8((px>>10)&0x1F) << 3
		o := i * 4
		a.rgba[o+0] = r
		a.rgba[o+1] = g
		a.rgba[o+2] = b
		a.rgba[o+3] = 0xFF
	}
}

// pollInput samples the fixed key bindings once per VBlank (spec §6's
// poll_input), matching the teacher's per-frame ebiten.IsKeyPressed block.
func (a *App) pollInput() {
	a.m.SetButtons(gba.Buttons{
		A:      ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["A"])),
		B:      ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["B"])),
		Start:  ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["Start"])),
		Select: ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["Select"])),
		Up:     ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["Up"])),
		Down:   ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["Down"])),
		Left:   ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["Left"])),
		Right:  ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["Right"])),
		L:      ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["L"])),
		R:      ebiten.IsKeyPressed(keyByName(a.cfg.KeyBindings["R"])),
	})
}

// keyByName resolves a config-file key-binding string to its ebiten.Key,
// covering the subset the default bindings use; an unrecognized name binds
// to nothing rather than panicking.
func keyByName(name string) ebiten.Key {
	switch name {
	case "KeyX":
		return ebiten.KeyX
	case "KeyZ":
		return ebiten.KeyZ
	case "KeyA":
		return ebiten.KeyA
	case "KeyS":
		return ebiten.KeyS
	case "Enter":
		return ebiten.KeyEnter
	case "ShiftRight":
		return ebiten.KeyShiftRight
	case "ArrowUp":
		return ebiten.KeyArrowUp
	case "ArrowDown":
		return ebiten.KeyArrowDown
	case "ArrowLeft":
		return ebiten.KeyArrowLeft
	case "ArrowRight":
		return ebiten.KeyArrowRight
	default:
		return ebiten.Key(-1)
	}
}

// Update implements ebiten.Game: it advances one GBA frame and handles the
// pause toggle, matching the teacher's Update/pause shape.
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if !a.paused {
		a.m.RunFrame()
	}
	return nil
}

// Draw implements ebiten.Game: blit the scratch RGBA buffer (filled by
// present()/blit during RunFrame) onto the screen.
func (a *App) Draw(screen *ebiten.Image) {
	if a.tex == nil {
		a.tex = ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight)
	}
	a.tex.WritePixels(a.rgba)
	screen.DrawImage(a.tex, nil)
}

// Layout implements ebiten.Game: the logical screen is always 240x160.
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}
