//go:build !headless
// +build !headless

package graphics

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"nescore/internal/input"
	"nescore/internal/ppu"
)

// ebitenKeys maps configuration key names to Ebitengine keys.
var ebitenKeys = map[string]ebiten.Key{
	"a": ebiten.KeyA, "b": ebiten.KeyB, "c": ebiten.KeyC, "d": ebiten.KeyD,
	"e": ebiten.KeyE, "f": ebiten.KeyF, "g": ebiten.KeyG, "h": ebiten.KeyH,
	"i": ebiten.KeyI, "j": ebiten.KeyJ, "k": ebiten.KeyK, "l": ebiten.KeyL,
	"m": ebiten.KeyM, "n": ebiten.KeyN, "o": ebiten.KeyO, "p": ebiten.KeyP,
	"q": ebiten.KeyQ, "r": ebiten.KeyR, "s": ebiten.KeyS, "t": ebiten.KeyT,
	"u": ebiten.KeyU, "v": ebiten.KeyV, "w": ebiten.KeyW, "x": ebiten.KeyX,
	"y": ebiten.KeyY, "z": ebiten.KeyZ,

	"0": ebiten.Key0, "1": ebiten.Key1, "2": ebiten.Key2, "3": ebiten.Key3,
	"4": ebiten.Key4, "5": ebiten.Key5, "6": ebiten.Key6, "7": ebiten.Key7,
	"8": ebiten.Key8, "9": ebiten.Key9,

	"up":        ebiten.KeyArrowUp,
	"down":      ebiten.KeyArrowDown,
	"left":      ebiten.KeyArrowLeft,
	"right":     ebiten.KeyArrowRight,
	"enter":     ebiten.KeyEnter,
	"space":     ebiten.KeySpace,
	"tab":       ebiten.KeyTab,
	"backspace": ebiten.KeyBackspace,
	"shift":     ebiten.KeyShiftLeft,
	"control":   ebiten.KeyControlLeft,
	"alt":       ebiten.KeyAltLeft,
	"escape":    ebiten.KeyEscape,
	"comma":     ebiten.KeyComma,
	"period":    ebiten.KeyPeriod,
	"slash":     ebiten.KeySlash,
}

// Reserved for the window itself.
const (
	quitKey  = ebiten.KeyEscape
	pauseKey = ebiten.KeyP
)

// EbitengineBackend implements the Backend interface using Ebitengine. It is
// also the ebiten.Game: every Update polls the keyboard into the keypad and
// advances the emulator by one step.
type EbitengineBackend struct {
	config   Config
	keypad   *input.Keypad
	bindings map[ebiten.Key]input.Button

	ctx    context.Context
	step   func() error
	paused bool

	frame  *ebiten.Image
	pixels *image.RGBA
	dirty  bool

	windowWidth  int
	windowHeight int
}

// NewEbitengineBackend creates a new Ebitengine graphics backend
func NewEbitengineBackend(config Config, keypad *input.Keypad) (*EbitengineBackend, error) {
	bindings, err := resolveBindings(config.Keys)
	if err != nil {
		return nil, err
	}
	if config.Scale <= 0 {
		config.Scale = 1
	}
	return &EbitengineBackend{
		config:   config,
		keypad:   keypad,
		bindings: bindings,
		pixels:   image.NewRGBA(image.Rect(0, 0, ppu.Width, ppu.Height)),
	}, nil
}

// resolveBindings turns button-name to key-name pairs into a key lookup.
func resolveBindings(keys map[string]string) (map[ebiten.Key]input.Button, error) {
	bindings := make(map[ebiten.Key]input.Button, len(keys))
	for name, keyName := range keys {
		button, err := input.ParseButton(name)
		if err != nil {
			return nil, err
		}
		key, ok := ebitenKeys[strings.ToLower(keyName)]
		if !ok {
			return nil, fmt.Errorf("unknown key %q bound to %s", keyName, button)
		}
		if key == quitKey || key == pauseKey {
			return nil, fmt.Errorf("key %q is reserved", keyName)
		}
		bindings[key] = button
	}
	return bindings, nil
}

// Render copies the frame for the next Draw.
func (b *EbitengineBackend) Render(img *ppu.Image) error {
	img.CopyTo(b.pixels)
	b.dirty = true
	return nil
}

// Run opens the window and blocks until it closes, step fails or ctx ends.
func (b *EbitengineBackend) Run(ctx context.Context, step func() error) error {
	b.ctx = ctx
	b.step = step

	ebiten.SetWindowTitle(b.config.WindowTitle)
	ebiten.SetWindowSize(ppu.Width*b.config.Scale, ppu.Height*b.config.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(b.config.VSync)
	ebiten.SetFullscreen(b.config.Fullscreen)
	if b.config.FrameRate > 0 {
		ebiten.SetTPS(b.config.FrameRate)
	}

	log.Printf("[Ebitengine] window %dx%d, scale %d", ppu.Width*b.config.Scale, ppu.Height*b.config.Scale, b.config.Scale)
	if err := ebiten.RunGame(b); err != nil {
		return err
	}
	return ctx.Err()
}

// Update implements ebiten.Game.Update
func (b *EbitengineBackend) Update() error {
	if b.ctx.Err() != nil || inpututil.IsKeyJustPressed(quitKey) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(pauseKey) {
		b.paused = !b.paused
		log.Printf("[Ebitengine] paused: %v", b.paused)
	}

	b.pollKeys()
	if b.paused {
		return nil
	}
	return b.step()
}

func (b *EbitengineBackend) pollKeys() {
	if b.keypad == nil {
		return
	}
	var held uint8
	for key, button := range b.bindings {
		if ebiten.IsKeyPressed(key) {
			held |= uint8(button)
		}
	}
	b.keypad.Poll(held)
}

// Draw implements ebiten.Game.Draw
func (b *EbitengineBackend) Draw(screen *ebiten.Image) {
	if b.frame == nil {
		b.frame = ebiten.NewImage(ppu.Width, ppu.Height)
	}
	if b.dirty {
		b.frame.WritePixels(b.pixels.Pix)
		b.dirty = false
	}

	screen.Fill(color.RGBA{A: 255})

	// Fit the frame to the window keeping its aspect ratio, centered.
	scale := float64(b.windowWidth) / ppu.Width
	if s := float64(b.windowHeight) / ppu.Height; s < scale {
		scale = s
	}
	offsetX := (float64(b.windowWidth) - ppu.Width*scale) / 2
	offsetY := (float64(b.windowHeight) - ppu.Height*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	if b.config.Filter == "linear" {
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(b.frame, op)
}

// Layout implements ebiten.Game.Layout
func (b *EbitengineBackend) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	b.windowWidth = outsideWidth
	b.windowHeight = outsideHeight
	return outsideWidth, outsideHeight
}

func (b *EbitengineBackend) Name() string { return "Ebitengine" }

// Cleanup releases the frame texture.
func (b *EbitengineBackend) Cleanup() error {
	if b.frame != nil {
		b.frame.Deallocate()
		b.frame = nil
	}
	return nil
}
