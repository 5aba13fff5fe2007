//go:build headless
// +build headless

package graphics

import (
	"context"

	"nescore/internal/input"
	"nescore/internal/ppu"
)

// EbitengineBackend stub for headless builds
type EbitengineBackend struct{}

// NewEbitengineBackend reports that no window can be opened.
func NewEbitengineBackend(Config, *input.Keypad) (*EbitengineBackend, error) {
	return nil, ErrBackendUnavailable
}

func (b *EbitengineBackend) Render(*ppu.Image) error                { return ErrBackendUnavailable }
func (b *EbitengineBackend) Run(context.Context, func() error) error { return ErrBackendUnavailable }
func (b *EbitengineBackend) Name() string                            { return "Ebitengine-Stub" }
func (b *EbitengineBackend) Cleanup() error                          { return nil }
