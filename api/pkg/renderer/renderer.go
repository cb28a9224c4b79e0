package renderer

import (
	"errors"
	"fmt"
	"time"

	"github.com/helixml/scanout/api/pkg/kms"
)

// Renderer presents producer frames on one display target.
type Renderer interface {
	Name() string
	// Initialize attaches the device to the event loop and checks the target.
	Initialize() error
	// CreateExportable returns the handle a producer submits frames through.
	CreateExportable(width, height uint32) (*Exportable, error)
	// SetRotation reports whether the rotation was accepted. On false the caller
	// keeps rotation 0.
	SetRotation(r Rotation) bool
	Rotation() Rotation
	Stats() StatsSnapshot
	// Destroy releases every buffer and detaches from the event loop. It must run
	// on the loop goroutine or after the loop stopped.
	Destroy()
}

type Kind string

const (
	KindModeset Kind = "modeset"
	KindGLES    Kind = "gles"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindModeset, KindGLES:
		return k, nil
	case "":
		return KindModeset, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRenderer, s)
	}
}

const DefaultFlipDrainTimeout = time.Second

type Options struct {
	Kind Kind
	// FlipDrainTimeout bounds how long Destroy waits for an outstanding flip.
	FlipDrainTimeout time.Duration
}

// Deps are the collaborators a renderer is built on.
type Deps struct {
	KMS     KMS
	Buffers BufferManager
	Loop    Loop
	Target  *kms.DisplayTarget
}

// New builds the renderer selected by opts.Kind.
func New(opts Options, deps Deps) (Renderer, error) {
	kind := opts.Kind
	if kind == "" {
		kind = KindModeset
	}
	switch kind {
	case KindModeset:
		r, err := NewModesetRenderer(deps, opts)
		if err != nil {
			return nil, err
		}
		return r, nil
	case KindGLES:
		if deps.Loop == nil || deps.Target == nil {
			return nil, errors.New("gles renderer needs an event loop and a display target")
		}
		return NewGlesRenderer(deps.Loop, deps.Target), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, kind)
	}
}
