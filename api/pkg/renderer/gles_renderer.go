package renderer

import (
	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/kms"
)

// GlesRenderer is the textured-quad presentation strategy. It supports every
// rotation through its Geometry; drawing the quad is left to the EGL layer, so
// frames are released and acknowledged as soon as they arrive.
type GlesRenderer struct {
	loop       Loop
	target     kms.DisplayTarget
	rotation   Rotation
	geometry   Geometry
	exportable *Exportable
	producer   Producer
	stats      *Stats
}

func NewGlesRenderer(loop Loop, target *kms.DisplayTarget) *GlesRenderer {
	r := &GlesRenderer{loop: loop, target: *target, stats: newStats()}
	r.geometry, _ = NewGeometry(Rotate0, r.target.Width(), r.target.Height())
	return r
}

func (r *GlesRenderer) Name() string { return string(KindGLES) }

func (r *GlesRenderer) Initialize() error {
	log.Info().Str("renderer", r.Name()).Stringer("target", &r.target).Int("rotation", int(r.rotation)).Msg("renderer initialized")
	return nil
}

func (r *GlesRenderer) CreateExportable(width, height uint32) (*Exportable, error) {
	if r.exportable != nil {
		return nil, ErrExportableExists
	}
	r.exportable = newExportable(r.loop, r, width, height)
	return r.exportable, nil
}

func (r *GlesRenderer) SetRotation(rot Rotation) bool {
	g, err := NewGeometry(rot, r.target.Width(), r.target.Height())
	if err != nil {
		log.Warn().Err(err).Str("renderer", r.Name()).Msg("rotation not supported")
		return false
	}
	r.rotation = rot
	r.geometry = g
	return true
}

func (r *GlesRenderer) Rotation() Rotation { return r.rotation }

// Geometry is the quad layout for the current rotation.
func (r *GlesRenderer) Geometry() Geometry { return r.geometry }

func (r *GlesRenderer) Stats() StatsSnapshot { return r.stats.Snapshot() }

func (r *GlesRenderer) setProducer(p Producer) {
	r.producer = p
}

func (r *GlesRenderer) present(buf ExportedBuffer) {
	if r.producer == nil {
		r.stats.dropped.Inc()
		log.Warn().Err(ErrNoProducer).Stringer("resource", buf.ResourceID()).Msg("dropping frame")
		return
	}

	switch b := buf.(type) {
	case *SHMExportedBuffer:
		r.producer.ReleaseSHMExportedBuffer(b)
	default:
		r.producer.ReleaseBuffer(b.ResourceID())
	}
	r.stats.released.Inc()
	r.stats.presented.Inc()
	r.producer.FrameComplete()
}

func (r *GlesRenderer) destroyResource(ResourceID) {}

func (r *GlesRenderer) Destroy() {
	log.Info().Object("stats", r.stats.Snapshot()).Str("renderer", r.Name()).Msg("renderer destroyed")
}
