// Package kms picks the connector, CRTC, plane and mode a presenter scans out to.
package kms

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
)

var (
	ErrNoDevice    = errors.New("no usable DRM device")
	ErrNoConnector = errors.New("no connected connector")
	ErrNoMode      = errors.New("no usable video mode")
	ErrNoCRTC      = errors.New("no usable CRTC")
	ErrNoPlane     = errors.New("no plane compatible with CRTC")
)

// Device is the enumeration surface of a DRM device.
type Device interface {
	GetCap(capability uint64) (uint64, error)
	SetClientCap(capability, value uint64) error
	GetResources() (*drm.Resources, error)
	GetConnector(id uint32) (*drm.Connector, error)
	GetEncoder(id uint32) (*drm.Encoder, error)
	GetCrtc(id uint32) (*drm.Crtc, error)
	GetPlaneResources() ([]uint32, error)
	GetPlane(id uint32) (*drm.Plane, error)
	ObjectProperties(objectID, objectType uint32) ([]drm.Property, error)
}

type Size struct {
	Width  uint32
	Height uint32
}

func (s Size) IsZero() bool { return s.Width == 0 && s.Height == 0 }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// ParseModeMax parses a "WxH" bound. The empty string means unbounded.
func ParseModeMax(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Size{}, nil
	}
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Size{}, fmt.Errorf("invalid mode bound %q, want WxH", s)
	}
	width, err := strconv.ParseUint(w, 10, 32)
	if err != nil {
		return Size{}, fmt.Errorf("invalid mode bound width %q: %w", w, err)
	}
	height, err := strconv.ParseUint(h, 10, 32)
	if err != nil {
		return Size{}, fmt.Errorf("invalid mode bound height %q: %w", h, err)
	}
	return Size{Width: uint32(width), Height: uint32(height)}, nil
}

type Options struct {
	// DisableAtomic keeps the device on legacy modesetting even when atomic is available.
	DisableAtomic bool
	// VideoMode restricts the choice to modes with this name, e.g. "1280x720".
	VideoMode string
	// ModeMax excludes modes larger than this in either dimension.
	ModeMax Size
}

// DisplayTarget is the scan-out configuration of one output.
type DisplayTarget struct {
	ConnectorID   uint32
	ConnectorName string
	CrtcID        uint32
	CrtcIndex     int
	PlaneID       uint32
	Mode          drm.ModeInfo
	Atomic        bool
}

func (t *DisplayTarget) Width() uint32  { return uint32(t.Mode.Hdisplay) }
func (t *DisplayTarget) Height() uint32 { return uint32(t.Mode.Vdisplay) }

func (t *DisplayTarget) String() string {
	commit := "legacy"
	if t.Atomic {
		commit = "atomic"
	}
	return fmt.Sprintf("%s %s crtc=%d plane=%d (%s)", t.ConnectorName, t.Mode, t.CrtcID, t.PlaneID, commit)
}

// SelectTarget negotiates client capabilities and picks the first connected
// connector, its mode, CRTC and primary plane.
func SelectTarget(dev Device, opts Options) (*DisplayTarget, error) {
	if err := dev.SetClientCap(drm.ClientCapUniversalPlanes, 1); err != nil {
		log.Warn().Err(err).Msg("universal planes unavailable, primary planes may not be listed")
	}

	atomic := false
	if opts.DisableAtomic {
		log.Info().Msg("atomic modesetting disabled by configuration")
	} else if err := dev.SetClientCap(drm.ClientCapAtomic, 1); err != nil {
		log.Info().Err(err).Msg("atomic modesetting unsupported, using legacy modesetting")
	} else {
		atomic = true
	}

	res, err := dev.GetResources()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	conn, err := findConnector(dev, res)
	if err != nil {
		return nil, err
	}

	mode, ok := ChooseMode(conn.Modes, opts)
	if !ok {
		return nil, fmt.Errorf("%w on %s (filter %q, max %s)", ErrNoMode, conn.Name(), opts.VideoMode, opts.ModeMax)
	}

	crtcID, err := findCrtc(dev, res, conn)
	if err != nil {
		return nil, err
	}
	crtcIndex, ok := res.CrtcIndex(crtcID)
	if !ok {
		return nil, fmt.Errorf("%w: crtc %d not in resources", ErrNoCRTC, crtcID)
	}

	planeID, err := findPlane(dev, crtcIndex)
	if err != nil {
		return nil, err
	}

	t := &DisplayTarget{
		ConnectorID:   conn.ID,
		ConnectorName: conn.Name(),
		CrtcID:        crtcID,
		CrtcIndex:     crtcIndex,
		PlaneID:       planeID,
		Mode:          mode,
		Atomic:        atomic,
	}
	log.Info().
		Str("connector", t.ConnectorName).
		Str("mode", mode.String()).
		Uint32("crtc_id", crtcID).
		Int("crtc_index", crtcIndex).
		Uint32("plane_id", planeID).
		Bool("atomic", atomic).
		Msg("selected display target")
	return t, nil
}

func findConnector(dev Device, res *drm.Resources) (*drm.Connector, error) {
	for _, id := range res.Connectors {
		conn, err := dev.GetConnector(id)
		if err != nil {
			log.Debug().Err(err).Uint32("connector_id", id).Msg("skipping unreadable connector")
			continue
		}
		log.Debug().
			Str("connector", conn.Name()).
			Str("status", drm.ConnectionName(conn.Connection)).
			Int("modes", len(conn.Modes)).
			Msg("connector")
		if conn.Connection == drm.Connected && len(conn.Modes) > 0 {
			return conn, nil
		}
	}
	return nil, ErrNoConnector
}

// ChooseMode returns the first preferred mode passing the filters, or else the
// largest one.
func ChooseMode(modes []drm.ModeInfo, opts Options) (drm.ModeInfo, bool) {
	var best drm.ModeInfo
	found := false
	for _, m := range modes {
		if opts.VideoMode != "" && m.Name() != opts.VideoMode {
			continue
		}
		if !opts.ModeMax.IsZero() && (uint32(m.Hdisplay) > opts.ModeMax.Width || uint32(m.Vdisplay) > opts.ModeMax.Height) {
			continue
		}
		if m.IsPreferred() {
			return m, true
		}
		if !found || m.Area() > best.Area() {
			best, found = m, true
		}
	}
	return best, found
}

func findCrtc(dev Device, res *drm.Resources, conn *drm.Connector) (uint32, error) {
	encoderIDs := conn.Encoders
	if conn.EncoderID != 0 {
		encoderIDs = append([]uint32{conn.EncoderID}, conn.Encoders...)
	}

	for _, id := range encoderIDs {
		enc, err := dev.GetEncoder(id)
		if err != nil {
			log.Debug().Err(err).Uint32("encoder_id", id).Msg("skipping unreadable encoder")
			continue
		}
		if enc.CrtcID != 0 {
			return enc.CrtcID, nil
		}
		for i, crtcID := range res.Crtcs {
			if enc.PossibleCrtcs&(1<<i) != 0 {
				return crtcID, nil
			}
		}
	}
	return 0, fmt.Errorf("%w for %s", ErrNoCRTC, conn.Name())
}

func findPlane(dev Device, crtcIndex int) (uint32, error) {
	ids, err := dev.GetPlaneResources()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrNoPlane, err)
	}

	var fallback uint32
	for _, id := range ids {
		p, err := dev.GetPlane(id)
		if err != nil {
			log.Debug().Err(err).Uint32("plane_id", id).Msg("skipping unreadable plane")
			continue
		}
		if p.PossibleCrtcs&(1<<crtcIndex) == 0 {
			continue
		}
		typ, ok := PlaneType(dev, id)
		if ok && typ == drm.PlaneTypePrimary {
			return id, nil
		}
		if fallback == 0 && (!ok || typ == drm.PlaneTypeOverlay) {
			fallback = id
		}
	}
	if fallback != 0 {
		log.Warn().Uint32("plane_id", fallback).Msg("no primary plane for CRTC, using first compatible plane")
		return fallback, nil
	}
	return 0, fmt.Errorf("%w %d", ErrNoPlane, crtcIndex)
}

// PlaneType reads the "type" property of a plane.
func PlaneType(dev Device, planeID uint32) (uint64, bool) {
	props, err := dev.ObjectProperties(planeID, drm.ObjectPlane)
	if err != nil {
		return 0, false
	}
	for _, p := range props {
		if p.Name == "type" {
			return p.Value, true
		}
	}
	return 0, false
}
