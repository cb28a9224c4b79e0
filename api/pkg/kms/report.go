package kms

import (
	"fmt"

	"github.com/helixml/scanout/api/pkg/drm"
)

// Report is a snapshot of a device's modesetting objects.
type Report struct {
	DumbBuffers bool
	Prime       bool
	FBModifiers bool
	MinWidth    uint32
	MaxWidth    uint32
	MinHeight   uint32
	MaxHeight   uint32
	Connectors  []ConnectorReport
	Crtcs       []CrtcReport
	Planes      []PlaneReport
}

type ConnectorReport struct {
	ID        uint32
	Name      string
	Status    string
	EncoderID uint32
	MmWidth   uint32
	MmHeight  uint32
	Modes     []drm.ModeInfo
}

type CrtcReport struct {
	ID     uint32
	Index  int
	FbID   uint32
	Active bool
	Mode   drm.ModeInfo
}

type PlaneReport struct {
	ID            uint32
	Type          string
	CrtcID        uint32
	PossibleCrtcs uint32
	Formats       []string
}

// Describe enumerates the device without changing any state.
func Describe(dev Device) (*Report, error) {
	res, err := dev.GetResources()
	if err != nil {
		return nil, err
	}

	r := &Report{
		MinWidth:  res.MinWidth,
		MaxWidth:  res.MaxWidth,
		MinHeight: res.MinHeight,
		MaxHeight: res.MaxHeight,
	}
	if v, err := dev.GetCap(drm.CapDumbBuffer); err == nil {
		r.DumbBuffers = v != 0
	}
	if v, err := dev.GetCap(drm.CapPrime); err == nil {
		r.Prime = v&(drm.PrimeCapImport|drm.PrimeCapExport) != 0
	}
	if v, err := dev.GetCap(drm.CapAddFB2Modifiers); err == nil {
		r.FBModifiers = v != 0
	}

	for _, id := range res.Connectors {
		conn, err := dev.GetConnector(id)
		if err != nil {
			return nil, err
		}
		r.Connectors = append(r.Connectors, ConnectorReport{
			ID:        conn.ID,
			Name:      conn.Name(),
			Status:    drm.ConnectionName(conn.Connection),
			EncoderID: conn.EncoderID,
			MmWidth:   conn.MmWidth,
			MmHeight:  conn.MmHeight,
			Modes:     conn.Modes,
		})
	}

	for i, id := range res.Crtcs {
		crtc, err := dev.GetCrtc(id)
		if err != nil {
			return nil, err
		}
		r.Crtcs = append(r.Crtcs, CrtcReport{ID: id, Index: i, FbID: crtc.FbID, Active: crtc.ModeValid, Mode: crtc.Mode})
	}

	planes, err := dev.GetPlaneResources()
	if err != nil {
		return nil, err
	}
	for _, id := range planes {
		p, err := dev.GetPlane(id)
		if err != nil {
			return nil, err
		}
		formats := make([]string, 0, len(p.Formats))
		for _, f := range p.Formats {
			formats = append(formats, drm.FormatName(f))
		}
		r.Planes = append(r.Planes, PlaneReport{
			ID:            id,
			Type:          planeTypeName(dev, id),
			CrtcID:        p.CrtcID,
			PossibleCrtcs: p.PossibleCrtcs,
			Formats:       formats,
		})
	}
	return r, nil
}

func planeTypeName(dev Device, id uint32) string {
	typ, ok := PlaneType(dev, id)
	if !ok {
		return "unknown"
	}
	switch typ {
	case drm.PlaneTypePrimary:
		return "primary"
	case drm.PlaneTypeOverlay:
		return "overlay"
	case drm.PlaneTypeCursor:
		return "cursor"
	default:
		return fmt.Sprintf("type%d", typ)
	}
}
