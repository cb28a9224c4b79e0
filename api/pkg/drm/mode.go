package drm

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Capabilities queried with GetCap.
const (
	CapDumbBuffer      = 0x1
	CapPrime           = 0x5
	CapAddFB2Modifiers = 0x10
)

// Client capabilities negotiated with SetClientCap.
const (
	ClientCapUniversalPlanes = 2
	ClientCapAtomic          = 3
)

const (
	PrimeCapImport = 0x1
	PrimeCapExport = 0x2
)

// Flags for AddFB2, PageFlip and AtomicCommit.
const (
	FBModifiers = 1 << 1

	PageFlipEvent = 0x01
	PageFlipAsync = 0x02

	AtomicTestOnly     = 0x0100
	AtomicNonblock     = 0x0200
	AtomicAllowModeset = 0x0400
)

// KMS object types used by ObjectProperties.
const (
	ObjectCRTC      = 0xcccccccc
	ObjectConnector = 0xc0c0c0c0
	ObjectEncoder   = 0xe0e0e0e0
	ObjectMode      = 0xdededede
	ObjectProperty  = 0xb0b0b0b0
	ObjectFB        = 0xfbfbfbfb
	ObjectBlob      = 0xbbbbbbbb
	ObjectPlane     = 0xeeeeeeee
)

// Values of the plane "type" property.
const (
	PlaneTypeOverlay = 0
	PlaneTypePrimary = 1
	PlaneTypeCursor  = 2
)

const (
	ModeTypePreferred = 1 << 3
	ModeTypeDefault   = 1 << 4
	ModeTypeUserdef   = 1 << 5
	ModeTypeDriver    = 1 << 6
)

// Connection status values for Connector.Connection.
const (
	Connected         = 1
	Disconnected      = 2
	UnknownConnection = 3
)

// O_CLOEXEC for PrimeHandleToFD.
const (
	primeCloexec = 0x80000
	primeRdwr    = 0x2
)

const (
	modeNameLen = 32
	propNameLen = 32
)

// ModeInfo mirrors struct drm_mode_modeinfo (68 bytes).
type ModeInfo struct {
	Clock      uint32
	Hdisplay   uint16
	HsyncStart uint16
	HsyncEnd   uint16
	Htotal     uint16
	Hskew      uint16
	Vdisplay   uint16
	VsyncStart uint16
	VsyncEnd   uint16
	Vtotal     uint16
	Vscan      uint16
	Vrefresh   uint32
	Flags      uint32
	Type       uint32
	NameBytes  [modeNameLen]byte
}

func (m ModeInfo) Name() string {
	return cString(m.NameBytes[:])
}

func (m ModeInfo) IsPreferred() bool {
	return m.Type&ModeTypePreferred != 0
}

// Area is used to rank modes when no preferred mode is advertised.
func (m ModeInfo) Area() int {
	return int(m.Hdisplay) * int(m.Vdisplay)
}

// Bytes returns the kernel representation, suitable for a MODE_ID property blob.
func (m ModeInfo) Bytes() []byte {
	var buf bytes.Buffer
	buf.Grow(68)
	_ = binary.Write(&buf, binary.NativeEndian, m)
	return buf.Bytes()
}

func (m ModeInfo) String() string {
	return fmt.Sprintf("%s@%d", m.Name(), m.Vrefresh)
}

// Resources is the result of MODE_GETRESOURCES.
type Resources struct {
	Framebuffers []uint32
	Crtcs        []uint32
	Connectors   []uint32
	Encoders     []uint32
	MinWidth     uint32
	MaxWidth     uint32
	MinHeight    uint32
	MaxHeight    uint32
}

// CrtcIndex returns the position of crtcID in the resource list, which is the bit
// used by encoder and plane possible_crtcs masks.
func (r *Resources) CrtcIndex(crtcID uint32) (int, bool) {
	for i, id := range r.Crtcs {
		if id == crtcID {
			return i, true
		}
	}
	return -1, false
}

type Connector struct {
	ID         uint32
	EncoderID  uint32
	Type       uint32
	TypeID     uint32
	Connection uint32
	MmWidth    uint32
	MmHeight   uint32
	Subpixel   uint32
	Modes      []ModeInfo
	Encoders   []uint32
}

func (c *Connector) Name() string {
	return fmt.Sprintf("%s-%d", ConnectorTypeName(c.Type), c.TypeID)
}

type Encoder struct {
	ID             uint32
	Type           uint32
	CrtcID         uint32
	PossibleCrtcs  uint32
	PossibleClones uint32
}

type Crtc struct {
	ID        uint32
	FbID      uint32
	X, Y      uint32
	GammaSize uint32
	ModeValid bool
	Mode      ModeInfo
}

type Plane struct {
	ID            uint32
	CrtcID        uint32
	FbID          uint32
	PossibleCrtcs uint32
	GammaSize     uint32
	Formats       []uint32
}

// Property is one entry of an object's property set, with its current value.
type Property struct {
	ID    uint32
	Name  string
	Flags uint32
	Value uint64
}

// FramebufferCmd describes a framebuffer for AddFB2.
type FramebufferCmd struct {
	Width     uint32
	Height    uint32
	Format    uint32
	Flags     uint32
	Handles   [4]uint32
	Pitches   [4]uint32
	Offsets   [4]uint32
	Modifiers [4]uint64
}

// DumbBuffer is a driver-agnostic, CPU-mappable buffer.
type DumbBuffer struct {
	Handle uint32
	Pitch  uint32
	Size   uint64
}

var connectorTypeNames = []string{
	"Unknown", "VGA", "DVI-I", "DVI-D", "DVI-A", "Composite", "SVIDEO", "LVDS",
	"Component", "DIN", "DP", "HDMI-A", "HDMI-B", "TV", "eDP", "Virtual", "DSI",
	"DPI", "Writeback", "SPI", "USB",
}

func ConnectorTypeName(t uint32) string {
	if int(t) < len(connectorTypeNames) {
		return connectorTypeNames[t]
	}
	return fmt.Sprintf("type%d", t)
}

func ConnectionName(c uint32) string {
	switch c {
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
