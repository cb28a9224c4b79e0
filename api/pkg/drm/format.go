package drm

import "fmt"

// Pixel formats, encoded as little-endian fourcc codes (drm_fourcc.h).
const (
	FormatXRGB8888 = 0x34325258 // XR24
	FormatARGB8888 = 0x34325241 // AR24
	FormatXBGR8888 = 0x34324258 // XB24
	FormatABGR8888 = 0x34324241 // AB24
	FormatRGB565   = 0x36314752 // RG16
	FormatNV12     = 0x3231564e // NV12
)

// Format modifiers.
const (
	ModifierLinear  uint64 = 0
	ModifierInvalid uint64 = 0x00ffffffffffffff
)

// FourCC builds a format code from its four characters.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// FormatName renders a fourcc as its four characters, e.g. "XR24".
func FormatName(format uint32) string {
	b := []byte{byte(format), byte(format >> 8), byte(format >> 16), byte(format >> 24)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", format)
		}
	}
	return string(b)
}

// BytesPerPixel returns the size of one pixel for single-plane packed formats, or 0.
func BytesPerPixel(format uint32) int {
	switch format {
	case FormatXRGB8888, FormatARGB8888, FormatXBGR8888, FormatABGR8888:
		return 4
	case FormatRGB565:
		return 2
	default:
		return 0
	}
}
