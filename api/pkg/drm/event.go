package drm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Event types delivered by read(2) on the device fd.
const (
	EventVblank       = 0x01
	EventFlipComplete = 0x02
	EventCrtcSequence = 0x03
)

const (
	eventHeaderSize = 8
	vblankEventSize = 32
)

// ErrMalformedEvent is returned when the event stream contains a truncated record.
var ErrMalformedEvent = errors.New("malformed drm event")

// Event is a decoded struct drm_event_vblank, used for both vblank and page-flip
// completion.
type Event struct {
	Type     uint32
	UserData uint64
	Sec      uint32
	Usec     uint32
	Sequence uint32
	CrtcID   uint32
}

// Timestamp is the vblank time reported by the kernel on CLOCK_MONOTONIC.
func (e Event) Timestamp() time.Duration {
	return time.Duration(e.Sec)*time.Second + time.Duration(e.Usec)*time.Microsecond
}

// ParseEvents decodes every complete record in buf. Records of unknown type are
// skipped. Decoding stops at the first record whose length is inconsistent with
// the buffer, returning the events decoded so far with ErrMalformedEvent.
func ParseEvents(buf []byte) ([]Event, error) {
	var events []Event
	for off := 0; off < len(buf); {
		if len(buf)-off < eventHeaderSize {
			return events, fmt.Errorf("%w: %d trailing bytes", ErrMalformedEvent, len(buf)-off)
		}
		typ := binary.NativeEndian.Uint32(buf[off:])
		length := int(binary.NativeEndian.Uint32(buf[off+4:]))
		if length < eventHeaderSize || off+length > len(buf) {
			return events, fmt.Errorf("%w: record length %d at offset %d", ErrMalformedEvent, length, off)
		}

		rec := buf[off : off+length]
		off += length

		switch typ {
		case EventVblank, EventFlipComplete:
			if len(rec) < vblankEventSize {
				return events, fmt.Errorf("%w: short vblank record (%d bytes)", ErrMalformedEvent, len(rec))
			}
			events = append(events, Event{
				Type:     typ,
				UserData: binary.NativeEndian.Uint64(rec[8:]),
				Sec:      binary.NativeEndian.Uint32(rec[16:]),
				Usec:     binary.NativeEndian.Uint32(rec[20:]),
				Sequence: binary.NativeEndian.Uint32(rec[24:]),
				CrtcID:   binary.NativeEndian.Uint32(rec[28:]),
			})
		}
	}
	return events, nil
}

// MarshalEvent encodes e in the kernel's drm_event_vblank layout.
func MarshalEvent(e Event) []byte {
	rec := make([]byte, vblankEventSize)
	binary.NativeEndian.PutUint32(rec[0:], e.Type)
	binary.NativeEndian.PutUint32(rec[4:], vblankEventSize)
	binary.NativeEndian.PutUint64(rec[8:], e.UserData)
	binary.NativeEndian.PutUint32(rec[16:], e.Sec)
	binary.NativeEndian.PutUint32(rec[20:], e.Usec)
	binary.NativeEndian.PutUint32(rec[24:], e.Sequence)
	binary.NativeEndian.PutUint32(rec[28:], e.CrtcID)
	return rec
}
