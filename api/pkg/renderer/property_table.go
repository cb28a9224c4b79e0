package renderer

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/kms"
)

type objectKey struct {
	id  uint32
	typ uint32
}

// PropertyTable caches property name to id mappings of KMS objects. Each object is
// queried once and the result reused for every atomic commit.
type PropertyTable struct {
	dev     KMS
	objects map[objectKey]map[string]uint32
}

func NewPropertyTable(dev KMS) *PropertyTable {
	return &PropertyTable{dev: dev, objects: make(map[objectKey]map[string]uint32)}
}

// Resolve returns the property ids of an object, querying the kernel on first use.
// The returned map must not be modified.
func (t *PropertyTable) Resolve(objectID, objectType uint32) (map[string]uint32, error) {
	key := objectKey{id: objectID, typ: objectType}
	if props, ok := t.objects[key]; ok {
		return props, nil
	}

	list, err := t.dev.ObjectProperties(objectID, objectType)
	if err != nil {
		return nil, fmt.Errorf("get properties of %s %d: %w", objectTypeName(objectType), objectID, err)
	}
	props := make(map[string]uint32, len(list))
	for _, p := range list {
		props[p.Name] = p.ID
	}
	t.objects[key] = props

	log.Debug().
		Str("object", objectTypeName(objectType)).
		Uint32("id", objectID).
		Int("properties", len(props)).
		Msg("resolved KMS object properties")
	return props, nil
}

// Add appends name=value for the object to req. An unknown name yields
// ErrUnknownProperty and leaves req untouched.
func (t *PropertyTable) Add(req *drm.AtomicRequest, objectID, objectType uint32, name string, value uint64) error {
	props, err := t.Resolve(objectID, objectType)
	if err != nil {
		return err
	}
	id, ok := props[name]
	if !ok {
		return fmt.Errorf("%w: %s on %s %d", ErrUnknownProperty, name, objectTypeName(objectType), objectID)
	}
	req.Add(objectID, id, value)
	return nil
}

var (
	connectorProperties = []string{"CRTC_ID"}
	crtcProperties      = []string{"MODE_ID", "ACTIVE"}
	planeProperties     = []string{
		"FB_ID", "CRTC_ID",
		"SRC_X", "SRC_Y", "SRC_W", "SRC_H",
		"CRTC_X", "CRTC_Y", "CRTC_W", "CRTC_H",
	}
)

// Validate checks that every property an atomic commit sets exists on the target's
// objects. Missing properties are reported together as ErrUnknownProperty; any
// other error comes from the kernel.
func (t *PropertyTable) Validate(target *kms.DisplayTarget) error {
	checks := []struct {
		id    uint32
		typ   uint32
		names []string
	}{
		{target.ConnectorID, drm.ObjectConnector, connectorProperties},
		{target.CrtcID, drm.ObjectCRTC, crtcProperties},
		{target.PlaneID, drm.ObjectPlane, planeProperties},
	}

	var missing []string
	for _, c := range checks {
		props, err := t.Resolve(c.id, c.typ)
		if err != nil {
			return err
		}
		for _, name := range c.names {
			if _, ok := props[name]; !ok {
				missing = append(missing, objectTypeName(c.typ)+"."+name)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, strings.Join(missing, ", "))
	}
	return nil
}

// Clear forgets every cached object.
func (t *PropertyTable) Clear() {
	clear(t.objects)
}

func objectTypeName(objectType uint32) string {
	switch objectType {
	case drm.ObjectConnector:
		return "connector"
	case drm.ObjectCRTC:
		return "crtc"
	case drm.ObjectPlane:
		return "plane"
	default:
		return fmt.Sprintf("object(0x%08x)", objectType)
	}
}
