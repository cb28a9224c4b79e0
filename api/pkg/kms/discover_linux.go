package kms

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/drm"
)

// CardNodes lists the primary DRM nodes in dir in name order.
func CardNodes(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "card[0-9]*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// FindDevice opens the first card node in dir that exposes modesetting resources
// with at least one connector and one CRTC. Render-only and split display/render
// GPUs are skipped that way.
func FindDevice(dir string) (*drm.Device, error) {
	paths, err := CardNodes(dir)
	if err != nil {
		return nil, err
	}
	dev, err := findDevice(paths, func(path string) (candidate, error) {
		return drm.Open(path)
	})
	if err != nil {
		return nil, err
	}
	return dev.(*drm.Device), nil
}

type candidate interface {
	GetResources() (*drm.Resources, error)
	Close() error
}

func findDevice(paths []string, open func(string) (candidate, error)) (candidate, error) {
	for _, path := range paths {
		dev, err := open(path)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("cannot open DRM node")
			continue
		}
		res, err := dev.GetResources()
		if err != nil || len(res.Connectors) == 0 || len(res.Crtcs) == 0 {
			log.Debug().Err(err).Str("path", path).Msg("DRM node has no modesetting resources")
			dev.Close()
			continue
		}
		log.Info().Str("path", path).Int("connectors", len(res.Connectors)).Int("crtcs", len(res.Crtcs)).Msg("using DRM device")
		return dev, nil
	}
	return nil, fmt.Errorf("%w among %d card nodes", ErrNoDevice, len(paths))
}
