package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/helixml/scanout/api/pkg/config"
	"github.com/helixml/scanout/api/pkg/drm"
	"github.com/helixml/scanout/api/pkg/kms"
)

const openRetryDelay = 500 * time.Millisecond

// display is the DRM device the presenter scans out on, either opened directly
// or granted as a lease.
type display struct {
	dev   *drm.Device
	lease *drm.Lease
	// path is a card node on the same GPU, used to allocate producer buffers
	// on a separate file description.
	path string
}

func (d *display) Close() error {
	// A leased device shares its fd with the lease.
	if d.lease != nil {
		return d.lease.Close()
	}
	return d.dev.Close()
}

func retryOptions(ctx context.Context, attempts uint, what string) []retry.Option {
	return []retry.Option{
		retry.Attempts(max(attempts, 1)),
		retry.Delay(openRetryDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Msgf("Failed to %s, retrying", what)
		}),
	}
}

func openDisplay(ctx context.Context, cfg config.DRM) (*display, error) {
	if cfg.LeaseSocket != "" {
		return leaseDisplay(ctx, cfg)
	}

	path := cfg.Device
	if path == "" && cfg.WaitForDevice {
		found, err := kms.WaitForDevice(ctx, cfg.DeviceDir)
		if err != nil {
			return nil, fmt.Errorf("failed to wait for a DRM device: %w", err)
		}
		path = found
	}

	dev, err := retry.DoWithData(func() (*drm.Device, error) {
		if path != "" {
			return drm.Open(path)
		}
		return kms.FindDevice(cfg.DeviceDir)
	}, retryOptions(ctx, cfg.OpenAttempts, "open DRM device")...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", kms.ErrNoDevice, err)
	}

	if err := dev.SetMaster(); err != nil {
		log.Debug().Err(err).Str("path", dev.Path()).Msg("Could not become DRM master, assuming already master")
	}
	log.Info().Str("path", dev.Path()).Msg("Opened DRM device")
	return &display{dev: dev, path: dev.Path()}, nil
}

func leaseDisplay(ctx context.Context, cfg config.DRM) (*display, error) {
	client := drm.NewLeaseClient(cfg.LeaseSocket)
	lease, err := retry.DoWithData(func() (*drm.Lease, error) {
		return client.RequestLease(ctx, cfg.LeaseWidth, cfg.LeaseHeight)
	}, retryOptions(ctx, cfg.OpenAttempts, "acquire DRM lease")...)
	if err != nil {
		return nil, fmt.Errorf("%w: lease from %s: %w", kms.ErrNoDevice, cfg.LeaseSocket, err)
	}

	log.Info().
		Str("socket", cfg.LeaseSocket).
		Uint32("scanout_id", lease.ScanoutID).
		Str("connector", lease.ConnectorName).
		Msg("Acquired DRM lease")

	path := cfg.Device
	if path == "" {
		if nodes, err := kms.CardNodes(cfg.DeviceDir); err == nil && len(nodes) > 0 {
			path = nodes[0]
		}
	}
	return &display{dev: lease.Device(), lease: lease, path: path}, nil
}

var errNoAllocatorNode = errors.New("no card node to allocate producer buffers on")

// openAllocator opens a second file description on the display's GPU. GEM
// handles are per file description, so the producer's buffers and the
// renderer's imports never share a handle.
func (d *display) openAllocator() (*drm.Device, error) {
	if d.path == "" {
		return nil, errNoAllocatorNode
	}
	return drm.Open(d.path)
}
