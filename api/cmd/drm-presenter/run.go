package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"

	"github.com/helixml/scanout/api/pkg/config"
	"github.com/helixml/scanout/api/pkg/eventloop"
	"github.com/helixml/scanout/api/pkg/gbm"
	"github.com/helixml/scanout/api/pkg/kms"
	"github.com/helixml/scanout/api/pkg/producer"
	"github.com/helixml/scanout/api/pkg/renderer"
)

const statsInterval = 10 * time.Second

func newRunCmd(opts *rootOptions) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Present a test pattern until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runPresenter(ctx, &opts.cfg)
		},
	}

	runCmd.Flags().String("renderer", "", "Renderer: modeset or gles (env: DRM_RENDERER)")
	runCmd.Flags().Int("rotation", 0, "Display rotation in degrees (env: DRM_ROTATION)")
	runCmd.Flags().String("producer", "", "Test pattern buffers: shm or dmabuf (env: PRODUCER_KIND)")
	runCmd.Flags().Int("frames", 0, "Stop after this many frames, 0 runs until interrupted (env: PRODUCER_FRAMES)")
	return runCmd
}

func runPresenter(ctx context.Context, cfg *config.PresenterConfig) error {
	disp, err := openDisplay(ctx, cfg.DRM)
	if err != nil {
		return err
	}
	defer disp.Close()

	target, err := kms.SelectTarget(disp.dev, cfg.TargetOptions())
	if err != nil {
		return fmt.Errorf("failed to select display target: %w", err)
	}
	log.Info().
		Str("connector", target.ConnectorName).
		Str("mode", target.Mode.String()).
		Uint32("crtc_id", target.CrtcID).
		Uint32("plane_id", target.PlaneID).
		Bool("atomic", target.Atomic).
		Float64("device_scale_factor", cfg.DRM.DeviceScaleFactor).
		Msg("Selected display target")

	buffers, err := gbm.New(disp.dev)
	if err != nil {
		return fmt.Errorf("%w: %w", renderer.ErrBufferManager, err)
	}

	loop, err := eventloop.New()
	if err != nil {
		return err
	}
	defer loop.Close()

	kind, _ := renderer.ParseKind(cfg.DRM.Renderer)
	r, err := renderer.New(renderer.Options{Kind: kind, FlipDrainTimeout: cfg.DRM.FlipDrainTimeout}, renderer.Deps{
		KMS:     disp.dev,
		Buffers: buffers,
		Loop:    loop,
		Target:  target,
	})
	if err != nil {
		return err
	}
	// Destroy is idempotent; this covers the error paths below.
	defer r.Destroy()

	if err := r.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize %s renderer: %w", r.Name(), err)
	}
	rotation, _ := renderer.ParseRotation(cfg.DRM.Rotation)
	if !r.SetRotation(rotation) {
		log.Warn().Int("rotation", int(rotation)).Str("renderer", r.Name()).Msg("Rotation not supported, using 0")
		r.SetRotation(renderer.Rotate0)
	}

	exp, err := r.CreateExportable(target.Width(), target.Height())
	if err != nil {
		return err
	}
	prod, closeProducer, err := newProducer(disp, exp, cfg.Producer)
	if err != nil {
		return err
	}
	defer closeProducer()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	p := pool.New().WithContext(runCtx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		return loop.Run(ctx)
	})
	p.Go(func(ctx context.Context) error {
		// A finite run ends the loop once the last frame is done.
		defer cancel()
		if err := prod.Run(ctx); err != nil {
			return err
		}
		return prod.DestroyResources()
	})
	p.Go(func(ctx context.Context) error {
		logStats(ctx, r, statsInterval)
		return nil
	})
	err = p.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, eventloop.ErrClosed) {
		err = nil
	}

	// The loop has stopped, so the renderer can be torn down from here.
	r.Destroy()
	stats := r.Stats()
	log.Info().
		EmbedObject(stats).
		Str("elapsed", humanize.RelTime(start, time.Now(), "", "")).
		Int("frames_submitted", prod.Submitted()).
		Msg("Presenter stopped")
	return err
}

// newProducer builds the test pattern producer. The returned func frees its
// buffers and must run after the renderer has been destroyed.
func newProducer(disp *display, exp *renderer.Exportable, cfg config.Producer) (*producer.Producer, func(), error) {
	kind, _ := producer.ParseKind(cfg.Kind)
	width, height := exp.Size()
	opts := producer.Options{Kind: kind, Buffers: cfg.Buffers, Frames: cfg.Frames}

	if kind != producer.KindDMABuf {
		prod, err := producer.New(exp, width, height, opts, nil)
		if err != nil {
			return nil, nil, err
		}
		return prod, func() { logClose("producer", prod.Close()) }, nil
	}

	allocDev, err := disp.openAllocator()
	if err != nil {
		return nil, nil, fmt.Errorf("dma-buf producer: %w", err)
	}
	alloc, err := gbm.New(allocDev)
	if err != nil {
		allocDev.Close()
		return nil, nil, fmt.Errorf("dma-buf producer: %w", err)
	}
	prod, err := producer.New(exp, width, height, opts, alloc)
	if err != nil {
		allocDev.Close()
		return nil, nil, err
	}
	return prod, func() {
		logClose("producer", prod.Close())
		logClose("allocator device", allocDev.Close())
	}, nil
}

func logClose(what string, err error) {
	if err != nil {
		log.Warn().Err(err).Msgf("Failed to close %s", what)
	}
}

func logStats(ctx context.Context, r renderer.Renderer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := r.Stats()
			fps := float64(stats.Presented-last) / interval.Seconds()
			last = stats.Presented
			log.Info().
				EmbedObject(stats).
				Str("rate", humanize.FtoaWithDigits(fps, 1)+" fps").
				Msg("Presentation stats")
		}
	}
}
