package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFlagsOverEnvironment(t *testing.T) {
	t.Setenv("DRM_RENDERER", "gles")
	t.Setenv("DRM_VIDEO_MODE", "1920x1080")

	opts := &rootOptions{}
	root := newRootCmd()
	run, _, err := root.Find([]string{"run"})
	require.NoError(t, err)
	require.NoError(t, run.ParseFlags([]string{"--renderer", "modeset", "--frames", "10", "--disable-atomic"}))

	require.NoError(t, opts.load(run))
	assert.Equal(t, "modeset", opts.cfg.DRM.Renderer)
	assert.Equal(t, 10, opts.cfg.Producer.Frames)
	assert.True(t, opts.cfg.DRM.DisableAtomicModesetting)
	assert.Equal(t, "1920x1080", opts.cfg.DRM.VideoMode)
	assert.Equal(t, time.Second, opts.cfg.DRM.FlipDrainTimeout)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	t.Setenv("DRM_ROTATION", "45")

	opts := &rootOptions{}
	run, _, err := newRootCmd().Find([]string{"run"})
	require.NoError(t, err)
	assert.ErrorContains(t, opts.load(run), "invalid configuration")
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.NotEmpty(t, out.String())
}
