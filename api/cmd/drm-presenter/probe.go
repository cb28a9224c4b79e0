package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/helixml/scanout/api/pkg/kms"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "List connectors, CRTCs, planes and the display target that would be used",
		RunE: func(cmd *cobra.Command, _ []string) error {
			disp, err := openDisplay(cmd.Context(), opts.cfg.DRM)
			if err != nil {
				return err
			}
			defer disp.Close()

			report, err := kms.Describe(disp.dev)
			if err != nil {
				return fmt.Errorf("failed to describe device: %w", err)
			}
			out := cmd.OutOrStdout()
			printReport(out, report)

			target, err := kms.SelectTarget(disp.dev, opts.cfg.TargetOptions())
			if err != nil {
				log.Warn().Err(err).Msg("No usable display target")
				return nil
			}
			printTarget(out, target)
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newTable(w io.Writer, header ...any) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(header...)
	return table
}

func printReport(w io.Writer, r *kms.Report) {
	fmt.Fprintf(w, "dumb buffers: %s  prime: %s  fb modifiers: %s  framebuffer size: %dx%d..%dx%d\n\n",
		yesNo(r.DumbBuffers), yesNo(r.Prime), yesNo(r.FBModifiers), r.MinWidth, r.MinHeight, r.MaxWidth, r.MaxHeight)

	connectors := newTable(w, "Connector", "Name", "Status", "Encoder", "Size (mm)", "Modes")
	for _, c := range r.Connectors {
		modes := make([]string, 0, len(c.Modes))
		for _, m := range c.Modes {
			name := m.String()
			if m.IsPreferred() {
				name += "*"
			}
			modes = append(modes, name)
		}
		connectors.Append([]string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.Name,
			c.Status,
			strconv.FormatUint(uint64(c.EncoderID), 10),
			fmt.Sprintf("%dx%d", c.MmWidth, c.MmHeight),
			strings.Join(modes, " "),
		})
	}
	connectors.Render()
	fmt.Fprintln(w)

	crtcs := newTable(w, "CRTC", "Index", "Active", "FB", "Mode")
	for _, c := range r.Crtcs {
		mode := "-"
		if c.Active {
			mode = c.Mode.String()
		}
		crtcs.Append([]string{
			strconv.FormatUint(uint64(c.ID), 10),
			strconv.Itoa(c.Index),
			yesNo(c.Active),
			strconv.FormatUint(uint64(c.FbID), 10),
			mode,
		})
	}
	crtcs.Render()
	fmt.Fprintln(w)

	planes := newTable(w, "Plane", "Type", "CRTC", "Possible CRTCs", "Formats")
	for _, p := range r.Planes {
		planes.Append([]string{
			strconv.FormatUint(uint64(p.ID), 10),
			p.Type,
			strconv.FormatUint(uint64(p.CrtcID), 10),
			fmt.Sprintf("%#b", p.PossibleCrtcs),
			strings.Join(p.Formats, " "),
		})
	}
	planes.Render()
}

func printTarget(w io.Writer, t *kms.DisplayTarget) {
	commit := "legacy"
	if t.Atomic {
		commit = "atomic"
	}
	frame := uint64(t.Width()) * uint64(t.Height()) * 4
	fmt.Fprintf(w, "\nselected: %s %s on crtc %d (index %d), plane %d, %s commits, %s per XRGB8888 frame\n",
		t.ConnectorName, t.Mode, t.CrtcID, t.CrtcIndex, t.PlaneID, commit, humanize.IBytes(frame))
}
