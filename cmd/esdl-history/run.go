package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/mapeditor/esdlcore"
	"github.com/mapeditor/esdlcore/internal/metrics"
	"github.com/mapeditor/esdlcore/internal/session"
	"github.com/mapeditor/esdlcore/tracker"
	"github.com/mapeditor/esdlcore/undo"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Apply a script and print the undo history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return runScript(cmd.OutOrStdout(), f, root)
		},
	}
}

func runScript(out io.Writer, r io.Reader, root *rootOptions) error {
	script, err := session.ParseScript(r)
	if err != nil {
		return err
	}
	cfg := root.cfg

	stackOpts := []undo.Option{undo.WithLimit(cfg.History.Limit)}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		stackOpts = append(stackOpts, undo.WithMetrics(metrics.NewHistory(reg)))
	}

	sessOpts := []session.Option{
		session.WithLogger(root.logger),
		session.WithCombine(cfg.History.Combine),
		session.WithRegistry(tracker.NewRegistry(
			tracker.WithLogger(root.logger),
			tracker.WithStackOptions(stackOpts...),
		)),
	}
	if cfg.History.RegenerateIDs {
		sessOpts = append(sessOpts, session.WithCopyOptions(esdlcore.RegenerateIDs("id")))
	}

	s, err := session.New(script, sessOpts...)
	if err != nil {
		return err
	}
	defer s.Close()

	runErr := s.Run()
	printHistory(out, s.History())
	if reg != nil {
		if err := printMetrics(out, reg); err != nil {
			return err
		}
	}
	return runErr
}

func printHistory(w io.Writer, entries []session.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "history is empty")
		return
	}
	for i, e := range entries {
		mark := " "
		if e.Done {
			mark = "*"
		}
		label := e.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "%s %2d %-8s %s\n", mark, i+1, e.Kind, label)
	}
}

func printMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}
	return nil
}
