package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

type session struct {
	load  Loader
	flags GlobalFlags
	app   *App
}

func (s *session) App() *App { return s.app }

// NewRootCmd assembles the command tree. Every subcommand obtains its App
// from load before running and closes it afterwards.
func NewRootCmd(load Loader) *cobra.Command {
	s := &session{load: load}
	root := &cobra.Command{
		Use:           "laberaer",
		Short:         "Lab records: strains, members, duty roster, media and theses",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s.flags.Stderr = cmd.ErrOrStderr()
			app, err := s.load(cmd.Context(), s.flags)
			if err != nil {
				return err
			}
			s.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if s.app == nil {
				return nil
			}
			if s.flags.Metrics {
				if err := writeMetrics(cmd.ErrOrStderr(), s.app); err != nil {
					return err
				}
			}
			err := s.app.Close()
			s.app = nil
			return err
		},
	}
	root.PersistentFlags().BoolVar(&s.flags.Trace, "trace", false, "Write store operation spans to stderr as JSON lines")
	root.PersistentFlags().BoolVar(&s.flags.Metrics, "metrics", false, "Print store operation totals to stderr on exit")
	root.PersistentFlags().StringVar(&s.flags.MetricsFormat, "metrics-format", "json", "Metrics output: json or prom")

	root.AddCommand(exportCmd(s))
	root.AddCommand(templateCmd(s))
	root.AddCommand(importCmd(s))
	root.AddCommand(filesCmd(s))
	root.AddCommand(dutyCmd(s))
	root.AddCommand(strainsCmd(s))
	root.AddCommand(findCmd(s))
	root.AddCommand(auditCmd(s))
	root.AddCommand(actorsCmd(s))
	return root
}

func writeMetrics(w io.Writer, app *App) error {
	switch {
	case app.Registry != nil:
		families, err := app.Registry.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
				return fmt.Errorf("write metrics: %w", err)
			}
		}
	case app.Metrics != nil:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(app.Metrics.Snapshot()); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
