// Package cli wires the checker into a cobra command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/check"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/config"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/fetch"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/geodata"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/logger"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/metrics"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/report"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/storage"
	"github.com/ritascarlet/offteam-geofiles-runetfreedom/pkg/version"
)

// ErrChecksFailed is returned when at least one file did not pass.
var ErrChecksFailed = errors.New("geodata checks failed")

// Execute runs the command line with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return ExecuteFs(ctx, afero.NewOsFs(), args, stdout, stderr)
}

// ExecuteFs is Execute on an explicit filesystem.
func ExecuteFs(ctx context.Context, fs afero.Fs, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(fs)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrChecksFailed) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// NewRootCommand builds the geodata-check command tree.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:   "geodata-check",
		Short: "Validate geosite/geoip data files before release",
		Long: `geodata-check downloads geosite.dat and geoip.dat style files, decodes the
tags they carry and verifies every required tag from the rules file is present.

Without --output-dir the run is a pass/fail gate and nothing is kept.
With --output-dir, files that pass are saved there and files that fail are
removed from it.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, fs)
		},
	}

	flags := root.Flags()
	flags.String("config", "", "Path to the rules file (default: required_rules.json next to the executable)")
	flags.String("output-dir", "", "Directory to save validated files to; empty runs as a gate only")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-file", "stderr", "Log destination: stderr, stdout or a file path")
	flags.Duration("timeout", config.DefaultTimeout, "Timeout for a single download")
	flags.String("user-agent", "", "User-Agent header for downloads (default: geodata-checker/<version>)")
	flags.Int("retries", 0, "Extra attempts for a failed download")
	flags.String("summary-env", config.DefaultSummaryEnv, "Environment variable naming the CI step summary file")
	flags.String("metrics-file", "", "Write Prometheus metrics to this file")

	root.AddCommand(newVersionCommand(), newSourcesCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "geodata-check %s\n", version.Version)
		},
	}
}

func newSourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the built-in sources a rules file may reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var only geodata.Kind
			if raw, _ := cmd.Flags().GetString("kind"); raw != "" {
				kind, err := geodata.ParseKind(raw)
				if err != nil {
					return err
				}
				only = kind
			}

			ids := make([]string, 0, len(geodata.Catalog))
			for id, def := range geodata.Catalog {
				if only != "" && def.Kind != only {
					continue
				}
				ids = append(ids, id)
			}
			slices.Sort(ids)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SOURCE\tKIND\tURL")
			for _, id := range ids {
				def := geodata.Catalog[id]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", def.ID, def.Kind, def.URL)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String("kind", "", "Only list sources of this kind (geosite or geoip)")
	return cmd
}

func run(cmd *cobra.Command, fs afero.Fs) error {
	settings, err := config.Setup(cmd.Flags())
	if err != nil {
		return err
	}

	prevLog := slog.Default()
	log, closeLog, err := logger.Setup(fs, settings.LogLevel, settings.LogFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		slog.SetDefault(prevLog)
		_ = closeLog()
	}()

	rules, err := config.LoadRules(fs, settings.ConfigPath)
	if err != nil {
		return err
	}
	log.Info("loaded rules",
		"config", settings.ConfigPath,
		"geosite_files", len(rules.ByKind(geodata.KindSite)),
		"geoip_files", len(rules.ByKind(geodata.KindIP)),
	)
	if settings.Publishing() {
		log.Info("validated files will be saved", "output_dir", settings.OutputDir)
	} else {
		log.Info("gate-only run, validated files are not kept")
	}

	ws, err := storage.NewWorkspace(fs, settings.OutputDir, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := ws.Close(); err != nil {
			log.Warn("failed to clean up staging dir", "error", err)
		}
	}()

	reporter := report.NewReporter(cmd.OutOrStdout(), report.SinkFromEnv(fs, settings.SummaryEnv), log)
	observers := []check.Observer{reporter}
	var recorder *metrics.Recorder
	if settings.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		observers = append(observers, recorder)
	}

	downloader := fetch.New(fetch.Options{
		Timeout:   settings.Timeout,
		UserAgent: settings.UserAgent,
		Retries:   settings.Retries,
		Fs:        fs,
		Log:       log,
	})
	validator := check.NewValidator(downloader, ws, log, observers...)

	start := time.Now()
	rep := validator.Run(cmd.Context(), rules)
	reporter.Summary(rep, ws.Published(), settings.OutputDir)
	log.Debug("check run timing", "elapsed", time.Since(start))

	if recorder != nil {
		writeMetrics(recorder, settings.MetricsFile, log)
	}

	if !rep.AllOK() {
		return fmt.Errorf("%w: %d of %d files", ErrChecksFailed, len(rep.Results)-rep.Count(check.StatusOK), len(rep.Results))
	}
	return nil
}

func writeMetrics(recorder *metrics.Recorder, path string, log *slog.Logger) {
	if err := recorder.WriteTextfile(path); err != nil {
		log.Warn("failed to write metrics", "error", err)
		return
	}
	log.Debug("metrics written", "path", path)
}
