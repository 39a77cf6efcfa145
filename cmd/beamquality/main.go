package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ja7ad/beamquality/pkg/beamquality"
	"github.com/ja7ad/beamquality/pkg/config"
	"github.com/ja7ad/beamquality/pkg/report"
	"github.com/ja7ad/beamquality/pkg/store"
)

type opts struct {
	configPath string
	qualities  []string
	workers    int
	pretty     bool
	logLevel   string

	// outputs
	csvPath  string
	jsonPath string
	htmlPath string
	dbPath   string
}

func main() {
	var o opts

	root := &cobra.Command{
		Use:   "beamquality --config run.yaml [--quality ID]...",
		Short: "X-ray beam quality evaluation",
		Long: `The beamquality tool evaluates X-ray reference radiation qualities from
fluence spectra: mean energy, first and second half-value layers and the
kerma-weighted mean conversion coefficient. Coefficients are interpolated
log-log with an Akima spline; HVLs are solved on the air-kerma transmission
curve of the spectrum.

Results are compared against every reference source configured for a
quality (for example the ISO 4037-1 tables or a spectrum generator's
characteristics file) as (1 - computed/reference) in percent.

Examples:
  beamquality --config iso4037.yaml
  beamquality --config iso4037.yaml --quality N60 --quality N80 --csv out/n.csv
  beamquality --config iso4037.yaml --db runs.db --html report.html`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(o.logLevel); err != nil {
				return err
			}
			return run(cmd.Context(), o)
		},
	}

	root.Flags().StringVarP(&o.configPath, "config", "c", "", "run configuration file (YAML)")
	root.Flags().StringSliceVarP(&o.qualities, "quality", "q", nil, "evaluate only these quality ids (repeatable)")
	root.Flags().IntVarP(&o.workers, "workers", "w", 0, "concurrent evaluations (0 = value from config)")
	root.Flags().BoolVar(&o.pretty, "pretty", true, "format output as a table instead of CSV")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	root.Flags().StringVar(&o.csvPath, "csv", "", "write results to CSV file")
	root.Flags().StringVar(&o.jsonPath, "json", "", "write results to JSON file")
	root.Flags().StringVar(&o.htmlPath, "html", "", "write results to HTML file")
	root.PersistentFlags().StringVar(&o.dbPath, "db", "", "archive results in this SQLite database")
	_ = root.MarkFlagRequired("config")

	root.AddCommand(runsCommand(&o))

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func run(ctx context.Context, o opts) error {
	if o.workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if cfg, err = cfg.Select(o.qualities...); err != nil {
		return err
	}

	inputs, failures, err := cfg.Inputs(slog.Default())
	if err != nil {
		return err
	}
	refs, err := cfg.References()
	if err != nil {
		return err
	}

	workers := cfg.Workers
	if o.workers > 0 {
		workers = o.workers
	}

	// Ctrl-C handling
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	ev := beamquality.New(&beamquality.Config{Solver: cfg.Solver}, slog.Default())
	outcomes := ev.EvaluateAll(ctx, inputs, workers)
	slog.Debug("evaluation done", "qualities", len(inputs), "took", time.Since(start))

	recs := collect(cfg, outcomes, failures, refs)

	out := io.Writer(os.Stdout)
	if o.pretty {
		fmt.Fprintf(out, _console, o.configPath, start.Format("2006-01-02 15:04:05"))
		err = report.WriteTable(out, recs)
	} else {
		err = report.WriteCSV(out, recs)
	}
	if err != nil {
		return err
	}

	var runID string
	if o.dbPath != "" {
		if runID, err = archive(o.dbPath, o.configPath, start, recs); err != nil {
			slog.Error("archive results", "db", o.dbPath, "err", err)
		} else {
			slog.Info("results archived", "db", o.dbPath, "run", runID)
		}
	}

	writeFile(o.csvPath, func(w io.Writer) error { return report.WriteCSV(w, recs) })
	writeFile(o.jsonPath, func(w io.Writer) error { return report.WriteJSON(w, recs) })
	writeFile(o.htmlPath, func(w io.Writer) error {
		return report.WriteHTML(w, report.Meta{RunID: runID, Generated: start, Config: o.configPath}, recs)
	})

	failed := 0
	for _, r := range recs {
		if r.Error != "" {
			failed++
		}
	}
	if o.pretty {
		fmt.Fprintf(out, "\n%d qualities, %d failed\n", len(recs), failed)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d qualities failed", failed, len(recs))
	}
	return nil
}

// collect orders records as the qualities appear in cfg.
func collect(cfg *config.Config, outcomes []beamquality.Outcome, failures []config.Failure, refs config.ReferenceSet) []report.Record {
	byID := make(map[string]report.Record, len(cfg.Qualities))
	for _, oc := range outcomes {
		byID[oc.QualityID] = oc.Record()
	}
	for _, f := range failures {
		rec := report.Failed(f.QualityID, f.Err)
		rec.Material = f.Material
		byID[f.QualityID] = rec
	}

	recs := make([]report.Record, 0, len(cfg.Qualities))
	for _, q := range cfg.Qualities {
		rec, ok := byID[q.ID]
		if !ok {
			continue
		}
		recs = append(recs, rec.WithReferences(refs.For(q.ID)))
	}
	return recs
}

func archive(dbPath, configPath string, created time.Time, recs []report.Record) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return "", err
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return "", err
	}
	defer db.Close()
	return db.SaveRun(store.Run{Created: created, Config: configPath, Records: recs})
}

// writeFile creates path and fills it with write. Failures are logged; an
// empty path is a no-op.
func writeFile(path string, write func(io.Writer) error) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		slog.Error("create output dir", "path", path, "err", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		slog.Error("create output", "path", path, "err", err)
		return
	}
	err = write(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		slog.Error("write output", "path", path, "err", err)
		return
	}
	slog.Debug("output written", "path", path)
}

func runsCommand(o *opts) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setupLogging(o.logLevel); err != nil {
				return err
			}
			if o.dbPath == "" {
				return errors.New("--db is required")
			}
			db, err := store.Open(o.dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.Runs(limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tQUALITIES\tCONFIG")
			fmt.Fprintln(tw, "---\t-------\t---------\t------")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, humanize.Time(r.Created),
					humanize.Comma(int64(r.Count)), strings.TrimSpace(r.Config))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to list (0 = all)")
	return cmd
}

const _console = `Beamquality - X-ray Beam Quality Evaluation
Config: %s
Beam quality report as of %s:

`
