// Package laborcli is the laborsuite command line: it parses labor exports,
// folds them into hour series and runs the HTTP API.
package laborcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phillip-england/laborsuite/internal/apiapp"
	"github.com/phillip-england/laborsuite/internal/envutil"
	"github.com/phillip-england/laborsuite/internal/laborreport"
	"github.com/phillip-england/laborsuite/internal/logging"
	"github.com/phillip-england/laborsuite/internal/timeseries"
)

var ErrUsage = errors.New("usage")

// maxParallelFiles bounds how many workbooks are decoded at once.
const maxParallelFiles = 4

type options struct {
	envFile    string
	layoutPath string
}

func Execute(args []string) error {
	root := NewRootCommand(os.Stdout)
	root.SetArgs(args)
	return root.Execute()
}

// NewRootCommand builds the command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "laborsuite",
		Short:         "Weekly labor report parsing and staffing aggregation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "setup" {
				return nil
			}
			if err := envutil.LoadDotEnv(opts.envFile); err != nil {
				return fmt.Errorf("load %s: %w", opts.envFile, err)
			}
			logging.Init(logging.FromEnv())
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError()
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to .env file")
	root.PersistentFlags().StringVar(&opts.layoutPath, "layout", "", "YAML report layout overrides (default: $LAYOUT_PATH)")

	root.AddCommand(
		newSetupCommand(opts),
		newParseCommand(opts),
		newSeriesCommand(opts),
		newServeCommand(opts),
	)
	return root
}

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: laborsuite setup [--env-file .env] [--force]")
	fmt.Fprintln(w, "       laborsuite parse [--layout layout.yaml] FILE...")
	fmt.Fprintln(w, "       laborsuite series [--group-by day|week] [--existing series.json] FILE...")
	fmt.Fprintln(w, "       laborsuite serve")
}

func usageError() error {
	return fmt.Errorf("%w: laborsuite <setup|parse|series|serve> [...]", ErrUsage)
}

func requireFiles(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: %s needs at least one report file", ErrUsage, cmd.Name())
	}
	return nil
}

func newSetupCommand(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Write a starter .env file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]string{
				"API_ADDR":         ":8080",
				"MAX_UPLOAD_BYTES": "33554432",
				"LAYOUT_PATH":      "",
				"LOG_LEVEL":        "info",
				"LOG_FORMAT":       "console",
			}
			if err := envutil.WriteDotEnv(opts.envFile, values, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.envFile)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing env file")
	return cmd
}

func newParseCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse FILE...",
		Short: "Parse labor reports and print them as JSON",
		Args:  requireFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser, err := opts.parser()
			if err != nil {
				return err
			}
			reports, err := parseFiles(parser, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), reports)
		},
	}
}

func newSeriesCommand(opts *options) *cobra.Command {
	var groupBy, existingPath string
	cmd := &cobra.Command{
		Use:   "series FILE...",
		Short: "Fold labor reports into a day or week keyed hour series",
		Args:  requireFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := timeseries.ParseGroupBy(groupBy)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrUsage, err)
			}
			existing, err := readSeries(existingPath)
			if err != nil {
				return err
			}
			parser, err := opts.parser()
			if err != nil {
				return err
			}
			reports, err := parseFiles(parser, args)
			if err != nil {
				return err
			}
			series, err := timeseries.Merge(existing, reports, g)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"groupBy": g,
				"series":  series,
				"points":  series.Points(),
			})
		},
	}
	cmd.Flags().StringVar(&groupBy, "group-by", string(timeseries.ByDay), "bucket size: day or week")
	cmd.Flags().StringVar(&existingPath, "existing", "", "JSON series to accumulate onto")
	return cmd
}

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg := apiapp.DefaultConfigFromEnv()
			if opts.layoutPath != "" {
				cfg.LayoutPath = opts.layoutPath
			}
			if err := apiapp.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

func (o *options) parser() (*laborreport.Parser, error) {
	path := o.layoutPath
	if path == "" {
		path = envutil.OrDefault("LAYOUT_PATH", "")
	}
	layout, err := laborreport.LoadLayout(path)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return laborreport.NewParser(layout), nil
}

type fileResult struct {
	report *laborreport.WeeklyLaborReport
	err    error
}

// parseFiles decodes every file, logging and skipping the ones that fail or
// carry no week-ending date. It only errors when nothing usable was parsed.
func parseFiles(parser *laborreport.Parser, paths []string) ([]*laborreport.WeeklyLaborReport, error) {
	log := logging.Named("parse")
	results := make([]fileResult, len(paths))

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxParallelFiles)
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = parseFile(parser, path)
		}(i, path)
	}
	wg.Wait()

	reports := make([]*laborreport.WeeklyLaborReport, 0, len(paths))
	failed := 0
	for i, res := range results {
		switch {
		case res.err != nil:
			failed++
			log.Warn().Err(res.err).Str("file", paths[i]).Msg("report decode failed")
		case !res.report.Usable():
			log.Info().Str("file", paths[i]).Msg("report skipped: week ending not found")
		default:
			if res.report.LaborTypeFallbacks > 0 {
				log.Warn().
					Str("file", paths[i]).
					Int("fallbacks", res.report.LaborTypeFallbacks).
					Int("employees", res.report.EmployeeCount).
					Msg("labor type defaulted to indirect")
			}
			reports = append(reports, res.report)
		}
	}
	if failed == len(paths) {
		return nil, fmt.Errorf("all %d report files failed to decode", failed)
	}
	return reports, nil
}

func parseFile(parser *laborreport.Parser, path string) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{err: err}
	}
	report, err := parser.Parse(data, filepath.Base(path))
	return fileResult{report: report, err: err}
}

func readSeries(path string) (timeseries.Series, error) {
	if path == "" {
		return timeseries.Series{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read existing series: %w", err)
	}
	var series timeseries.Series
	if err := json.Unmarshal(data, &series); err != nil {
		return nil, fmt.Errorf("decode existing series %s: %w", path, err)
	}
	return series, nil
}

func writeJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
