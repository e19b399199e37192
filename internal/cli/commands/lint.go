package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/leapstack-labs/lintstream/internal/cli/config"
	"github.com/leapstack-labs/lintstream/internal/cli/output"
	"github.com/leapstack-labs/lintstream/internal/source"
	"github.com/leapstack-labs/lintstream/pkg/lint"
	"github.com/leapstack-labs/lintstream/pkg/options"
	"github.com/leapstack-labs/lintstream/pkg/pipeline"
	"github.com/leapstack-labs/lintstream/pkg/stream"
	"github.com/leapstack-labs/lintstream/pkg/vfile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrLintFailed is returned when the fail gate rejects the linted files.
var ErrLintFailed = errors.New("lint failed")

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint JavaScript and TypeScript files",
		Long: `Lint files through the lint pipeline.

Paths may be files or directories; directories are walked recursively,
skipping .git and node_modules. Results are reported with the selected
formatter, fixes are written back with --fix, and the command fails when
errors are found (see --fail).

Options for the engine are read from the "options" section of the config
file (.lintstream.yaml, .lintstream.yml or .lintstream.toml).`,
		Example: `  # Lint the current directory
  lintstream lint

  # Lint a directory with a rule override
  lintstream lint src --rule no-console=warn

  # Fix problems and report each file as it is linted
  lintstream lint --fix --format-each

  # Use the eslint binary with flat config
  lintstream lint --engine eslint --config-type flat

  # Re-lint on change and expose metrics
  lintstream lint --watch --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args)
		},
	}

	cmd.Flags().String("engine", "", "Engine library (builtin, eslint)")
	cmd.Flags().String("config-type", "", "Configuration variant (eslintrc, flat)")
	cmd.Flags().Bool("fix", false, "Fix problems and write the files back")
	cmd.Flags().Bool("quiet", false, "Report errors only")
	cmd.Flags().Bool("warn-ignored", false, "Warn about ignored files")
	cmd.Flags().StringP("format", "f", "", "Formatter name (default stylish)")
	cmd.Flags().Bool("format-each", false, "Report each file as it is linted")
	cmd.Flags().String("fail", "", "Fail mode: none, on-error, after-error (default after-error)")
	cmd.Flags().StringArray("rule", nil, "Rule override id=severity (repeatable)")
	cmd.Flags().StringSlice("ext", nil, "File extensions to lint")
	cmd.Flags().Bool("watch", false, "Re-lint changed files until interrupted")
	cmd.Flags().String("metrics-addr", "", "Serve prometheus metrics on this address in watch mode")

	_ = cmd.RegisterFlagCompletionFunc("fail", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.FailNone, config.FailOnError, config.FailAfterError}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("config-type", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"eslintrc", "flat"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// linter runs the lint pipeline for one command invocation.
type linter struct {
	cfg      *config.Config
	raw      map[string]any
	walker   *source.Walker
	renderer *output.Renderer
	logger   *slog.Logger
	metrics  *pipeline.Metrics
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.NoColor)
	if !r.Color() {
		color.NoColor = true
	}

	raw, err := LintOptions(cfg)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	reg := prometheus.NewRegistry()
	l := &linter{
		cfg:      cfg,
		raw:      raw,
		walker:   source.NewWalker(cwd, cfg.Ext),
		renderer: r,
		logger:   logger,
		metrics:  pipeline.NewMetrics(reg),
	}

	if !cfg.Watch {
		return l.run(ctx, args)
	}
	return l.watch(ctx, args, reg)
}

// LintOptions builds the raw lint options from the configuration. Flag
// values override the config file's options section.
func LintOptions(cfg *config.Config) (map[string]any, error) {
	raw := maps.Clone(cfg.Options)
	if raw == nil {
		raw = map[string]any{}
	}
	if _, ok := raw["cwd"]; !ok && cfg.ProjectRoot != "" {
		raw["cwd"] = cfg.ProjectRoot
	}
	if cfg.ConfigType != "" {
		raw[options.KeyConfigType] = cfg.ConfigType
	}
	if cfg.Fix {
		raw["fix"] = true
	}
	if cfg.Quiet {
		raw[options.KeyQuiet] = true
	}
	if cfg.WarnIgnored {
		raw[options.KeyWarnIgnored] = true
	}

	rules, err := cfg.RuleOverrides()
	if err != nil {
		return nil, err
	}
	if len(rules) > 0 {
		if err := mergeRules(raw, rules); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// mergeRules adds rule overrides to the legacy rules option when present,
// otherwise to overrideConfig.
func mergeRules(raw, rules map[string]any) error {
	if legacy, ok := raw["rules"].(map[string]any); ok {
		merged := maps.Clone(legacy)
		maps.Copy(merged, rules)
		raw["rules"] = merged
		return nil
	}
	switch oc := raw["overrideConfig"].(type) {
	case nil:
		raw["overrideConfig"] = map[string]any{"rules": rules}
	case map[string]any:
		oc = maps.Clone(oc)
		merged := map[string]any{}
		if existing, ok := oc["rules"].(map[string]any); ok {
			maps.Copy(merged, existing)
		}
		maps.Copy(merged, rules)
		oc["rules"] = merged
		raw["overrideConfig"] = oc
	case []any:
		raw["overrideConfig"] = append(append([]any(nil), oc...), map[string]any{"rules": rules})
	default:
		return fmt.Errorf("options.overrideConfig must be an object or a list to add --rule overrides")
	}
	return nil
}

// stages builds the pipeline for one run. summary receives the aggregated
// results before the fail gate runs.
func (l *linter) stages(ctx context.Context, summary func(*lint.AggregatedResults)) ([]stream.Stage[*vfile.File], error) {
	opts := []pipeline.Option{
		pipeline.WithLibraryName(l.cfg.Engine),
		pipeline.WithLogger(l.logger),
		pipeline.WithMetrics(l.metrics),
	}

	lintStage, err := pipeline.Lint(ctx, l.raw, opts...)
	if err != nil {
		return nil, err
	}
	stages := []stream.Stage[*vfile.File]{lintStage}

	var report *stream.Transform[*vfile.File]
	if l.cfg.FormatEach {
		report, err = pipeline.FormatEach(l.cfg.Format, l.renderer.Report, opts...)
	} else {
		report, err = pipeline.Format(l.cfg.Format, l.renderer.Report, opts...)
	}
	if err != nil {
		return nil, err
	}
	stages = append(stages, report)

	if l.cfg.Fix {
		stages = append(stages, pipeline.Fix(opts...))
	}

	totals, err := pipeline.Results(pipeline.Sync(func(agg *lint.AggregatedResults) error {
		summary(agg)
		return nil
	}), opts...)
	if err != nil {
		return nil, err
	}

	switch l.cfg.Fail {
	case config.FailOnError:
		stages = append(stages, pipeline.FailOnError(opts...), totals)
	case config.FailAfterError:
		stages = append(stages, totals, pipeline.FailAfterError(opts...))
	default:
		stages = append(stages, totals)
	}
	return stages, nil
}

// run lints the files under paths once.
func (l *linter) run(ctx context.Context, paths []string) error {
	stages, err := l.stages(ctx, l.renderer.Summary)
	if err != nil {
		return err
	}
	start := time.Now()
	err = stream.NewPipeline(stages...).RunFunc(ctx, l.walker.Source(paths), nil)
	l.logger.Debug("lint run finished",
		slog.Int("paths", len(paths)),
		slog.Duration("elapsed", time.Since(start)))

	var lintErr *pipeline.LintError
	if errors.As(err, &lintErr) {
		if lintErr.FileName != "" {
			l.renderer.Status("%s:%d: %s", lintErr.FileName, lintErr.LineNumber, lintErr.Message)
		} else {
			l.renderer.Status("%s", lintErr.Message)
		}
		return fmt.Errorf("%w: %s", ErrLintFailed, lintErr.Message)
	}
	return err
}

// watch lints paths, then re-lints changed files until ctx is done. Lint
// failures are logged, not returned.
func (l *linter) watch(ctx context.Context, paths []string, reg *prometheus.Registry) error {
	g, ctx := errgroup.WithContext(ctx)

	if l.cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              l.cfg.MetricsAddr,
			Handler:           metricsHandler(reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			l.logger.Info("serving metrics", slog.String("addr", l.cfg.MetricsAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		l.report(ctx, paths)
		l.renderer.Status("watching for changes")
		w := source.NewWatcher(l.walker, source.DefaultDebounce, l.logger)
		return w.Watch(ctx, paths, func(ctx context.Context, changed []string) error {
			l.report(ctx, changed)
			return nil
		})
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (l *linter) report(ctx context.Context, paths []string) {
	if err := l.run(ctx, paths); err != nil && !errors.Is(err, context.Canceled) {
		l.logger.Warn("lint run failed", slog.Any("error", err))
	}
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}
