package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"lux/internal/config"
	"lux/internal/logging"
	"lux/internal/metrics"
	"lux/internal/metrics/datadog"

	// every database backend is available to --kind.
	_ "lux/internal/source/all"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errStrict marks a run that succeeded but produced metadata errors under
// --strict. The errors are already reported.
var errStrict = errors.New("metadata has errors")

// app carries the state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgPath string
	stdout  io.Writer
	stderr  io.Writer
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errStrict) {
			fmt.Fprintf(stderr, "lux: %v\n", err)
		}
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: config.NewViper(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "lux",
		Short:         "Infer data types and measure/dimension roles of tabular data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default: ./lux.yaml when present)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("metrics-backend", "none", "metrics backend: none or datadog")
	pf.String("metrics-tags", "", "extra metrics tags, comma separated (env:prod,team:data)")
	mustBind(a.v, "log.level", pf.Lookup("log-level"))
	mustBind(a.v, "log.format", pf.Lookup("log-format"))
	mustBind(a.v, "metrics.backend", pf.Lookup("metrics-backend"))
	mustBind(a.v, "metrics.tags", pf.Lookup("metrics-tags"))

	root.AddCommand(newInferCmd(a), newValidateCmd(a), newVersionCmd(a))
	return root
}

// loadConfig reads the configuration and prints validation issues to stderr.
// Issues with error severity fail the load.
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.v, a.cfgPath)
	if err != nil {
		return nil, err
	}
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintln(a.stderr, iss.String())
	}
	if config.HasErrors(issues) {
		return nil, fmt.Errorf("configuration is invalid")
	}
	return cfg, nil
}

// setupMetrics installs the configured metrics backend. The returned func
// flushes and uninstalls it.
func setupMetrics(ctx context.Context, cfg *config.Config, log *zap.Logger) func() {
	if cfg.Metrics.Backend != "datadog" {
		return func() {}
	}
	b, err := datadog.NewBackend(ctx, datadog.Options{
		JobName:    cfg.Metrics.Job,
		Tags:       datadog.ParseTagsCSV(cfg.Metrics.Tags),
		FlushEvery: cfg.Metrics.FlushEvery,
	})
	if err != nil {
		log.Warn("metrics: datadog backend unavailable; using nop", zap.Error(err))
		return func() {}
	}
	metrics.SetBackend(b)
	log.Debug("metrics: datadog backend enabled", zap.String("job", cfg.Metrics.Job))
	return func() {
		if err := b.Close(); err != nil {
			log.Warn("metrics: final flush failed", zap.Error(err))
		}
		metrics.SetBackend(nil)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format)
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.loadConfig(); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "configuration is valid")
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lux version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "lux %s (%s)\n", version, runtime.Version())
		},
	}
}

// mustBind binds a flag to a config key. Unchanged flags leave the config
// file and environment values in place.
func mustBind(v *viper.Viper, key string, f *pflag.Flag) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("lux: bind flag %q: %v", key, err))
	}
}
