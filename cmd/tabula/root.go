package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/pkg/config"
	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/logger"
	"github.com/ajitpratap0/tabula/pkg/tracing"

	// Register every codec
	_ "github.com/ajitpratap0/tabula/pkg/formats/columnar"
	_ "github.com/ajitpratap0/tabula/pkg/formats/delimited"
)

var version = "0.1.0"

// app carries the state resolved by the root command before any
// subcommand runs.
type app struct {
	configFile string
	logLevel   string
	trace      bool

	ctx      context.Context
	cfg      *config.Config
	log      *zap.Logger
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tabula",
		Short: "Tabula - typed columnar datasets with lossless codecs",
		Long: `Tabula keeps typed, documented tables and moves them between a
delimited text format with a JSON sidecar, Arrow IPC, Parquet and Avro
without losing kinds, nulls or column metadata.`,
		SilenceUsage:       true,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return a.init(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return a.close() },
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "Path to a YAML, JSON or TOML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the configuration")
	root.PersistentFlags().BoolVar(&a.trace, "trace", false, "Print codec spans to stderr")

	root.AddCommand(
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Tabula v%s\n", version)
				fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
				fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			},
		},
		newFormatsCmd(),
		newGenerateCmd(a),
		newConvertCmd(a),
		newInspectCmd(a),
		newDeriveCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.trace {
		cfg.Tracing.Enabled = true
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	shutdown, err := tracing.Init(cfg.Tracing, cmd.ErrOrStderr(), version)
	if err != nil {
		return err
	}
	a.shutdown = shutdown
	a.cfg = cfg
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = context.WithValue(ctx, logger.ComponentKey, "tabula-cli")
	a.log = logger.WithContext(a.ctx)
	return nil
}

func (a *app) close() error {
	_ = logger.Sync()
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(context.Background())
}

func (a *app) options() formats.Options {
	opts := formats.OptionsFromConfig(a.cfg)
	opts.IDs = dataset.DefaultIDs
	return opts
}

// codecFor resolves the codec for path, preferring an explicit format name.
func (a *app) codecFor(path, name string) (formats.Codec, error) {
	if name == "" {
		return formats.ForPath(path, a.options())
	}
	f, err := formats.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return formats.New(f, a.options())
}

func (a *app) load(path, format string) (*dataset.DataSet, error) {
	codec, err := a.codecFor(path, format)
	if err != nil {
		return nil, err
	}
	ds, err := codec.Load(path)
	if err != nil {
		return nil, err
	}
	a.logFor(ds, codec).Debug("loaded dataset", zap.String("path", path))
	return ds, nil
}

func (a *app) save(ds *dataset.DataSet, path, format string) error {
	codec, err := a.codecFor(path, format)
	if err != nil {
		return err
	}
	if err := codec.Save(ds, path); err != nil {
		return err
	}
	a.logFor(ds, codec).Debug("saved dataset", zap.String("path", path))
	return nil
}

// logFor tags the command logger with the dataset name and codec format.
func (a *app) logFor(ds *dataset.DataSet, codec formats.Codec) *zap.Logger {
	ctx := context.WithValue(a.ctx, logger.DatasetKey, ds.Name)
	ctx = context.WithValue(ctx, logger.FormatKey, string(codec.Format()))
	return logger.WithContext(ctx)
}
