package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-gi/common"
	"github.com/Carmen-Shannon/oxy-gi/config"
	"github.com/Carmen-Shannon/oxy-gi/engine"
	"github.com/Carmen-Shannon/oxy-gi/engine/scene"
	"github.com/spf13/cobra"
)

// options holds the persistent flags.
type options struct {
	configPath      string
	logLevel        string
	fallback        bool
	validateShaders bool
	outputDir       string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "oxybake",
		Short:         "Bake global illumination probes for a scene",
		SilenceUsage: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	flags.BoolVar(&opts.fallback, "fallback", false, "use a software adapter")
	flags.BoolVar(&opts.validateShaders, "validate-shaders", false, "validate shaders before creating pipelines")
	flags.StringVar(&opts.outputDir, "output", "", "override the bake output directory")

	root.AddCommand(
		newJobCommand(opts, "bake <scene.yaml>", "Bake the probe volume and every reflection probe", engine.JobGenerateLighting),
		newJobCommand(opts, "reflections <scene.yaml>", "Bake every reflection probe", engine.JobReflectionProbes),
		newJobCommand(opts, "clear <scene.yaml>", "Clear all baked data", engine.JobClear),
		newConfigCommand(opts),
	)
	return root
}

func newJobCommand(opts *options, use, short string, job engine.Job) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runJob(cmd.Context(), cfg, args[0], job, cmd.ErrOrStderr())
		},
	}
}

func newConfigCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write a config file with every default",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := config.Default().Save(opts.configPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", opts.configPath)
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := opts.load(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", cfg)
				return nil
			},
		},
	)
	return cmd
}

// load reads the config file, applies flag overrides and installs the logger.
func (o *options) load(logOut io.Writer) (config.Config, error) {
	cfg, err := config.Load(o.configPath, o.configPath == config.DefaultPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	cfg.ForceFallbackAdapter = cfg.ForceFallbackAdapter || o.fallback
	cfg.ValidateShaders = cfg.ValidateShaders || o.validateShaders
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return config.Config{}, err
	}
	common.SetLogger(slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

func runJob(ctx context.Context, cfg config.Config, manifest string, job engine.Job, out io.Writer) error {
	s, err := scene.LoadManifest(manifest)
	if err != nil {
		return err
	}
	e, err := engine.NewEngine(s,
		engine.WithConfig(cfg),
		engine.WithProgress(func(status string, progress float32) {
			fmt.Fprintf(out, "%5.1f%% %s\n", progress*100, status)
		}),
	)
	if err != nil {
		return err
	}
	defer e.Release()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-signals:
			e.Quit()
		case <-done:
		}
	}()

	if ctx == nil {
		ctx = context.Background()
	}
	return e.Run(ctx, job)
}
