package main

import (
	"fmt"
	"os"

	"Ember3D/internal/config"
	"Ember3D/internal/engine"
	"Ember3D/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var cfg config.Config

	root := &cobra.Command{
		Use:           "ember",
		Short:         "Bake image-based lighting and play skinned animation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if err := logger.InitWith(logger.Options{Level: cfg.Log.Level, Development: cfg.Log.Development}); err != nil {
				return err
			}
			logger.Log.Info("Ember3D starting",
				zap.String("command", cmd.Name()),
				zap.String("config", configPath))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "ember.toml", "path to the TOML config file")

	view := &cobra.Command{
		Use:   "view",
		Short: "Open the viewer with the configured environment and model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return engine.New(cfg).Run()
		},
	}

	bake := &cobra.Command{
		Use:   "bake",
		Short: "Run the IBL precomputation offscreen and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return engine.New(cfg).Bake()
		},
	}

	var model string
	var clip int
	view.Flags().StringVar(&model, "model", "", "glTF model to play, overrides the config")
	view.Flags().IntVar(&clip, "clip", -1, "animation index to play, overrides the config")
	view.PreRun = func(cmd *cobra.Command, args []string) {
		if model != "" {
			cfg.Animation.ModelPath = model
		}
		if clip >= 0 {
			cfg.Animation.Clip = clip
		}
	}

	root.AddCommand(view, bake)
	return root
}
