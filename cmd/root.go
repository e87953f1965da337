package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo-profiler/internal/config"
)

// version is set at build time with -ldflags "-X main.version=<tag>".
var version = "dev"

var cfg *config.Config

var rootFlags struct {
	configFile string
	logLevel   string
	logFormat  string
}

var rootCmd = &cobra.Command{
	Use:   "geo-profiler",
	Short: "Geospatial profiling for open-data tables",
	Long: `Reads column-level semantic annotations for a dataset, samples its values,
and classifies the dataset's spatial role, geometry type, spatial resolution,
and the spatial analyses it supports.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadRuntimeConfig()
		if err != nil {
			return err
		}
		cfg = c
		zap.L().Debug("configuration loaded",
			zap.String("command", cmd.Name()),
			zap.String("config_file", rootFlags.configFile),
			zap.Int("sample_size", cfg.Sample.Size),
		)
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configFile, "config", "", "config file (default ./config.yaml when present)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	f.StringVar(&rootFlags.logFormat, "log-format", "", "override log.format (json, console)")
}

// loadRuntimeConfig reads the config, applies the logging flag overrides,
// and installs the global logger.
func loadRuntimeConfig() (*config.Config, error) {
	c, err := config.LoadFrom(rootFlags.configFile)
	if err != nil {
		return nil, eris.Wrap(err, "load config")
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Log.Format = rootFlags.logFormat
	}
	if err := config.InitLogger(c.Log); err != nil {
		return nil, eris.Wrap(err, "init logger")
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
