package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/voxelsplace/voxbin/config"
	"github.com/voxelsplace/voxbin/logging"
)

var (
	appConfig config.Config
	logger    = zerolog.Nop()

	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "voxbin",
	Short: "Export RGBA voxel grids as visualizer save files",
	Long: `voxbin builds RGBA voxel grids and writes them as save_<timestamp>.bin files
under <dest>/saves/, the layout the voxel visualizer reads.

Each save is a 6-byte header (spacing x,y,z then width,height,depth) followed by
one r,g,b,a record per voxel, x slowest and z fastest.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initializeApp,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace, debug, info, warn, error or off")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(glbCmd)
	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)
	rootCmd.AddCommand(versionCmd)
}

func initializeApp(cmd *cobra.Command, args []string) error {
	path, required := configPath, true
	if path == "" {
		path, required = config.DefaultPath, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	appConfig = cfg
	logger = logging.New("voxbin", logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	return nil
}
