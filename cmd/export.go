package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voxelsplace/voxbin/launch"
	"github.com/voxelsplace/voxbin/utils"
	"github.com/voxelsplace/voxbin/voxbin"
)

var (
	exportScene      string
	exportPattern    string
	exportDims       []int
	exportSpacing    []int
	exportDest       string
	exportPercentage float64
	exportSeed       int64
	exportLaunch     bool
	exportCollision  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a grid as <dest>/saves/save_<timestamp>.bin",
	Long: `Build a voxel grid from a JSON scene or a built-in pattern and export it.

The artifact id (save_<timestamp>, no directory, no extension) is printed on stdout.
With --launch the id is also handed to the configured visualizer, which is started
in its own directory and not waited for.

Examples:
  voxbin export --pattern checker --dims 80,80,10 --spacing 10,10,60
  voxbin export --scene scan.json --dest ../visualizer --launch
  voxbin export --pattern noise --percentage 20 --seed 7`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.StringVar(&exportScene, "scene", "", "JSON scene document to export")
	f.StringVar(&exportPattern, "pattern", "checker", fmt.Sprintf("built-in pattern %v, ignored with --scene", utils.Patterns()))
	f.IntSliceVar(&exportDims, "dims", []int{80, 80, 10}, "pattern grid size W,H,D")
	f.IntSliceVar(&exportSpacing, "spacing", nil, "voxel spacing x,y,z (overrides scene and config)")
	f.StringVar(&exportDest, "dest", "", "destination directory holding saves/ (default from config)")
	f.Float64Var(&exportPercentage, "percentage", 10, "fill percentage for the noise pattern")
	f.Int64Var(&exportSeed, "seed", 1, "random seed for the noise pattern")
	f.BoolVar(&exportLaunch, "launch", false, "start the visualizer on the new save")
	f.StringVar(&exportCollision, "collision", "", "same-second name collision policy: suffix or fail")
}

func runExport(cmd *cobra.Command, args []string) error {
	sp := appConfig.Export.Spacing
	var grid *voxbin.Grid
	if exportScene != "" {
		sc, err := utils.LoadScene(exportScene)
		if err != nil {
			return err
		}
		grid = sc.Grid
		if sc.HasSpacing {
			sp = sc.Spacing
		}
	} else {
		if len(exportDims) != 3 {
			return fmt.Errorf("%w: --dims needs W,H,D", voxbin.ErrInvalidDimension)
		}
		g, err := utils.GeneratePattern(exportPattern, exportDims[0], exportDims[1], exportDims[2],
			utils.PatternOptions{Percentage: exportPercentage, Seed: exportSeed})
		if err != nil {
			return err
		}
		grid = g
	}
	if len(exportSpacing) > 0 {
		s, err := voxbin.ParseSpacing(exportSpacing)
		if err != nil {
			return err
		}
		sp = s
	}

	dest := appConfig.Export.Dest
	if exportDest != "" {
		dest = exportDest
	}
	policy := appConfig.Export.Collision
	if exportCollision != "" {
		p, err := voxbin.ParseCollisionPolicy(exportCollision)
		if err != nil {
			return err
		}
		policy = p
	}

	ex, err := voxbin.NewExporterForGrid(grid, voxbin.WithLogger(logger), voxbin.WithCollisionPolicy(policy))
	if err != nil {
		return err
	}

	if !exportLaunch {
		id, err := ex.Export(sp, dest)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	}

	v := appConfig.Visualizer
	l := launch.NewCommand(v.Dir, v.Program, v.Args, logger)
	id, _, err := ex.ExportAndHandOff(cmd.Context(), sp, dest, l)
	if id != "" {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return err
}
