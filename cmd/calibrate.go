package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/isobytes/cnreduce/internal/analysislog"
	"github.com/isobytes/cnreduce/internal/calibrate"
	"github.com/isobytes/cnreduce/internal/project"
	"github.com/isobytes/cnreduce/internal/refmat"
	"github.com/isobytes/cnreduce/internal/report"
	"github.com/isobytes/cnreduce/internal/utils"
	"github.com/spf13/cobra"
)

var (
	calProject string
	calUnify   bool
	calCalib   []string
	calOutDir  string
)

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Calibrate a project's analysis log and write QC reports",
	Long: `Loads a project analysis log, splits it into runs (one per source file, or
the whole log with --unify), and for each run applies blank correction,
quantity calibration, drift correction, and isotope normalization. Writes a
calibrated data CSV, a cross-run summary CSV, and an HTML report per run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if calProject == "" {
			return fmt.Errorf("--project is required")
		}
		if len(calCalib) < 2 {
			return fmt.Errorf("--calib must name at least 2 reference materials (e.g. --calib GA1,GA2)")
		}

		proj, err := project.Load(filepath.Join(c.ProjectsDir, calProject))
		if err != nil {
			return err
		}
		set, err := refmat.Load(c.ReferenceMaterialsFile, c)
		if err != nil {
			return err
		}

		fmt.Println("Reading in data...")
		log, err := analysislog.Load(filepath.Join(c.MethodDir, proj.LogFile))
		if err != nil {
			return err
		}

		outDir := calOutDir
		if outDir == "" {
			outDir = filepath.Join(c.MethodDir, proj.Name)
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}

		pipeline := &calibrate.Pipeline{Refmat: set}
		opt := calibrate.Options{Calibration: calCalib}
		runs := calibrate.SplitRuns(log, proj.LogFile, calUnify)
		if len(runs) == 0 {
			return fmt.Errorf("analysis log %s is empty", proj.LogFile)
		}

		summaryFile := filepath.Join(outDir, proj.Name+"_summary.csv")
		for _, run := range runs {
			fmt.Printf("Run = %s\n", run.Name)
			res, err := pipeline.Calibrate(log, run, opt)
			if err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: run %s skipped: %v\n", run.Name, err)
				continue
			}
			printRunSummary(res)

			dataFile := filepath.Join(outDir, res.Name+"_CN_calibrated_data.csv")
			if err := report.WriteCalibrated(dataFile, res); err != nil {
				return err
			}
			if err := report.AppendSummary(summaryFile, res); err != nil {
				return err
			}
			htmlFile := filepath.Join(outDir, res.Name+"_calibration_summary.html")
			if err := report.WriteHTML(htmlFile, res, set); err != nil {
				return err
			}
			fmt.Printf("    Wrote %s\n", dataFile)
		}
		return nil
	},
}

func printRunSummary(res *calibrate.Result) {
	for _, n := range res.Notes {
		fmt.Printf("    %s\n", n)
	}
	fmt.Printf("    %d samples, %d standards, %d excluded\n",
		len(res.SampleIdx), len(res.NonSampleIdx), res.Excluded)
	fmt.Printf("    calibrated to %s; QC from %s\n",
		strings.Join(res.CalibrationCats, ", "), strings.Join(res.QCCats, ", "))
}

func init() {
	rootCmd.AddCommand(calibrateCmd)
	calibrateCmd.Flags().StringVarP(&calProject, "project", "p", "", "project whose analysis log to calibrate")
	calibrateCmd.Flags().BoolVar(&calUnify, "unify", false, "calibrate the entire log as a single unified run")
	calibrateCmd.Flags().StringSliceVar(&calCalib, "calib", nil, "reference materials to normalize to (at least 2); the rest become QC")
	calibrateCmd.Flags().StringVarP(&calOutDir, "out", "o", "", "output directory (default <method_dir>/<project>)")
}
