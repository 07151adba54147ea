package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/isobytes/cnreduce/internal/analysislog"
	"github.com/isobytes/cnreduce/internal/classify"
	"github.com/isobytes/cnreduce/internal/ingest"
	"github.com/isobytes/cnreduce/internal/project"
	"github.com/isobytes/cnreduce/internal/utils"
	"github.com/spf13/cobra"
)

var reduceProject string

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Classify new raw data files and append them to the analysis logs",
	Long: `Reads every raw data file (CSV or XLSX) in the new-data directory, groups rows into
analyses, classifies peaks, and appends one record per analysis to both the
exhaustive analysis log and the chosen project's log. Processed files are
archived; malformed files are quarantined.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(c.MethodDir); err != nil {
			return fmt.Errorf("method directory does not exist: %s", c.MethodDir)
		}
		proj, err := resolveProject(reduceProject)
		if err != nil {
			return err
		}

		newDir := filepath.Join(c.MethodDir, c.NewDataDir)
		files, err := utils.MakeFileList(newDir, ".csv")
		if err != nil {
			return err
		}
		xlsxFiles, err := utils.MakeFileList(newDir, ".xlsx")
		if err != nil {
			return err
		}
		files = append(files, xlsxFiles...)
		if len(files) == 0 {
			fmt.Println("No files in raw data directory.")
			return nil
		}

		for _, file := range files {
			fmt.Printf("\nReading in file %s...\n", file)
			if err := reduceFile(proj, file); err != nil {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
				if err := utils.MoveFile(file, newDir, filepath.Join(c.MethodDir, c.JunkDataDir)); err != nil {
					return err
				}
				fmt.Printf("File %s was moved to the junk folder.\n", file)
				continue
			}
			if err := utils.MoveFile(file, newDir, filepath.Join(c.MethodDir, c.ArchiveDataDir)); err != nil {
				return err
			}
			proj.AddSource(file)
		}
		if err := proj.Save(); err != nil {
			return err
		}
		fmt.Println("\nDone. You may now wish to run 'cnreduce calibrate'.")
		return nil
	},
}

// reduceFile classifies one raw file and appends its records to both logs.
// Any returned error means the file is structurally unusable and should be
// quarantined; per-analysis problems only downgrade trust.
func reduceFile(proj *project.Project, file string) error {
	newDir := filepath.Join(cfg.MethodDir, cfg.NewDataDir)
	var t *ingest.Table
	var err error
	if filepath.Ext(file) == ".xlsx" {
		t, err = ingest.ReadXLSX(filepath.Join(newDir, file))
	} else {
		t, err = ingest.ReadTable(filepath.Join(newDir, file))
	}
	if err != nil {
		return err
	}
	if !t.Has("Analysis") {
		return fmt.Errorf("file %s has no Analysis column", file)
	}
	ids, err := t.Ints("Analysis")
	if err != nil {
		return fmt.Errorf("file %s contains non-integer analysis numbers: %w", file, err)
	}

	mode := classify.DetectRunMode(t)
	if mode == classify.ModeUnknown {
		fmt.Printf("%s is not recognized as a C, N, or CN data file; every analysis will be distrusted\n", file)
	}

	groups := classify.GroupAnalyses(ids)
	cl := classify.New(t, mode, cfg.SaturationMV)
	results := make([]classify.Result, len(groups))
	for i, g := range groups {
		results[i] = cl.Classify(g)
		printNotes(t, g, results[i], file)
	}

	records := analysislog.BuildRecords(t, groups, results, file, appVersion)
	if err := analysislog.Append(filepath.Join(cfg.MethodDir, cfg.ExhaustiveLogName), records); err != nil {
		return fmt.Errorf("append exhaustive log: %w", err)
	}
	if err := analysislog.Append(filepath.Join(cfg.MethodDir, proj.LogFile), records); err != nil {
		return fmt.Errorf("append project log: %w", err)
	}
	return nil
}

// printNotes surfaces classification notes on the console, in red when the
// analysis ended up distrusted.
func printNotes(t *ingest.Table, g classify.Group, r classify.Result, file string) {
	for _, n := range r.Notes {
		line := fmt.Sprintf(" Analysis %s in file %s - %s", t.Value("Analysis", g.Start), file, n)
		if !r.Trust {
			fmt.Printf("\x1b[91m%s\x1b[0m\n", line)
		} else {
			fmt.Println(line)
		}
	}
}

// resolveProject loads the named project, creating it on first use.
func resolveProject(name string) (*project.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("--project is required")
	}
	dir := filepath.Join(cfg.ProjectsDir, name)
	p, err := project.Load(dir)
	if err == nil {
		return p, nil
	}
	if _, statErr := os.Stat(dir); statErr == nil {
		return nil, err
	}
	p = project.New(name, dir)
	if err := p.Save(); err != nil {
		return nil, err
	}
	fmt.Printf("Created project %s (log file %s)\n", p.Name, p.LogFile)
	return p, nil
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	reduceCmd.Flags().StringVarP(&reduceProject, "project", "p", "", "project whose analysis log receives the new records")
}
