package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/isobytes/cnreduce/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set cnreduce configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("method_dir: %s\n", cfg.MethodDir)
		fmt.Printf("new_data_dir: %s\n", cfg.NewDataDir)
		fmt.Printf("archive_data_dir: %s\n", cfg.ArchiveDataDir)
		fmt.Printf("junk_data_dir: %s\n", cfg.JunkDataDir)
		fmt.Printf("reference_materials_file: %s\n", cfg.ReferenceMaterialsFile)
		fmt.Printf("exhaustive_log_name: %s\n", cfg.ExhaustiveLogName)
		fmt.Printf("projects_dir: %s\n", cfg.ProjectsDir)
		fmt.Printf("saturation_mv: %.0f\n", cfg.SaturationMV)
		fmt.Printf("qtycal_fraction_n: %.4f\n", cfg.QtycalFractionN)
		fmt.Printf("qtycal_fraction_c: %.4f\n", cfg.QtycalFractionC)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "method_dir":
			cfg.MethodDir = val
		case "new_data_dir":
			cfg.NewDataDir = val
		case "archive_data_dir":
			cfg.ArchiveDataDir = val
		case "junk_data_dir":
			cfg.JunkDataDir = val
		case "reference_materials_file":
			cfg.ReferenceMaterialsFile = val
		case "exhaustive_log_name":
			cfg.ExhaustiveLogName = val
		case "projects_dir":
			cfg.ProjectsDir = val
		case "saturation_mv":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("saturation_mv must be a number: %w", err)
			}
			cfg.SaturationMV = f
		case "qtycal_fraction_n":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("qtycal_fraction_n must be a number: %w", err)
			}
			cfg.QtycalFractionN = f
		case "qtycal_fraction_c":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("qtycal_fraction_c must be a number: %w", err)
			}
			cfg.QtycalFractionC = f
		default:
			return fmt.Errorf("unknown config key %q", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Printf("✓ Saved %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
