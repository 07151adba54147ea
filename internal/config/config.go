package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// MethodDir is the root of all method data: raw data subdirectories,
	// analysis logs, and per-project output directories.
	MethodDir string `mapstructure:"method_dir" yaml:"method_dir"`

	// Raw-data subdirectories under MethodDir.
	NewDataDir     string `mapstructure:"new_data_dir" yaml:"new_data_dir"`
	ArchiveDataDir string `mapstructure:"archive_data_dir" yaml:"archive_data_dir"`
	JunkDataDir    string `mapstructure:"junk_data_dir" yaml:"junk_data_dir"`

	// ReferenceMaterialsFile points at the accepted-values document for
	// isotope reference materials.
	ReferenceMaterialsFile string `mapstructure:"reference_materials_file" yaml:"reference_materials_file"`

	ExhaustiveLogName string `mapstructure:"exhaustive_log_name" yaml:"exhaustive_log_name"`
	ProjectsDir       string `mapstructure:"projects_dir" yaml:"projects_dir"`

	// SaturationMV is the amplitude above which a sample cup is considered
	// saturated and the analysis distrusted.
	SaturationMV float64 `mapstructure:"saturation_mv" yaml:"saturation_mv"`

	// Quantity-calibration standard composition.
	QtycalNames     []string `mapstructure:"qtycal_names" yaml:"qtycal_names"`
	QtycalFractionN float64  `mapstructure:"qtycal_fraction_n" yaml:"qtycal_fraction_n"`
	QtycalFractionC float64  `mapstructure:"qtycal_fraction_c" yaml:"qtycal_fraction_c"`

	// Identifier variants for the remaining corrective categories.
	BlankNames    []string `mapstructure:"blank_names" yaml:"blank_names"`
	EmptyTinNames []string `mapstructure:"emptytin_names" yaml:"emptytin_names"`
	ZeroNames     []string `mapstructure:"zero_names" yaml:"zero_names"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cnreduce/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".cnreduce")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CNREDUCE")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("new_data_dir", "rawdata_new")
	v.SetDefault("archive_data_dir", "rawdata_archive")
	v.SetDefault("junk_data_dir", "rawdata_junk")
	v.SetDefault("exhaustive_log_name", "CN_exhaustive_analysis_log.csv")
	v.SetDefault("saturation_mv", 49950.0)
	v.SetDefault("qtycal_names", []string{"qtycal_GA1", "qtycal_ga1", "qtycal.GA1"})
	v.SetDefault("qtycal_fraction_n", 0.0952)
	v.SetDefault("qtycal_fraction_c", 0.4082)
	v.SetDefault("blank_names", []string{"blank"})
	v.SetDefault("emptytin_names", []string{"empty_tin", "Empty Tin"})
	v.SetDefault("zero_names", []string{"zero"})

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".cnreduce")
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home dir: %w", err)
	}
	if c.MethodDir == "" {
		c.MethodDir = filepath.Join(home, "cn_method_data")
	}
	if c.ProjectsDir == "" {
		c.ProjectsDir = filepath.Join(c.MethodDir, "projects")
	}
	if c.ReferenceMaterialsFile == "" {
		c.ReferenceMaterialsFile = filepath.Join(home, ".cnreduce", "reference_materials.json")
	}
	return &c, nil
}
