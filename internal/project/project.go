// Package project manages project-scoped analysis logs: each project owns a
// named log file that raw-data reductions append to, alongside the exhaustive
// project-independent log.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/isobytes/cnreduce/internal/utils"
	"github.com/google/uuid"
)

const projectFileName = "project.json"

// Project is the persisted description of one project.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogFile   string    `json:"log_file"` // analysis log name under the method directory
	Sources   []string  `json:"sources"`  // raw files reduced into this project's log
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	rootDir string `json:"-"`
}

// New constructs an in-memory project. Call Save() to persist.
func New(name, rootDir string) *Project {
	key := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return &Project{
		ID:        uuid.NewString(),
		Name:      key,
		LogFile:   key + "_analysis_log.csv",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		rootDir:   rootDir,
	}
}

// Load loads a project.json from the provided directory.
func Load(dir string) (*Project, error) {
	path := filepath.Join(dir, projectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, projectFileName), data)
}

// AddSource records a reduced raw file in the project inventory.
func (p *Project) AddSource(file string) {
	for _, s := range p.Sources {
		if s == file {
			return
		}
	}
	p.Sources = append(p.Sources, file)
	p.UpdatedAt = time.Now()
}

// List returns the project names found under projectsDir.
func List(projectsDir string) ([]string, error) {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(projectsDir, e.Name(), projectFileName)); err == nil {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
