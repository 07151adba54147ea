package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// EnsureDir ensures the provided directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// PrettyJSON marshals a value as indented JSON.
func PrettyJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return b, nil
}

// MakeFileList returns the sorted names of regular files in dir whose name
// contains the given fragment (e.g. "_analysis_log.csv" or ".csv").
func MakeFileList(dir, fragment string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.Contains(e.Name(), fragment) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// MoveFile relocates name from srcDir to dstDir, creating dstDir if needed.
func MoveFile(name, srcDir, dstDir string) error {
	if err := EnsureDir(dstDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	if err := os.Rename(filepath.Join(srcDir, name), filepath.Join(dstDir, name)); err != nil {
		return fmt.Errorf("move %s: %w", name, err)
	}
	return nil
}
