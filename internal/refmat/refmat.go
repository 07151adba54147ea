// Package refmat loads reference-material definitions: named categories of
// analyses with accepted isotopic values and elemental mass fractions.
package refmat

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/isobytes/cnreduce/internal/config"
)

// Role says how a category participates in calibration.
type Role int

const (
	// RoleReference categories carry accepted isotope values; per run the
	// operator splits them into calibration and quality-control sets.
	RoleReference Role = iota
	// RoleCorrective categories (blank, qtycal, empty tin, zero) support the
	// correction steps and are never treated as unknowns.
	RoleCorrective
)

// Category is one reference material or corrective measurement.
type Category struct {
	Name      string   `json:"-"`
	Names     []string `json:"names"`
	Material  string   `json:"material"`
	D15N      float64  `json:"d15N"`
	D13C      float64  `json:"d13C"`
	FractionN float64  `json:"fractionN"`
	FractionC float64  `json:"fractionC"`
	Notes     string   `json:"notes"`
	Role      Role     `json:"-"`
}

// Match reports whether a sample identifier belongs to this category.
// Matching is case-insensitive across all known name variants.
func (c *Category) Match(identifier string) bool {
	for _, n := range c.Names {
		if strings.EqualFold(n, identifier) {
			return true
		}
	}
	return false
}

// Set is the full collection of categories for a method, keyed by name.
type Set struct {
	Categories map[string]*Category
	FileNote   string // provenance of the accepted values document
}

type refmatDocument struct {
	FileMetaData struct {
		File             string `json:"file"`
		ModificationDate string `json:"modification_date"`
	} `json:"file_meta_data"`
	Organics map[string]*Category `json:"organics"`
}

// Load reads the accepted-values JSON document and merges in the corrective
// categories defined by the tool configuration.
func Load(path string, cfg *config.Global) (*Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference materials: %w", err)
	}
	var doc refmatDocument
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse reference materials: %w", err)
	}
	s := &Set{Categories: make(map[string]*Category, len(doc.Organics)+4)}
	if doc.FileMetaData.File != "" {
		s.FileNote = doc.FileMetaData.File + " - " + doc.FileMetaData.ModificationDate
	}
	for name, c := range doc.Organics {
		c.Name = name
		c.Role = RoleReference
		s.Categories[name] = c
	}
	for _, c := range correctiveCategories(cfg) {
		s.Categories[c.Name] = c
	}
	return s, nil
}

func correctiveCategories(cfg *config.Global) []*Category {
	nan := math.NaN()
	return []*Category{
		{
			Name: "qtycal", Names: cfg.QtycalNames, Material: "GA1",
			D15N: nan, D13C: nan,
			FractionN: cfg.QtycalFractionN, FractionC: cfg.QtycalFractionC,
			Notes: "material weighed across a range to calibrate peak area to quantity",
			Role:  RoleCorrective,
		},
		{
			Name: "blank", Names: cfg.BlankNames,
			D15N: nan, D13C: nan,
			Notes: "no material dropped into EA", Role: RoleCorrective,
		},
		{
			Name: "emptytin", Names: cfg.EmptyTinNames, Material: "tin cups",
			D15N: nan, D13C: nan, Role: RoleCorrective,
		},
		{
			Name: "zero", Names: cfg.ZeroNames,
			D15N: nan, D13C: nan,
			Material: "reference gas peaks treated as unknowns", Role: RoleCorrective,
		},
	}
}

// Get looks a category up by name, case-insensitively.
func (s *Set) Get(name string) (*Category, bool) {
	if c, ok := s.Categories[name]; ok {
		return c, true
	}
	for k, c := range s.Categories {
		if strings.EqualFold(k, name) {
			return c, true
		}
	}
	return nil, false
}

// Names returns all category names in deterministic order.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.Categories))
	for n := range s.Categories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Classify returns the category an identifier belongs to, or nil for an
// unknown sample.
func (s *Set) Classify(identifier string) *Category {
	for _, n := range s.Names() {
		if s.Categories[n].Match(identifier) {
			return s.Categories[n]
		}
	}
	return nil
}
