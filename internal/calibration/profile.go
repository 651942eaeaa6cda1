// Package calibration provides performance calibration for the mbcalc engine.
// This file implements calibration profile persistence.
package calibration

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/agbru/mbcalc/internal/mandelbrot"
)

// Profile stores the results of a calibration run together with the
// hardware it was measured on, so a cached profile can be validated.
type Profile struct {
	// Hardware identification
	CPUModel  string `json:"cpu_model"`
	NumCPU    int    `json:"num_cpu"`
	GOARCH    string `json:"goarch"`
	GOOS      string `json:"goos"`
	GoVersion string `json:"go_version"`
	WordSize  int    `json:"word_size"`

	// Calibrated settings
	OptimalWidth   int `json:"optimal_width"`
	OptimalWorkers int `json:"optimal_workers"`

	// Calibration metadata
	CalibratedAt    time.Time `json:"calibrated_at"`
	Sample          string    `json:"sample"`
	CalibrationTime string    `json:"calibration_time"`

	ProfileVersion int `json:"profile_version"`
}

const (
	// CurrentProfileVersion is bumped on incompatible format changes.
	CurrentProfileVersion = 1

	// DefaultProfileFileName is the default name for the calibration profile file.
	DefaultProfileFileName = ".mbcalc_calibration.json"
)

// GetDefaultProfilePath returns the profile path in the user's home
// directory, or in the current directory if there is none.
func GetDefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultProfileFileName
	}
	return filepath.Join(home, DefaultProfileFileName)
}

func resolveProfilePath(path string) string {
	if path == "" {
		return GetDefaultProfilePath()
	}
	return path
}

// NewProfile creates a Profile stamped with the current hardware.
func NewProfile() *Profile {
	return &Profile{
		CPUModel:       getCPUModel(),
		NumCPU:         runtime.NumCPU(),
		GOARCH:         runtime.GOARCH,
		GOOS:           runtime.GOOS,
		GoVersion:      runtime.Version(),
		WordSize:       wordSize,
		CalibratedAt:   time.Now(),
		ProfileVersion: CurrentProfileVersion,
	}
}

func getCPUModel() string {
	model := fmt.Sprintf("%s-%d-cores", runtime.GOARCH, runtime.NumCPU())
	if hasWideMultiply() {
		model += "-mul128"
	}
	return model
}

// LoadProfile reads a profile from path (the default path if empty).
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(resolveProfilePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// SaveProfile writes the profile as indented JSON to path (the default path
// if empty).
func (p *Profile) SaveProfile(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(resolveProfilePath(path), data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// IsValid reports whether the profile was produced by this profile version
// on matching hardware and holds usable settings.
func (p *Profile) IsValid() bool {
	if p == nil {
		return false
	}
	if p.ProfileVersion != CurrentProfileVersion {
		return false
	}
	if p.NumCPU != runtime.NumCPU() || p.GOARCH != runtime.GOARCH || p.WordSize != wordSize {
		return false
	}
	return mandelbrot.Options{Width: p.OptimalWidth, Workers: p.OptimalWorkers}.Validate() == nil
}

// IsStale reports whether the profile is older than maxAge.
func (p *Profile) IsStale(maxAge time.Duration) bool {
	if p == nil {
		return true
	}
	return time.Since(p.CalibratedAt) > maxAge
}

func (p *Profile) String() string {
	if p == nil {
		return "<nil profile>"
	}
	return fmt.Sprintf("Profile{CPU: %s, Width: %d bits, Workers: %d, Calibrated: %s}",
		p.CPUModel, p.OptimalWidth, p.OptimalWorkers, p.CalibratedAt.Format(time.RFC3339))
}

// LoadOrCreateProfile loads the profile at path. The boolean is false, and a
// fresh profile is returned, when the file is missing, unreadable or was
// recorded on different hardware.
func LoadOrCreateProfile(path string) (*Profile, bool) {
	profile, err := LoadProfile(path)
	if err != nil || !profile.IsValid() {
		return NewProfile(), false
	}
	return profile, true
}

// ProfileExists checks if a calibration profile exists at the given path.
func ProfileExists(path string) bool {
	_, err := os.Stat(resolveProfilePath(path))
	return err == nil
}
