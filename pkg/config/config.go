// Package config provides configuration loading and management for the
// NanoSIMS reduction tools. It handles loading configuration from YAML files
// and provides default values, including the calibration constants used to
// turn isotope ratios into standardized delta values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// NumCores specifies how many files a batch run reduces in parallel
		NumCores int `yaml:"numCores"`

		// DeadTime is the detector dead time in seconds
		DeadTime float64 `yaml:"deadTime"`

		// DwellTime overrides the dwell time per pixel in seconds; zero uses
		// the value from the file header
		DwellTime float64 `yaml:"dwellTime"`

		// PrimaryCurrent is the primary beam current in picoamperes; zero
		// uses the value from the file header
		PrimaryCurrent float64 `yaml:"primaryCurrent"`

		// TrimFront and TrimBack remove cycles before masking
		TrimFront int `yaml:"trimFront"`
		TrimBack  int `yaml:"trimBack"`

		// RollX and RollY shift every plane before masking
		RollX int `yaml:"rollX"`
		RollY int `yaml:"rollY"`

		// MaskLower excludes reference-isotope cells at or below this count
		MaskLower float64 `yaml:"maskLower"`

		// MaskUpper excludes reference-isotope cells above this count; zero
		// means unbounded
		MaskUpper float64 `yaml:"maskUpper"`
	} `yaml:"processing"`

	// Calibration constants
	Calibration Calibration `yaml:"calibration"`

	// Output parameters
	Output struct {
		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`

		// LogJSON switches the logger from console to JSON output
		LogJSON bool `yaml:"logJSON"`

		// ImageDir, when set, receives a masked reference image per analysis
		ImageDir string `yaml:"imageDir"`
	} `yaml:"output"`
}

// Calibration holds the constants for one isotope system: the reference
// (denominator) isotope, the QSA beta coefficient and one entry per minor
// isotope ratio.
type Calibration struct {
	// Reference is the denominator isotope label, e.g. "16O"
	Reference string `yaml:"reference"`

	// QSABeta is the quasi-simultaneous arrival coefficient of the system
	QSABeta float64 `yaml:"qsaBeta"`

	// Ratios lists the minor isotopes reduced against the reference
	Ratios []RatioCalibration `yaml:"ratios"`
}

// RatioCalibration holds the constants of one minor/reference ratio.
type RatioCalibration struct {
	// Isotope is the numerator isotope label, e.g. "17O"
	Isotope string `yaml:"isotope"`

	// StandardRatio is the reference-material ratio used for delta values
	// (VSMOW for oxygen)
	StandardRatio float64 `yaml:"standardRatio"`

	// Standard is the running standard used for IMF correction
	Standard Standard `yaml:"standard"`
}

// Standard is a reference material measured in the same session, with its
// measured delta value, 1 sigma uncertainty and accepted literature value,
// all in permil.
type Standard struct {
	Name             string  `yaml:"name"`
	MeasuredDelta    float64 `yaml:"measuredDelta"`
	MeasuredDeltaErr float64 `yaml:"measuredDeltaErr"`
	LiteratureDelta  float64 `yaml:"literatureDelta"`
}

// VSMOW oxygen ratios (Baertschi, 1976; Fahey et al., 1987)
const (
	VSMOWR17 = 0.00038288
	VSMOWR18 = 0.0020052
)

// DefaultCalibration returns the oxygen system standardized to San Carlos
// olivine (Tanaka and Nakamura, 2013).
func DefaultCalibration() Calibration {
	return Calibration{
		Reference: "16O",
		QSABeta:   DefaultQSABeta("17O/16O"),
		Ratios: []RatioCalibration{
			{
				Isotope:       "17O",
				StandardRatio: VSMOWR17,
				Standard: Standard{
					Name:             "San Carlos olivine",
					MeasuredDelta:    51.37322054,
					MeasuredDeltaErr: 2.729224551,
					LiteratureDelta:  2.7,
				},
			},
			{
				Isotope:       "18O",
				StandardRatio: VSMOWR18,
				Standard: Standard{
					Name:             "San Carlos olivine",
					MeasuredDelta:    78.87885747,
					MeasuredDeltaErr: 1.207378055,
					LiteratureDelta:  5.3,
				},
			},
		},
	}
}

// DefaultQSABeta returns the QSA beta coefficient for a ratio label
// (Hillion et al., 2008). Unlisted systems get the Poisson value 0.5.
func DefaultQSABeta(ratio string) float64 {
	switch ratio {
	case "17O/16O", "18O/16O", "32S/33S", "32S/34S", "32S/36S":
		return 0.75
	case "12C/13C", "12C2/13C12C":
		return 1
	case "28Si/29Si", "28Si/30Si":
		return 0.6
	default:
		return 0.5
	}
}

// Ratio returns the calibration entry for a minor isotope.
func (c Calibration) Ratio(isotope string) (RatioCalibration, bool) {
	for _, r := range c.Ratios {
		if r.Isotope == isotope {
			return r, true
		}
	}
	return RatioCalibration{}, false
}

// Isotopes returns the minor isotope labels in configuration order.
func (c Calibration) Isotopes() []string {
	out := make([]string, len(c.Ratios))
	for i, r := range c.Ratios {
		out[i] = r.Isotope
	}
	return out
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.NumCores = runtime.NumCPU()
	cfg.Processing.DeadTime = 44e-9

	cfg.Calibration = DefaultCalibration()

	cfg.Output.Verbose = false
	cfg.Output.LogJSON = false

	return cfg
}

// Validate checks that the configuration can drive an analysis.
func (c *Config) Validate() error {
	p := c.Processing
	switch {
	case p.NumCores < 1:
		return fmt.Errorf("%w: numCores must be at least 1", ErrInvalidConfig)
	case p.DeadTime < 0:
		return fmt.Errorf("%w: deadTime must not be negative", ErrInvalidConfig)
	case p.DwellTime < 0:
		return fmt.Errorf("%w: dwellTime must not be negative", ErrInvalidConfig)
	case p.PrimaryCurrent < 0:
		return fmt.Errorf("%w: primaryCurrent must not be negative", ErrInvalidConfig)
	case p.TrimFront < 0 || p.TrimBack < 0:
		return fmt.Errorf("%w: trim counts must not be negative", ErrInvalidConfig)
	case p.MaskUpper != 0 && p.MaskUpper <= p.MaskLower:
		return fmt.Errorf("%w: maskUpper must exceed maskLower", ErrInvalidConfig)
	}

	cal := c.Calibration
	if cal.Reference == "" {
		return fmt.Errorf("%w: calibration reference isotope is empty", ErrInvalidConfig)
	}
	if cal.QSABeta < 0 {
		return fmt.Errorf("%w: qsaBeta must not be negative", ErrInvalidConfig)
	}
	if len(cal.Ratios) == 0 {
		return fmt.Errorf("%w: no calibration ratios", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(cal.Ratios))
	for _, r := range cal.Ratios {
		if r.Isotope == "" || r.Isotope == cal.Reference {
			return fmt.Errorf("%w: ratio isotope %q", ErrInvalidConfig, r.Isotope)
		}
		if seen[r.Isotope] {
			return fmt.Errorf("%w: duplicate ratio isotope %q", ErrInvalidConfig, r.Isotope)
		}
		seen[r.Isotope] = true
		if r.StandardRatio <= 0 {
			return fmt.Errorf("%w: standardRatio of %s must be positive", ErrInvalidConfig, r.Isotope)
		}
		if r.Standard.MeasuredDeltaErr < 0 {
			return fmt.Errorf("%w: measuredDeltaErr of %s must not be negative", ErrInvalidConfig, r.Isotope)
		}
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
