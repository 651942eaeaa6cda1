package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns EnvPrefix+key, or defaultVal if it is unset or empty.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns EnvPrefix+key parsed as an int, or defaultVal if it is
// unset or malformed.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool accepts true/1/yes and false/0/no, case-insensitively.
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet reports whether any of names was given on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides applies environment values to every flag that was not
// set explicitly: CLI flags > environment variables > defaults.
//
// Supported environment variables:
//   - MBCALC_X, MBCALC_Y, MBCALC_SIZE: view centre and width (decimal)
//   - MBCALC_COLUMNS, MBCALC_ROWS, MBCALC_MAX_ITER, MBCALC_WORDS (int)
//   - MBCALC_WIDTH, MBCALC_WORKERS, MBCALC_QUALITY (int)
//   - MBCALC_TIER, MBCALC_PORT, MBCALC_OUTPUT, MBCALC_CALIBRATION_PROFILE (string)
//   - MBCALC_TIMEOUT (duration: "30s", "2m")
//   - MBCALC_SERVER, MBCALC_JSON, MBCALC_QUIET, MBCALC_NO_COLOR, MBCALC_SHOW,
//     MBCALC_CALIBRATE, MBCALC_AUTO_CALIBRATE (bool)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	stringOverrides := []struct {
		flags []string
		env   string
		dst   *string
	}{
		{[]string{"x"}, "X", &config.X},
		{[]string{"y"}, "Y", &config.Y},
		{[]string{"size"}, "SIZE", &config.Size},
		{[]string{"tier"}, "TIER", &config.Tier},
		{[]string{"port"}, "PORT", &config.Port},
		{[]string{"output", "o"}, "OUTPUT", &config.OutputFile},
		{[]string{"calibration-profile"}, "CALIBRATION_PROFILE", &config.CalibrationProfile},
	}
	for _, o := range stringOverrides {
		if !isFlagSet(fs, o.flags...) {
			*o.dst = getEnvString(o.env, *o.dst)
		}
	}

	ints := []struct {
		flag string
		env  string
		dst  *int
	}{
		{"columns", "COLUMNS", &config.Columns},
		{"rows", "ROWS", &config.Rows},
		{"max-iter", "MAX_ITER", &config.MaxIterations},
		{"words", "WORDS", &config.Words},
		{"width", "WIDTH", &config.Width},
		{"workers", "WORKERS", &config.Workers},
		{"quality", "QUALITY", &config.Quality},
	}
	for _, o := range ints {
		if !isFlagSet(fs, o.flag) {
			*o.dst = getEnvInt(o.env, *o.dst)
		}
	}

	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}

	bools := []struct {
		flags []string
		env   string
		dst   *bool
	}{
		{[]string{"server"}, "SERVER", &config.ServerMode},
		{[]string{"json"}, "JSON", &config.JSONOutput},
		{[]string{"quiet", "q"}, "QUIET", &config.Quiet},
		{[]string{"no-color"}, "NO_COLOR", &config.NoColor},
		{[]string{"show"}, "SHOW", &config.ShowGrid},
		{[]string{"calibrate"}, "CALIBRATE", &config.Calibrate},
		{[]string{"auto-calibrate"}, "AUTO_CALIBRATE", &config.AutoCalibrate},
	}
	for _, o := range bools {
		if !isFlagSet(fs, o.flags...) {
			*o.dst = getEnvBool(o.env, *o.dst)
		}
	}
}
