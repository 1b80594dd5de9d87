// Package config merges configuration from files, environment variables,
// and CLI flags into one runtime view.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "stackscan.config.yml"

	// MaxTimeoutSeconds bounds the per-target analysis budget.
	MaxTimeoutSeconds = 300

	envTargets       = "STACKSCAN_TARGETS"
	envTargetsFile   = "STACKSCAN_TARGETS_FILE"
	envDetectors     = "STACKSCAN_DETECTORS"
	envMinConfidence = "STACKSCAN_MIN_CONFIDENCE"
	envOutputDir     = "STACKSCAN_OUTPUT_DIR"
	envFormats       = "STACKSCAN_FORMATS"
	envTimeout       = "STACKSCAN_TIMEOUT"
	envSummaryFile   = "STACKSCAN_SUMMARY_FILE"
	envListenAddr    = "STACKSCAN_LISTEN_ADDR"
	envWhatCMSKey    = "WHATCMS_API_KEY"
	envWhatCMSURL    = "WHATCMS_API_URL"
)

// Loader merges configuration coming from files, environment variables, and
// CLI flags. A .env file in the working directory is folded into the
// environment first, which is where the WhatCMS API key normally lives.
type Loader struct {
	ConfigPath string
}

// RuntimeConfig contains the fully merged settings required by sub-commands.
type RuntimeConfig struct {
	Targets        []string
	Detectors      []string
	MinConfidence  int
	OutputDir      string
	Formats        []string
	TimeoutSeconds int
	SummaryFile    string
	ListenAddr     string
	Quiet          bool
	WhatCMSAPIKey  string
	WhatCMSAPIURL  string
}

// Overrides captures values coming from env vars or CLI flags.
type Overrides struct {
	Targets          []string
	TargetsFile      string
	Detectors        []string
	MinConfidence    int
	MinConfidenceSet bool
	OutputDir        string
	Formats          []string
	Timeout          int
	TimeoutSet       bool
	SummaryFile      string
	ListenAddr       string
	Quiet            *bool
	WhatCMSAPIKey    string
	WhatCMSAPIURL    string
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides
// are provided. The whatcms detector is off by default since it needs an
// API key.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Detectors:      []string{"pattern", "whatweb"},
		OutputDir:      "scan-results",
		Formats:        []string{"json"},
		TimeoutSeconds: 60,
		ListenAddr:     ":8080",
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	// Machine-local secrets live in .env; absence is not an error.
	_ = godotenv.Load()

	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, err
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	}

	if err := cfg.apply(overridesFromEnv()); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the config contains the minimum required data for the
// scan command.
func (c RuntimeConfig) Validate() error {
	if len(c.Targets) == 0 {
		return errors.New("no targets configured; provide --targets, --targets-file, or set STACKSCAN_TARGETS")
	}

	if c.MinConfidence < 0 || c.MinConfidence > 100 {
		return fmt.Errorf("min-confidence must be between 0 and 100 (got %d)", c.MinConfidence)
	}

	if c.TimeoutSeconds < 1 || c.TimeoutSeconds > MaxTimeoutSeconds {
		return fmt.Errorf("timeout must be between 1 and %d seconds (got %d)", MaxTimeoutSeconds, c.TimeoutSeconds)
	}

	if len(c.Detectors) == 0 {
		return errors.New("at least one detector must be enabled")
	}

	if len(c.Formats) == 0 {
		return errors.New("at least one output format must be specified")
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	return nil
}

func (c *RuntimeConfig) apply(src Overrides) error {
	if len(src.Targets) > 0 {
		c.Targets = cleanList(src.Targets)
	}

	if src.TargetsFile != "" {
		values, err := readTargetsFile(src.TargetsFile)
		if err != nil {
			return err
		}
		c.Targets = values
	}

	if len(src.Detectors) > 0 {
		c.Detectors = cleanList(src.Detectors)
	}

	if src.MinConfidenceSet {
		c.MinConfidence = src.MinConfidence
	}

	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}

	if len(src.Formats) > 0 {
		c.Formats = cleanList(src.Formats)
	}

	if src.TimeoutSet {
		c.TimeoutSeconds = src.Timeout
	}

	if src.SummaryFile != "" {
		c.SummaryFile = src.SummaryFile
	}

	if src.ListenAddr != "" {
		c.ListenAddr = src.ListenAddr
	}

	if src.Quiet != nil {
		c.Quiet = *src.Quiet
	}

	if src.WhatCMSAPIKey != "" {
		c.WhatCMSAPIKey = src.WhatCMSAPIKey
	}

	if src.WhatCMSAPIURL != "" {
		c.WhatCMSAPIURL = src.WhatCMSAPIURL
	}

	return nil
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Targets       targetList `yaml:"targets"`
		TargetsFile   string     `yaml:"targetsFile"`
		Detectors     targetList `yaml:"detectors"`
		MinConfidence *int       `yaml:"minConfidence"`
		OutputDir     string     `yaml:"outputDir"`
		Formats       []string   `yaml:"formats"`
		Timeout       *int       `yaml:"timeout"`
		SummaryFile   string     `yaml:"summaryFile"`
		ListenAddr    string     `yaml:"listenAddr"`
		Quiet         *bool      `yaml:"quiet"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		Targets:     raw.Targets,
		TargetsFile: raw.TargetsFile,
		Detectors:   raw.Detectors,
		OutputDir:   raw.OutputDir,
		Formats:     raw.Formats,
		SummaryFile: raw.SummaryFile,
		ListenAddr:  raw.ListenAddr,
	}

	if raw.MinConfidence != nil {
		over.MinConfidence = *raw.MinConfidence
		over.MinConfidenceSet = true
	}

	if raw.Timeout != nil {
		over.Timeout = *raw.Timeout
		over.TimeoutSet = true
	}

	if raw.Quiet != nil {
		over.Quiet = raw.Quiet
	}

	return over, nil
}

func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envTargets); value != "" {
		ov.Targets = ParseTargetsList(value)
	}

	if value := os.Getenv(envTargetsFile); value != "" {
		ov.TargetsFile = value
	}

	if value := os.Getenv(envDetectors); value != "" {
		ov.Detectors = ParseDetectors(value)
	}

	if value := os.Getenv(envMinConfidence); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.MinConfidence = parsed
			ov.MinConfidenceSet = true
		}
	}

	if value := os.Getenv(envOutputDir); value != "" {
		ov.OutputDir = value
	}

	if value := os.Getenv(envFormats); value != "" {
		ov.Formats = ParseFormats(value)
	}

	if value := os.Getenv(envTimeout); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Timeout = parsed
			ov.TimeoutSet = true
		}
	}

	if value := os.Getenv(envSummaryFile); value != "" {
		ov.SummaryFile = value
	}

	if value := os.Getenv(envListenAddr); value != "" {
		ov.ListenAddr = value
	}

	if value := os.Getenv(envWhatCMSKey); value != "" {
		ov.WhatCMSAPIKey = value
	}

	if value := os.Getenv(envWhatCMSURL); value != "" {
		ov.WhatCMSAPIURL = value
	}

	return ov
}

// ParseTargetsList turns comma or newline separated input into individual targets.
func ParseTargetsList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r'})
}

// ParseFormats splits comma separated format strings.
func ParseFormats(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

// ParseDetectors splits comma separated detector names.
func ParseDetectors(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

func splitOnDelimiters(input string, delims []rune) []string {
	if input == "" {
		return nil
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	parts := strings.FieldsFunc(trimmed, separator)
	return cleanList(parts)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func readTargetsFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var targets []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// targetList enables YAML fields that can be specified as a scalar or sequence.
type targetList []string

func (t *targetList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*t = cleanList(out)
	case yaml.ScalarNode:
		*t = ParseTargetsList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for targets")
	}
	return nil
}
