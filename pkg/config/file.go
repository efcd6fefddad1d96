package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFileYAML is the canonical config filename.
	DefaultConfigFileYAML = ".lambdaspectre.yaml"
	// DefaultConfigFileYML is a compatible alternate config filename.
	DefaultConfigFileYML = ".lambdaspectre.yml"
)

// FileConfig represents values loaded from a .lambdaspectre.yaml file.
// CLI flags always take precedence over file values.
type FileConfig struct {
	Region           string   `yaml:"region"`
	Profile          string   `yaml:"profile"`
	AthenaBucket     string   `yaml:"athena_bucket"`
	CloudTrailBucket string   `yaml:"cloudtrail_bucket"`
	TableName        string   `yaml:"table_name"`
	Year             string   `yaml:"year"`
	ExcludeFunctions []string `yaml:"exclude_functions"`
	Format           string   `yaml:"format"`
	PollInterval     string   `yaml:"poll_interval"`
	PollTimeout      string   `yaml:"poll_timeout"`
	Baseline         string   `yaml:"baseline"`
}

// Normalize trims and removes empty items from list fields.
func (fc *FileConfig) Normalize() {
	if fc == nil {
		return
	}
	fc.ExcludeFunctions = normalizeList(fc.ExcludeFunctions)
	fc.Region = strings.TrimSpace(fc.Region)
	fc.Profile = strings.TrimSpace(fc.Profile)
	fc.AthenaBucket = strings.TrimSpace(fc.AthenaBucket)
	fc.CloudTrailBucket = strings.TrimSpace(fc.CloudTrailBucket)
	fc.TableName = strings.TrimSpace(fc.TableName)
	fc.Year = strings.TrimSpace(fc.Year)
	fc.Format = strings.TrimSpace(fc.Format)
	fc.PollInterval = strings.TrimSpace(fc.PollInterval)
	fc.PollTimeout = strings.TrimSpace(fc.PollTimeout)
	fc.Baseline = strings.TrimSpace(fc.Baseline)
}

// AutoLoadFile discovers and loads the first available config file.
func AutoLoadFile() (*FileConfig, string, error) {
	candidates := []string{
		DefaultConfigFileYAML,
		DefaultConfigFileYML,
	}

	if homeDir, err := os.UserHomeDir(); err == nil && strings.TrimSpace(homeDir) != "" {
		candidates = append(candidates,
			filepath.Join(homeDir, DefaultConfigFileYAML),
			filepath.Join(homeDir, DefaultConfigFileYML),
		)
	}

	return LoadFirstExistingFile(candidates)
}

// LoadFirstExistingFile loads the first config file that exists in paths.
func LoadFirstExistingFile(paths []string) (*FileConfig, string, error) {
	for _, path := range paths {
		candidate := strings.TrimSpace(path)
		if candidate == "" {
			continue
		}

		info, err := os.Stat(candidate)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", fmt.Errorf("failed to access config file %q: %w", candidate, err)
		}
		if info.IsDir() {
			return nil, "", fmt.Errorf("config path %q is a directory, expected a file", candidate)
		}

		cfg, err := LoadFile(candidate)
		if err != nil {
			return nil, "", err
		}
		return cfg, candidate, nil
	}

	return nil, "", nil
}

// LoadFile loads config values from a specific YAML file path.
func LoadFile(path string) (*FileConfig, error) {
	filename := strings.TrimSpace(path)
	if filename == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", filename, err)
	}

	cfg := &FileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", filename, err)
	}

	cfg.Normalize()
	return cfg, nil
}

func normalizeList(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}

	normalized := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
