// Package config provides configuration management for blctl.
// It reads settings from blackshield.ini using multiple search paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Config holds all configuration settings for blctl.
type Config struct {
	// Serial/connection settings
	Port     string
	DataRate int
	Timeout  int

	// Update settings
	ChunkSize int
	Address   string
}

// Load reads configuration from blackshield.ini in the following search
// order:
// 1. Current directory (./blackshield.ini)
// 2. $BLACKSHIELD_HOME directory
// 3. Home directory (~/blackshield.ini)
func Load() (*Config, error) {
	var searchPaths []string

	searchPaths = append(searchPaths, filepath.Join(".", "blackshield.ini"))

	if dir := os.Getenv("BLACKSHIELD_HOME"); dir != "" {
		searchPaths = append(searchPaths, filepath.Join(dir, "blackshield.ini"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, "blackshield.ini"))
	}

	var iniFile *ini.File
	var configPath string
	var err error

	for _, path := range searchPaths {
		if _, statErr := os.Stat(path); statErr == nil {
			iniFile, err = ini.Load(path)
			if err == nil {
				configPath = path
				break
			}
		}
	}

	if iniFile == nil {
		return defaults(), nil
	}

	section := iniFile.Section("DEFAULT")
	cfg := &Config{
		Port:      section.Key("port").MustString("/dev/ttyUSB0"),
		DataRate:  section.Key("data_rate").MustInt(256000),
		Timeout:   section.Key("timeout").MustInt(10),
		ChunkSize: section.Key("chunk_size").MustInt(255),
		Address:   section.Key("address").MustString("08010000"),
	}

	_ = configPath
	return cfg, nil
}

// defaults returns a Config with every field at its built-in default,
// used when no blackshield.ini is found: blctl has no required
// target-machine config, so a missing file is not an error.
func defaults() *Config {
	return &Config{
		Port:      "/dev/ttyUSB0",
		DataRate:  256000,
		Timeout:   10,
		ChunkSize: 255,
		Address:   "08010000",
	}
}

// ConfigPath returns the path to the config file that would be loaded,
// if any exists.
func ConfigPath() (string, error) {
	paths := []string{filepath.Join(".", "blackshield.ini")}

	if dir := os.Getenv("BLACKSHIELD_HOME"); dir != "" {
		paths = append(paths, filepath.Join(dir, "blackshield.ini"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "blackshield.ini"))
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no blackshield.ini file found")
}
