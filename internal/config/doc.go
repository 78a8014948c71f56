// Package config provides application configuration loaded from environment
// variables and an optional YAML file, plus the centralized Paths system that
// is the single source of truth for every file path the tools read or write.
package config
