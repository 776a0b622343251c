// Package config provides configuration structures and utilities for pagecrawl.
// It defines the crawl options produced by the CLI, their defaults and
// validation, and the optional YAML file with per-site overrides.
package config
