package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/pagecrawl/internal/extract"
)

// Output formats understood by the report package.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// Default configuration values.
const (
	// DefaultMaxDepth of 0 means single-page mode: only the seed is fetched.
	DefaultMaxDepth = 0

	// DefaultDelay is the pause after each processed page.
	// This is a politeness setting to avoid overwhelming servers.
	DefaultDelay = 200 * time.Millisecond

	// DefaultMaxPages caps the number of pages visited per seed.
	DefaultMaxPages = 50

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultFormat is the output format used when none is given.
	DefaultFormat = FormatJSON

	// DefaultMaxQueue bounds the frontier so pathological fan-out cannot
	// grow memory without limit.
	DefaultMaxQueue = 10000

	// DefaultBatchSize is the number of seeds crawled at once.
	// Each seed is still crawled by a single serial spider.
	DefaultBatchSize = 1

	// DefaultMaxBodySize limits the response body read per page.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "pagecrawl"

	// DefaultUserAgent identifies pagecrawl in HTTP requests so that
	// operators can recognise crawler traffic in their logs.
	DefaultUserAgent = "pagecrawl/1.0 (+https://github.com/nao1215/pagecrawl)"
)

// Config holds all options for a crawl invocation.
// It is populated from CLI flags (and the optional site configuration file)
// and is read-only for the lifetime of a crawl.
type Config struct {
	// Targets are the seed URLs. The common case is a single seed.
	Targets []string

	// MaxDepth is the maximum number of link hops from a seed.
	// 0 fetches only the seed page.
	MaxDepth int

	// Delay is the pause after each processed page.
	Delay time.Duration

	// MaxPages is the maximum number of pages visited per seed.
	MaxPages int

	// SameOriginOnly restricts link following to the seed's scheme, host and port.
	SameOriginOnly bool

	// Selector is an optional CSS selector whose matches are collected per page.
	Selector string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// OutputPath is the file to write results to. Empty means stdout.
	OutputPath string

	// Format is one of FormatJSON, FormatCSV or FormatMarkdown.
	Format string

	// CSVErrorColumn appends an "error" column to CSV output.
	CSVErrorColumn bool

	// MaxQueue bounds the number of pending frontier nodes.
	MaxQueue int

	// RateLimit caps requests per second on top of Delay. 0 disables it.
	RateLimit float64

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// BatchSize is the number of seeds crawled concurrently.
	BatchSize int

	// MaxBodySize is the maximum response body size in bytes to read.
	MaxBodySize int64

	// Verbose enables debug-level logging.
	Verbose bool

	// ConfigFilePath is an explicit path to the site configuration file.
	ConfigFilePath string

	// SiteConfigs holds the loaded site configuration file, if any.
	SiteConfigs *File

	// SaveToDB archives finished runs to the SQLite database in DBDir.
	SaveToDB bool

	// DBDir is the directory holding the archive database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		MaxDepth:    DefaultMaxDepth,
		Delay:       DefaultDelay,
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		Format:      DefaultFormat,
		MaxQueue:    DefaultMaxQueue,
		BatchSize:   DefaultBatchSize,
		MaxBodySize: DefaultMaxBodySize,
		UserAgent:   DefaultUserAgent,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for pagecrawl.
// On Linux: ~/.local/share/pagecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagecrawl.
// On Linux: ~/.config/pagecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors in errors.go.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, target := range c.Targets {
		if !isCrawlableURL(target) {
			return ErrInvalidTarget
		}
	}
	if c.MaxDepth < 0 {
		return ErrInvalidDepth
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.Delay < 0 {
		return ErrInvalidCrawlDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if !IsValidFormat(c.Format) {
		return ErrInvalidFormat
	}
	if c.Selector != "" {
		if err := extract.ValidateSelector(c.Selector); err != nil {
			return ErrInvalidSelector
		}
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxQueue <= 0 {
		return ErrInvalidMaxQueue
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// IsValidFormat reports whether format names a supported output format.
func IsValidFormat(format string) bool {
	switch format {
	case FormatJSON, FormatCSV, FormatMarkdown:
		return true
	default:
		return false
	}
}

// NormalizeTarget adds an https scheme to bare host names such as "example.com/docs".
func NormalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if target == "" || strings.Contains(target, "://") {
		return target
	}
	return "https://" + target
}

// isCrawlableURL reports whether target is an absolute http(s) URL with a host.
func isCrawlableURL(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
