package config

import (
	"net/url"
	"strings"
	"time"
)

// SiteConfig holds per-site overrides for a single host.
// Zero values mean "not set" and leave the global setting in place.
type SiteConfig struct {
	// UserAgent overrides the User-Agent header for this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay overrides the pause between pages, e.g. "500ms".
	Delay time.Duration `yaml:"delay,omitempty"`

	// Selector overrides the CSS selector collected on each page.
	Selector string `yaml:"selector,omitempty"`

	// Depth overrides the crawl depth for this site.
	Depth int `yaml:"depth,omitempty"`

	// IgnorePatterns are URL path globs that are never followed.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns restrict link following to matching URL paths.
	// Empty means all paths are allowed (subject to IgnorePatterns).
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File represents the structure of the .pagecrawl configuration file.
type File struct {
	// Sites maps host names (e.g. "example.com" or "localhost:8080") to overrides.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults applies to every site unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for host.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if siteConfig, ok := cf.Sites[strings.ToLower(host)]; ok {
		result = mergeSiteConfig(result, siteConfig)
	}
	return result
}

// GetSiteConfigForURL looks a site up by the host of rawURL.
// The host with port is tried before the bare host name.
func (cf *File) GetSiteConfigForURL(rawURL string) SiteConfig {
	u, err := url.Parse(rawURL)
	if err != nil {
		return cf.Defaults
	}
	if _, ok := cf.Sites[strings.ToLower(u.Host)]; ok {
		return cf.GetSiteConfig(u.Host)
	}
	return cf.GetSiteConfig(u.Hostname())
}

// mergeSiteConfig overlays the non-zero fields of override onto base.
func mergeSiteConfig(base, override SiteConfig) SiteConfig {
	result := base

	if override.UserAgent != "" {
		result.UserAgent = override.UserAgent
	}
	if override.Cookie != "" {
		result.Cookie = override.Cookie
	}
	if override.Delay != 0 {
		result.Delay = override.Delay
	}
	if override.Selector != "" {
		result.Selector = override.Selector
	}
	if override.Depth != 0 {
		result.Depth = override.Depth
	}
	if len(override.Headers) > 0 {
		headers := make(map[string]string, len(base.Headers)+len(override.Headers))
		for k, v := range base.Headers {
			headers[k] = v
		}
		for k, v := range override.Headers {
			headers[k] = v
		}
		result.Headers = headers
	}
	if len(override.IgnorePatterns) > 0 {
		result.IgnorePatterns = override.IgnorePatterns
	}
	if len(override.FollowPatterns) > 0 {
		result.FollowPatterns = override.FollowPatterns
	}

	return result
}
