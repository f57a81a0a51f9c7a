// Package config resolves the server context once at startup. The resulting
// Config is immutable and shared read-only by every component.
package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	envBaseURL    = "AZURE_DEVOPS_SERVER_URL"
	envToken      = "AZURE_DEVOPS_SERVER_TOKEN"
	envCollection = "AZURE_DEVOPS_SERVER_COLLECTION"
	envAPIVersion = "AZURE_DEVOPS_SERVER_API_VERSION"
)

// Config is the process-wide server context: where the upstream lives and
// how to authenticate against it. Constructed once; never mutated.
type Config struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	Collection string `yaml:"collection"`
	APIVersion string `yaml:"api_version"`
}

// FromEnv reads the required environment variables. Absence of any of them
// is a startup-fatal configuration error, not a per-call error.
func FromEnv() (Config, error) {
	cfg := Config{
		BaseURL:    strings.TrimSpace(os.Getenv(envBaseURL)),
		Token:      strings.TrimSpace(os.Getenv(envToken)),
		Collection: strings.TrimSpace(os.Getenv(envCollection)),
		APIVersion: strings.TrimSpace(os.Getenv(envAPIVersion)),
	}
	return cfg, cfg.Validate()
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, envBaseURL)
	}
	if c.Token == "" {
		missing = append(missing, envToken)
	}
	if c.Collection == "" {
		missing = append(missing, envCollection)
	}
	if c.APIVersion == "" {
		missing = append(missing, envAPIVersion)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Merge overlays non-empty values from override onto c.
func Merge(base, override Config) Config {
	if override.BaseURL != "" {
		base.BaseURL = override.BaseURL
	}
	if override.Token != "" {
		base.Token = override.Token
	}
	if override.Collection != "" {
		base.Collection = override.Collection
	}
	if override.APIVersion != "" {
		base.APIVersion = override.APIVersion
	}
	return base
}

// CollectionURL returns the base URL with the collection segment appended,
// unless the configured URL already ends with it.
func (c Config) CollectionURL() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if c.Collection == "" || strings.HasSuffix(strings.ToLower(base), "/"+strings.ToLower(c.Collection)) {
		return base
	}
	return base + "/" + c.Collection
}

// Redacted returns a copy safe for logging.
func (c Config) Redacted() Config {
	if c.Token != "" {
		c.Token = "***"
	}
	return c
}
