package clientcli

import (
	"fmt"
	"net/url"
	"os"
)

// DefaultEndpoint is the default gateway URL, a local "docrepo serve".
const DefaultEndpoint = "http://localhost:5708"

// Environment variables read by the client CLI.
const (
	EnvEndpoint = "DOCREPO_ENDPOINT"
	EnvAPIKey   = "DOCREPO_API_KEY"
	EnvProfile  = "DOCREPO_PROFILE"
	EnvConfig   = "DOCREPO_CONFIG"
)

// Config holds resolved client configuration for a single gateway.
type Config struct {
	Endpoint string // full resource URL, e.g. https://id.execute-api.region.amazonaws.com/prod/documents
	APIKey   string // sent as X-Api-Key when set
}

// Validate checks that Endpoint, when set, is an absolute http or https URL.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return nil
	}
	return validateHTTPURL(c.Endpoint)
}

// WithDefaults returns a copy with Endpoint defaulted to DefaultEndpoint.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// Override returns c with every non-empty field of o applied on top.
func (c Config) Override(o Config) Config {
	if o.Endpoint != "" {
		c.Endpoint = o.Endpoint
	}
	if o.APIKey != "" {
		c.APIKey = o.APIKey
	}
	return c
}

// EnvConfig reads DOCREPO_ENDPOINT and DOCREPO_API_KEY.
func EnvConfig() Config {
	return Config{
		Endpoint: os.Getenv(EnvEndpoint),
		APIKey:   os.Getenv(EnvAPIKey),
	}
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, raw)
	}
	return nil
}
