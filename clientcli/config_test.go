package clientcli_test

import (
	"path/filepath"
	"testing"

	"github.com/sagarc03/docrepo/clientcli"
	"github.com/stretchr/testify/assert"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		wantErr  bool
	}{
		{name: "empty", endpoint: ""},
		{name: "local", endpoint: "http://localhost:5708"},
		{name: "api gateway stage", endpoint: "https://abc123.execute-api.us-east-1.amazonaws.com/prod/documents"},
		{name: "no scheme", endpoint: "localhost:5708", wantErr: true},
		{name: "ftp", endpoint: "ftp://example.com", wantErr: true},
		{name: "no host", endpoint: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &clientcli.Config{Endpoint: tt.endpoint}
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, clientcli.ErrInvalidEndpoint)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := &clientcli.Config{APIKey: "key"}

	withDefaults := cfg.WithDefaults()
	assert.Equal(t, clientcli.DefaultEndpoint, withDefaults.Endpoint)
	assert.Equal(t, "key", withDefaults.APIKey)
	assert.Empty(t, cfg.Endpoint, "original config must not change")
}

func TestConfig_Override(t *testing.T) {
	base := clientcli.Config{Endpoint: "http://a.com", APIKey: "key1"}

	assert.Equal(t, base, base.Override(clientcli.Config{}))
	assert.Equal(t,
		clientcli.Config{Endpoint: "http://b.com", APIKey: "key1"},
		base.Override(clientcli.Config{Endpoint: "http://b.com"}),
	)
	assert.Equal(t,
		clientcli.Config{Endpoint: "http://a.com", APIKey: "key2"},
		base.Override(clientcli.Config{APIKey: "key2"}),
	)
}

func TestEnvConfig(t *testing.T) {
	t.Setenv(clientcli.EnvEndpoint, "http://test.example.com/documents")
	t.Setenv(clientcli.EnvAPIKey, "env-api-key")

	cfg := clientcli.EnvConfig()

	assert.Equal(t, "http://test.example.com/documents", cfg.Endpoint)
	assert.Equal(t, "env-api-key", cfg.APIKey)
}

func TestConfigPath(t *testing.T) {
	t.Setenv(clientcli.EnvConfig, "/tmp/docrepo.yaml")
	assert.Equal(t, "/etc/docrepo.yaml", clientcli.ConfigPath("/etc/docrepo.yaml"))
	assert.Equal(t, "/tmp/docrepo.yaml", clientcli.ConfigPath(""))

	t.Setenv(clientcli.EnvConfig, "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	assert.Equal(t, filepath.Join(home, ".docrepo", "config.yaml"), clientcli.ConfigPath(""))
}
