package clientcli

import (
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultResource is the API Gateway resource the document routes are
// mounted on.
const DefaultResource = "documents"

// Profile describes one deployed gateway stage. The request URL is
// InvokeURL/Stage/Resource; Stage is empty for a local "docrepo serve".
type Profile struct {
	InvokeURL string `yaml:"invoke_url"`
	Stage     string `yaml:"stage,omitempty"`
	Resource  string `yaml:"resource,omitempty"`
	APIKey    string `yaml:"api_key,omitempty"` // usage-plan key
}

// Endpoint returns the resource URL requests are sent to.
func (p Profile) Endpoint() string {
	resource := strings.Trim(p.Resource, "/")
	if resource == "" {
		resource = DefaultResource
	}
	u, err := url.JoinPath(p.InvokeURL, p.Stage, resource)
	if err != nil {
		return p.InvokeURL
	}
	return u
}

// Config converts the profile into client configuration.
func (p Profile) Config() Config {
	return Config{Endpoint: p.Endpoint(), APIKey: p.APIKey}
}

// Validate checks the invoke URL and the stage name.
func (p Profile) Validate() error {
	if err := validateHTTPURL(p.InvokeURL); err != nil {
		return err
	}
	if u, _ := url.Parse(p.InvokeURL); u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("%w: invoke URL must not carry a query", ErrInvalidEndpoint)
	}
	if !validStageName(p.Stage) {
		return fmt.Errorf("%w: %q", ErrInvalidStage, p.Stage)
	}
	if strings.ContainsAny(p.Resource, "?#") {
		return fmt.Errorf("%w: resource %q", ErrInvalidEndpoint, p.Resource)
	}
	return nil
}

// API Gateway stage names are alphanumerics, hyphens and underscores,
// at most 128 characters.
func validStageName(stage string) bool {
	if len(stage) > 128 {
		return false
	}
	for _, r := range stage {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// ProfileFile is the on-disk profile store, keyed by profile name.
type ProfileFile struct {
	Default  string             `yaml:"default,omitempty"`
	Profiles map[string]Profile `yaml:"profiles"`
}

// Lookup resolves a profile by name. An empty name selects the default,
// or the only profile when just one exists.
func (f *ProfileFile) Lookup(name string) (string, Profile, error) {
	if len(f.Profiles) == 0 {
		return "", Profile{}, ErrNoProfiles
	}

	if name == "" {
		name = f.Default
	}
	if name == "" {
		if len(f.Profiles) != 1 {
			return "", Profile{}, ErrNoDefaultProfile
		}
		for only := range f.Profiles {
			name = only
		}
	}

	p, ok := f.Profiles[name]
	if !ok {
		return "", Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return name, p, nil
}

// Set validates p and stores it under name, replacing any existing
// profile. The first profile stored becomes the default.
func (f *ProfileFile) Set(name string, p Profile) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrProfileNotFound)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if f.Profiles == nil {
		f.Profiles = make(map[string]Profile)
	}
	f.Profiles[name] = p
	if len(f.Profiles) == 1 {
		f.Default = name
	}
	return nil
}

// Delete removes a profile and clears the default if it pointed at it.
func (f *ProfileFile) Delete(name string) error {
	if _, ok := f.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	delete(f.Profiles, name)
	if f.Default == name {
		f.Default = ""
	}
	return nil
}

// Use makes name the default profile.
func (f *ProfileFile) Use(name string) error {
	if _, ok := f.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	f.Default = name
	return nil
}

// Names returns the profile names in sorted order.
func (f *ProfileFile) Names() []string {
	return slices.Sorted(maps.Keys(f.Profiles))
}

// Save writes the file with 0600 permissions. The content is written to a
// temporary file first and renamed into place.
func (f *ProfileFile) Save(path string) error {
	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal profiles: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write profiles: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("chmod profiles: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace profiles: %w", err)
	}
	return nil
}

// LoadProfiles reads a profile file. Profiles that fail validation are
// reported with their name.
func LoadProfiles(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var f ProfileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	for _, name := range f.Names() {
		if err := f.Profiles[name].Validate(); err != nil {
			return nil, fmt.Errorf("profile %s: %w", name, err)
		}
	}
	if f.Default != "" {
		if _, ok := f.Profiles[f.Default]; !ok {
			return nil, fmt.Errorf("default %w: %s", ErrProfileNotFound, f.Default)
		}
	}

	return &f, nil
}

// ConfigPath returns flagValue, then DOCREPO_CONFIG, then
// ~/.docrepo/config.yaml.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".docrepo", "config.yaml")
}
