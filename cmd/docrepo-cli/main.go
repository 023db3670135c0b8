package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sagarc03/docrepo/clientcli"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	apiKey     string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "docrepo-cli",
	Version: version,
	Short:   "Client for the docrepo document gateway",
	Long: `docrepo-cli - Client for the docrepo document gateway

Uploads, lists, and downloads documents through an API Gateway stage
or a local "docrepo serve".

Configuration is resolved in order, later sources winning:
  1. stage profile from the config file (--profile, DOCREPO_PROFILE, or the default)
  2. environment (DOCREPO_ENDPOINT, DOCREPO_API_KEY)
  3. flags (--endpoint, --api-key)

--endpoint takes the full resource URL, for example
https://abc123.execute-api.us-east-1.amazonaws.com/prod/documents`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.docrepo/config.yaml, env: DOCREPO_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: DOCREPO_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "gateway URL (default: "+clientcli.DefaultEndpoint+", env: DOCREPO_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "k", "", "API key sent as X-Api-Key (env: DOCREPO_API_KEY)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// profileName returns --profile or DOCREPO_PROFILE.
func profileName() string {
	if profile != "" {
		return profile
	}
	return os.Getenv(clientcli.EnvProfile)
}

// buildConfig layers the selected profile, the environment and the flags,
// later sources winning field by field.
func buildConfig() (*clientcli.Config, error) {
	var cfg clientcli.Config

	name := profileName()
	file, err := clientcli.LoadProfiles(clientcli.ConfigPath(cfgFile))
	switch {
	case err == nil:
		_, p, lookupErr := file.Lookup(name)
		switch {
		case lookupErr == nil:
			cfg = p.Config()
		case name != "" || !errors.Is(lookupErr, clientcli.ErrNoProfiles):
			return nil, lookupErr
		}
	case errors.Is(err, os.ErrNotExist) && cfgFile == "" && name == "":
		// no profile file and none requested
	default:
		return nil, err
	}

	cfg = cfg.Override(clientcli.EnvConfig())
	cfg = cfg.Override(clientcli.Config{Endpoint: endpoint, APIKey: apiKey})
	return &cfg, nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// handleError adds a hint for common gateway errors.
func handleError(w io.Writer, err error) error {
	switch {
	case errors.Is(err, clientcli.ErrNotFound):
		_, _ = fmt.Fprintln(w, "Hint: run 'docrepo-cli list' to see stored document keys.")
	case errors.Is(err, clientcli.ErrForbidden):
		_, _ = fmt.Fprintln(w, "Hint: the stage may require a usage-plan key, see --api-key or 'docrepo-cli configure set'.")
	}
	return err
}
