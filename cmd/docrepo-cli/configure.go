package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/sagarc03/docrepo/clientcli"
	"github.com/spf13/cobra"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage gateway stage profiles",
	Long: `Manage gateway stage profiles.

A profile names one deployed API Gateway stage: its invoke URL, the stage,
the resource the document routes live under, and an optional usage-plan
API key. Requests go to <invoke-url>/<stage>/<resource>.

Profiles are stored in ~/.docrepo/config.yaml (override with --config or
DOCREPO_CONFIG) and selected with --profile or DOCREPO_PROFILE.`,
}

var configureSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Create or update a profile",
	Long: `Create or update a profile.

Only the flags given change an existing profile. The invoke URL is prompted
for when neither the flag nor an existing value provides it. The stage is
checked with a listDocuments call before saving unless --no-check is set.`,
	Example: `  docrepo-cli configure set prod \
    --invoke-url https://abc123.execute-api.us-east-1.amazonaws.com \
    --stage prod --api-key "$DOCREPO_API_KEY"
  docrepo-cli configure set local --invoke-url http://localhost:5708 --no-check`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigureSet,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE:  runConfigureList,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a profile and its resolved endpoint",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigureShow,
}

var configureUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureUse,
}

var configureDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureDelete,
}

var configureCheckCmd = &cobra.Command{
	Use:   "check [name]",
	Short: "List documents through a profile's stage",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigureCheck,
}

var (
	setInvokeURL  string
	setStage      string
	setResource   string
	setAPIKey     string
	setDefault    bool
	setNoCheck    bool
	showSecrets   bool
	deleteConfirm bool
)

// stageCheckTimeout bounds the listDocuments call made by set and check.
const stageCheckTimeout = 10 * time.Second

func init() {
	configureCmd.AddCommand(configureSetCmd, configureListCmd, configureShowCmd,
		configureUseCmd, configureDeleteCmd, configureCheckCmd)

	f := configureSetCmd.Flags()
	f.StringVar(&setInvokeURL, "invoke-url", "", "stage invoke URL without the stage path")
	f.StringVar(&setStage, "stage", "", "API Gateway stage name, empty for docrepo serve")
	f.StringVar(&setResource, "resource", "", "resource path (default \""+clientcli.DefaultResource+"\")")
	f.StringVar(&setAPIKey, "api-key", "", "usage-plan API key")
	f.BoolVar(&setDefault, "default", false, "make this the default profile")
	f.BoolVar(&setNoCheck, "no-check", false, "save without calling the stage")

	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print API keys")
	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print API keys")
	configureDeleteCmd.Flags().BoolVarP(&deleteConfirm, "yes", "y", false, "do not ask for confirmation")
}

// loadProfiles returns the profile file, or an empty one when the file
// does not exist and missingOK is set.
func loadProfiles(missingOK bool) (*clientcli.ProfileFile, error) {
	file, err := clientcli.LoadProfiles(clientcli.ConfigPath(cfgFile))
	if err != nil {
		if missingOK && errors.Is(err, os.ErrNotExist) {
			return &clientcli.ProfileFile{}, nil
		}
		return nil, err
	}
	return file, nil
}

func runConfigureSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	file, err := loadProfiles(true)
	if err != nil {
		return err
	}

	p, exists := file.Profiles[name]
	flags := cmd.Flags()
	if flags.Changed("invoke-url") {
		p.InvokeURL = setInvokeURL
	}
	if flags.Changed("stage") {
		p.Stage = setStage
	}
	if flags.Changed("resource") {
		p.Resource = setResource
	}
	if flags.Changed("api-key") {
		p.APIKey = setAPIKey
	}

	if p.InvokeURL == "" {
		p, err = promptStage(p)
		if err != nil {
			return handlePromptError(err)
		}
	}

	if err := p.Validate(); err != nil {
		return err
	}

	if !setNoCheck {
		check, checkErr := checkStage(cmd.Context(), name, p)
		if checkErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: %v\n", checkErr)
			if !confirm("Save profile anyway") {
				return nil
			}
		} else if err := getFormatter().FormatStageCheck(os.Stderr, check); err != nil {
			return err
		}
	}

	if err := file.Set(name, p); err != nil {
		return err
	}
	if setDefault {
		if err := file.Use(name); err != nil {
			return err
		}
	}
	if err := file.Save(clientcli.ConfigPath(cfgFile)); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if !quiet {
		verb := "added"
		if exists {
			verb = "updated"
		}
		fmt.Printf("Profile '%s' %s (%s).\n", name, verb, p.Endpoint())
	}
	return nil
}

// promptStage asks for the invoke URL and stage of a new profile.
func promptStage(p clientcli.Profile) (clientcli.Profile, error) {
	urlPrompt := promptui.Prompt{
		Label:   "Invoke URL",
		Default: clientcli.DefaultEndpoint,
		Validate: func(input string) error {
			return clientcli.Profile{InvokeURL: input}.Validate()
		},
	}
	invokeURL, err := urlPrompt.Run()
	if err != nil {
		return p, err
	}
	p.InvokeURL = invokeURL

	stagePrompt := promptui.Prompt{
		Label:   "Stage (empty for docrepo serve)",
		Default: p.Stage,
		Validate: func(input string) error {
			return clientcli.Profile{InvokeURL: invokeURL, Stage: input}.Validate()
		},
	}
	if p.Stage, err = stagePrompt.Run(); err != nil {
		return p, err
	}

	if p.APIKey == "" {
		keyPrompt := promptui.Prompt{Label: "API key (empty for none)", Mask: '*'}
		if p.APIKey, err = keyPrompt.Run(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	file, err := loadProfiles(true)
	if err != nil {
		return err
	}
	if len(file.Profiles) == 0 {
		fmt.Println("No profiles configured. Run 'docrepo-cli configure set <name>' to create one.")
		return nil
	}
	return getFormatter().FormatProfiles(os.Stdout, file, showSecrets)
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	file, err := loadProfiles(false)
	if err != nil {
		return err
	}
	name, p, err := file.Lookup(profileArg(args))
	if err != nil {
		return err
	}
	return getFormatter().FormatProfile(os.Stdout, name, p, name == file.Default, showSecrets)
}

func runConfigureUse(_ *cobra.Command, args []string) error {
	file, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if err := file.Use(args[0]); err != nil {
		return err
	}
	if err := file.Save(clientcli.ConfigPath(cfgFile)); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if !quiet {
		fmt.Printf("Default profile set to '%s'.\n", args[0])
	}
	return nil
}

func runConfigureDelete(_ *cobra.Command, args []string) error {
	name := args[0]
	file, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if _, ok := file.Profiles[name]; !ok {
		return fmt.Errorf("%w: %s", clientcli.ErrProfileNotFound, name)
	}
	if !deleteConfirm && !confirm(fmt.Sprintf("Delete profile '%s'", name)) {
		return nil
	}
	if err := file.Delete(name); err != nil {
		return err
	}
	if err := file.Save(clientcli.ConfigPath(cfgFile)); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if !quiet {
		fmt.Printf("Profile '%s' deleted.\n", name)
	}
	return nil
}

func runConfigureCheck(cmd *cobra.Command, args []string) error {
	file, err := loadProfiles(false)
	if err != nil {
		return err
	}
	name, p, err := file.Lookup(profileArg(args))
	if err != nil {
		return err
	}
	check, err := checkStage(cmd.Context(), name, p)
	if err != nil {
		return handleError(os.Stderr, err)
	}
	return getFormatter().FormatStageCheck(os.Stdout, check)
}

// profileArg returns the positional name, falling back to --profile and
// DOCREPO_PROFILE.
func profileArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return profileName()
}

// checkStage lists documents through the profile's stage.
func checkStage(ctx context.Context, name string, p clientcli.Profile) (*clientcli.StageCheck, error) {
	cfg := p.Config()
	client, err := clientcli.New(&cfg, clientcli.WithHTTPClient(&http.Client{Timeout: stageCheckTimeout}))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := client.List(ctx)
	if err != nil {
		if errors.Is(err, clientcli.ErrForbidden) {
			return nil, fmt.Errorf("stage %s rejected the API key: %w", cfg.Endpoint, err)
		}
		return nil, fmt.Errorf("list documents at %s: %w", cfg.Endpoint, err)
	}

	return &clientcli.StageCheck{
		Profile:   name,
		Endpoint:  cfg.Endpoint,
		Documents: len(result.Documents),
		TotalSize: result.TotalSize(),
		Latency:   time.Since(start),
	}, nil
}

func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	if errors.Is(err, promptui.ErrInterrupt) {
		os.Exit(130)
	}
	return err == nil
}

// handlePromptError treats an aborted prompt as a cancelled command.
func handlePromptError(err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		os.Exit(130)
	case errors.Is(err, promptui.ErrAbort), errors.Is(err, promptui.ErrEOF):
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
