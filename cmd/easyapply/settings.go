package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/easyapply/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Runtime settings subcommands",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the runtime settings with secrets masked",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Update runtime settings",
	Long: "Updates and persists runtime settings. Keys: email, password, openai_api_key, openai_model, database_url, " +
		"and profile.<field> for applicant profile entries.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSettingsSet,
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	printSettings(setupSettings(cfg, setupLogger(debug)).Safe())
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoad(logger)
	s := setupSettings(cfg, logger)

	patch, err := parsePatch(args, s.Get().Profile)
	if err != nil {
		return err
	}
	if _, err := s.Update(patch); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	printSettings(s.Safe())
	return nil
}

// parsePatch turns key=value arguments into a Patch. Profile keys are merged
// into current.
func parsePatch(args []string, current map[string]string) (settings.Patch, error) {
	var p settings.Patch
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return p, fmt.Errorf("expected key=value, got %q", arg)
		}
		v := value
		switch key {
		case "email", "linkedin_email":
			p.LinkedinEmail = &v
		case "password", "linkedin_password":
			p.LinkedinPassword = &v
		case "openai_api_key":
			p.OpenAIAPIKey = &v
		case "openai_model":
			p.OpenAIModel = &v
		case "database_url":
			p.DatabaseURL = &v
		default:
			field, isProfile := strings.CutPrefix(key, "profile.")
			if !isProfile || field == "" {
				return p, fmt.Errorf("unknown setting %q", key)
			}
			if p.Profile == nil {
				p.Profile = make(map[string]string, len(current)+1)
				for k, cv := range current {
					p.Profile[k] = cv
				}
			}
			p.Profile[field] = v
		}
	}
	return p, nil
}

func printSettings(v settings.Values) {
	fmt.Printf("%-20s %s\n", "email", v.LinkedinEmail)
	fmt.Printf("%-20s %s\n", "password", v.LinkedinPassword)
	fmt.Printf("%-20s %s\n", "openai_api_key", v.OpenAIAPIKey)
	fmt.Printf("%-20s %s\n", "openai_model", v.OpenAIModel)
	fmt.Printf("%-20s %s\n", "database_url", v.DatabaseURL)
	for k, pv := range v.Profile {
		fmt.Printf("%-20s %s\n", "profile."+k, pv)
	}
}
