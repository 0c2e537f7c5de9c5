package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/mvirta/productgen/config"
)

// providerKeyVars lists the credential env vars; at least one must be set
// for the pipeline to have a provider to call.
var providerKeyVars = []string{"OPENAI_API_KEY", "GEMINI_API_KEY", "MISTRAL_API_KEY"}

// hasProviderKey reports whether at least one provider credential is set.
func hasProviderKey() bool {
	for _, v := range providerKeyVars {
		if os.Getenv(v) != "" {
			return true
		}
	}
	return false
}

// isInteractiveTerminal returns true if both stdin and stdout are TTYs.
// This is used to determine if we can run the interactive setup wizard.
func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// runSetupWizard runs an interactive wizard to collect provider API keys.
// Returns true if at least one key was provided and saved.
func runSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("productgen - First-time Setup"))
	fmt.Println()
	fmt.Println("Enter API keys for the providers you want to use. Leave blank to skip.")
	fmt.Println()

	var openaiKey, geminiKey, mistralKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API Key").
				Description("Get yours at https://platform.openai.com/api-keys").
				Value(&openaiKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				Description("Get yours at https://aistudio.google.com/apikey").
				Value(&geminiKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Mistral API Key").
				Description("Get yours at https://console.mistral.ai/api-keys (text generation only)").
				Value(&mistralKey),
		),
	).WithTheme(huh.ThemeBase16())

	err := form.Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	keys := map[string]string{
		"OPENAI_API_KEY":  strings.TrimSpace(openaiKey),
		"GEMINI_API_KEY":  strings.TrimSpace(geminiKey),
		"MISTRAL_API_KEY": strings.TrimSpace(mistralKey),
	}
	haveKey := false
	for _, v := range keys {
		if v != "" {
			haveKey = true
		}
	}
	if !haveKey {
		fmt.Println("\nNo keys entered; at least one provider is required.")
		return false
	}

	configPath, err := writeEnvFile(keys)
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		return false
	}

	// Set values in current process
	for k, v := range keys {
		if v != "" {
			os.Setenv(k, v)
		}
	}

	successStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("42")).
		Bold(true)
	pathStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()

	return true
}

// writeEnvFile writes the non-empty keys to the config env file.
func writeEnvFile(keys map[string]string) (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	path := filepath.Join(dir, config.EnvFileName)

	var sb strings.Builder
	for _, k := range providerKeyVars {
		if v := keys[k]; v != "" {
			fmt.Fprintf(&sb, "%s=%s\n", k, v)
		}
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}
