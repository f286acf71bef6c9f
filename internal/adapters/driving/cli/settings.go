package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/danielfleischer/elfeed-ai/internal/adapters/driven/ai"
	"github.com/danielfleischer/elfeed-ai/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider and feed list.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long:  `Configure the LLM provider used for summarization.`,
	RunE:  runSettingsLLM,
}

var settingsFeedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "List configured feed URLs",
	RunE:  runSettingsFeedsList,
}

var settingsFeedsAddCmd = &cobra.Command{
	Use:   "add <url>...",
	Short: "Add feed URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsFeedsAdd,
}

var settingsFeedsRemoveCmd = &cobra.Command{
	Use:   "remove <url>...",
	Short: "Remove feed URLs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSettingsFeedsRemove,
}

func init() {
	settingsFeedsCmd.AddCommand(settingsFeedsAddCmd)
	settingsFeedsCmd.AddCommand(settingsFeedsRemoveCmd)
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsFeedsCmd)
	rootCmd.AddCommand(settingsCmd)
}

// Config keys used by the settings commands.
const (
	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"
	keyFeedURLs    = "feeds.urls"
)

// llmSettingsFromConfig reads LLM settings out of the config store.
func llmSettingsFromConfig() *domain.LLMSettings {
	if configStore == nil {
		return nil
	}
	return &domain.LLMSettings{
		Provider: domain.AIProvider(configStore.GetString(keyLLMProvider)),
		Model:    configStore.GetString(keyLLMModel),
		BaseURL:  configStore.GetString(keyLLMBaseURL),
		APIKey:   configStore.GetString(keyLLMAPIKey),
	}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	settings := llmSettingsFromConfig()
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Model)
	if settings.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.BaseURL)
	}
	if settings.Provider.RequiresAPIKey() {
		if settings.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	urls := configStore.GetStringSlice(keyFeedURLs)
	cmd.Println("[Feeds]")
	if len(urls) == 0 {
		cmd.Println("  (none)")
	}
	for _, url := range urls {
		cmd.Printf("  %s\n", url)
	}
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select LLM Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultLLMModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var baseURL string
	if selectedProvider.IsLocal() {
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		baseURL = readLine(reader)
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	settings := &domain.LLMSettings{
		Provider: selectedProvider,
		Model:    model,
		BaseURL:  baseURL,
		APIKey:   apiKey,
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := ai.ValidateLLMConfig(settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	for key, value := range map[string]string{
		keyLLMProvider: selectedProvider.String(),
		keyLLMModel:    model,
		keyLLMBaseURL:  baseURL,
		keyLLMAPIKey:   apiKey,
	} {
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("saving %s: %w", key, err)
		}
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

func runSettingsFeedsList(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	urls := configStore.GetStringSlice(keyFeedURLs)
	if len(urls) == 0 {
		cmd.Println("No feeds configured. Run 'elfeed-ai settings feeds add <url>'.")
		return nil
	}
	for _, url := range urls {
		cmd.Println(url)
	}
	return nil
}

func runSettingsFeedsAdd(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	urls := configStore.GetStringSlice(keyFeedURLs)
	for _, url := range args {
		if slices.Contains(urls, url) {
			cmd.Printf("Already configured: %s\n", url)
			continue
		}
		urls = append(urls, url)
		cmd.Printf("Added: %s\n", url)
	}

	return configStore.Set(keyFeedURLs, urls)
}

func runSettingsFeedsRemove(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	urls := configStore.GetStringSlice(keyFeedURLs)
	for _, url := range args {
		before := len(urls)
		urls = slices.DeleteFunc(urls, func(u string) bool { return u == url })
		if len(urls) < before {
			cmd.Printf("Removed: %s\n", url)
		} else {
			cmd.Printf("Not configured: %s\n", url)
		}
	}

	return configStore.Set(keyFeedURLs, urls)
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
