package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/cortexmem/internal/i18n"
	"github.com/dyike/cortexmem/internal/memory"
)

var languageOptions = []string{
	"English (en)",
	"中文 (zh)",
}

// PromptForTrader prompts the user for the trader whose memory to view
func PromptForTrader(defaultID string) (string, error) {
	var traderID string
	prompt := &survey.Input{
		Message: "Enter the trader ID (e.g., binance_deepseek):",
		Help:    "The ID the trader registers with its API; it is sent as ?trader_id=",
		Default: defaultID,
	}

	err := survey.AskOne(prompt, &traderID, survey.WithValidator(func(val interface{}) error {
		return validateTraderID(val.(string))
	}))
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(traderID), nil
}

func validateTraderID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("trader ID cannot be empty")
	}
	if !memory.ValidTraderID(s) {
		return fmt.Errorf("invalid trader ID (use letters, numbers, dots, underscores and hyphens only)")
	}
	return nil
}

// PromptForLanguage prompts the user to select the display language
func PromptForLanguage(current i18n.Language) (i18n.Language, error) {
	var selected string

	def := languageOptions[0]
	if current == i18n.Chinese {
		def = languageOptions[1]
	}

	prompt := &survey.Select{
		Message: "Select display language:",
		Options: languageOptions,
		Help:    "Press l in the watch view to switch language later.",
		Default: def,
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return languageFromOption(selected), nil
}

func languageFromOption(opt string) i18n.Language {
	if strings.HasSuffix(opt, "(zh)") {
		return i18n.Chinese
	}
	return i18n.English
}
