package cli

import (
	"errors"

	"github.com/AlecAivazis/survey/v2/terminal"
)

// runInteractiveMode asks for a trader and language, then opens the watch view.
func runInteractiveMode(a *app) error {
	DisplayWelcomeBanner(a.out)

	traderID, err := PromptForTrader(a.cfg.TraderID)
	if err != nil {
		return promptErr(err)
	}
	lang, err := PromptForLanguage(a.language(""))
	if err != nil {
		return promptErr(err)
	}

	return runWatch(a, watchOptions{
		traderID: traderID,
		lang:     lang,
		interval: a.cfg.RefreshInterval,
	})
}

// promptErr turns Ctrl+C at a prompt into a clean exit.
func promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}
