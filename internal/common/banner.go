package common

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application banner and logs the effective setup
func PrintBanner(config *Config, logger arbor.ILogger) {
	banner.Print("LegalAid", GetVersion())

	logger.Info().
		Str("version", GetFullVersion()).
		Str("environment", config.Environment).
		Str("provider", config.LLM.DefaultProvider).
		Str("patterns", config.Patterns.Path).
		Str("language", config.Localization.DefaultLanguage).
		Msg("Legal assistant starting")
}
