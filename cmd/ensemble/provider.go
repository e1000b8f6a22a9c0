package main

import (
	"fmt"
	"strings"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/ensemble/logging"
	"github.com/hupe1980/ensemble/model"
	"github.com/hupe1980/ensemble/model/anthropic"
	"github.com/hupe1980/ensemble/model/openai"
	"github.com/hupe1980/ensemble/participant"
)

// newModel builds the configured provider wrapped with retries.
func newModel(cfg Config, logger logging.Logger) (model.Model, error) {
	var m model.Model

	switch cfg.Provider {
	case "openai":
		m = openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.OpenAIAPIKey
			o.Temperature = cfg.Temperature
			o.MaxRetries = 0
			if cfg.ModelName != "" {
				o.Model = cfg.ModelName
			}
		})
	case "anthropic":
		m = anthropic.NewModel(func(o *anthropic.Options) {
			o.APIKey = cfg.AnthropicAPIKey
			o.Temperature = cfg.Temperature
			o.MaxRetries = 0
			if cfg.ModelName != "" {
				o.Model = sdkanthropic.Model(cfg.ModelName)
			}
		})
	case "mock":
		return mockModel(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	return model.WithRetry(m, func(o *model.RetryOptions) {
		o.MaxAttempts = cfg.Retries
		o.Logger = logger
	}), nil
}

// mockModel answers offline with canned replies so every mode can be tried
// without credentials.
func mockModel() *model.MockModel {
	m := model.NewMockModel("mock", "mock")
	m.RespondContaining("quality assurance specialist", "NO, the descriptions need another pass.")
	m.RespondContaining("reached a consensus", "NO, the tone still differs.")
	m.RespondContaining("Based on this feedback", participant.PoeticDesigner+", "+participant.MarketingCopywriter)
	m.RespondContaining("selecting the best clothing description", "A timeless piece, simulated for an offline run.")
	m.AddResponder(func(prompt string) (string, bool) {
		first, _, _ := strings.Cut(prompt, "\n")
		return "Simulated reply (" + strings.TrimSpace(first) + ")", true
	})
	return m
}
