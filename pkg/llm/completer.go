package llm

import (
	"context"
	"strings"

	"github.com/nikogura/cover-letter/pkg/config"
	"github.com/pkg/errors"
)

// Sampling parameters shared by every provider.
const (
	Temperature = 0.2
	TopP        = 0.9
	MaxTokens   = 1024
)

// Completer turns a prompt into completion text. On failure the returned
// text is empty and err describes the cause.
type Completer interface {
	Complete(ctx context.Context, prompt string) (text string, err error)
	Model() string
}

// NewCompleter builds the completer selected by cfg.Provider.
func NewCompleter(cfg config.Config) (completer Completer, err error) {
	switch cfg.GetProvider() {
	case config.ProviderOpenAI:
		completer = NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case config.ProviderAnthropic:
		// The stock config carries the NVIDIA endpoint; it never applies here.
		baseURL := cfg.BaseURL
		if strings.TrimRight(baseURL, "/") == DefaultBaseURL {
			baseURL = ""
		}
		completer = NewAnthropicClient(cfg.APIKey, cfg.Model, baseURL)
	default:
		err = errors.Errorf("unknown provider %q", cfg.Provider)
	}
	return completer, err
}
