package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	openrouterx "github.com/tanpawarit/crew-assistants/pkg/openrouter"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"openai/gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	VerifyModel        bool          `envconfig:"VERIFY_MODEL" split_words:"true" default:"false"`

	// RoleModels overrides the model per role id, e.g. "summarizer:openai/gpt-4o".
	RoleModels map[string]string `envconfig:"ROLE_MODELS" split_words:"true"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor resolves the model settings for a role. Precedence is
// ROLE_MODELS env, then the role definition, then the default model.
func (c Config) OpenRouterFor(role contractx.Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	if v := strings.TrimSpace(role.Model); v != "" {
		modelName = v
	}
	if v := strings.TrimSpace(c.RoleModels[role.ID]); v != "" {
		modelName = v
	}

	temp := c.Temperature
	if role.Temperature != nil && *role.Temperature >= 0 {
		temp = *role.Temperature
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
