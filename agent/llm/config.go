package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Vehicle-Advisor/pkg/openrouter"
)

// Role selects which override pair applies to a model.
type Role string

const (
	RoleClassifier Role = "classifier"
	RoleSpecialist Role = "specialist"
)

const (
	BackendGraph  = "graph"
	BackendOpenAI = "openai"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ClassifierModel       string  `envconfig:"CLASSIFIER_MODEL" split_words:"true"`
	SpecialistModel       string  `envconfig:"SPECIALIST_MODEL" split_words:"true"`
	ClassifierTemperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" split_words:"true" default:"0"`
	SpecialistTemperature float32 `envconfig:"SPECIALIST_TEMPERATURE" split_words:"true" default:"-1"`

	ClassifierBackend string        `envconfig:"CLASSIFIER_BACKEND" split_words:"true" default:"graph"`
	OracleTimeout     time.Duration `envconfig:"ORACLE_TIMEOUT" split_words:"true" default:"30s"`
	MaxToolRounds     int           `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"4"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	switch c.Backend() {
	case BackendGraph, BackendOpenAI:
	default:
		return fmt.Errorf("%w: classifier backend %q is not one of graph, openai", contractx.ErrValidation, c.ClassifierBackend)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("%w: oracle timeout must be > 0", contractx.ErrValidation)
	}
	if c.MaxToolRounds <= 0 {
		return fmt.Errorf("%w: max tool rounds must be > 0", contractx.ErrValidation)
	}
	return nil
}

// Backend is the normalized classifier backend name; empty means graph.
func (c Config) Backend() string {
	b := strings.ToLower(strings.TrimSpace(c.ClassifierBackend))
	if b == "" {
		return BackendGraph
	}
	return b
}

func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case RoleClassifier:
		if v := strings.TrimSpace(c.ClassifierModel); v != "" {
			modelName = v
		}
		if c.ClassifierTemperature >= 0 {
			temp = c.ClassifierTemperature
		}
	case RoleSpecialist:
		if v := strings.TrimSpace(c.SpecialistModel); v != "" {
			modelName = v
		}
		if c.SpecialistTemperature >= 0 {
			temp = c.SpecialistTemperature
		}
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
