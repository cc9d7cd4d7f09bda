package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	contractx "github.com/tanpawarit/Chative-Vehicle-Advisor/agent/contract"
)

var _ contractx.Classifier = (*OpenAIClassifier)(nil)

// OpenAIClassifier classifies with a single chat completion through the openai-go SDK.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	prompt      string
	temperature float64
}

func NewOpenAIClassifier(client *openai.Client, model, prompt string, temperature float64) (*OpenAIClassifier, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: openai client is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: classifier model is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: classifier prompt", contractx.ErrPromptMissing)
	}
	return &OpenAIClassifier{
		client:      client,
		model:       strings.TrimSpace(model),
		prompt:      prompt,
		temperature: temperature,
	}, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, req contractx.ClassifyRequest) (contractx.Classification, error) {
	input, err := classifyInput(req)
	if err != nil {
		return contractx.Classification{}, err
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.prompt),
			openai.UserMessage(input),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return contractx.Classification{}, fmt.Errorf("%w: classify completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return contractx.Classification{}, fmt.Errorf("%w: classify completion has no choices", contractx.ErrSchemaViolation)
	}

	out, err := parseClassification(resp.Choices[0].Message.Content)
	if err != nil {
		return contractx.Classification{}, err
	}
	return contractx.Classification{
		Agent:  strings.TrimSpace(out.Agent),
		Reason: strings.TrimSpace(out.Reason),
	}, nil
}

// parseClassification accepts a bare JSON object or one wrapped in prose or code fences.
func parseClassification(content string) (classifierLLMOutput, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return classifierLLMOutput{}, fmt.Errorf("%w: classification is not a json object", contractx.ErrSchemaViolation)
	}

	var out classifierLLMOutput
	if err := json.Unmarshal([]byte(content[start:end+1]), &out); err != nil {
		return classifierLLMOutput{}, fmt.Errorf("%w: decode classification: %v", contractx.ErrSchemaViolation, err)
	}
	return out, nil
}
