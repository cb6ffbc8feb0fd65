package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/text-adventure/internal/models"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// SDKClient completes through the official Go SDK instead of raw REST.
// A client is created per call because the key belongs to the session, not
// to the process.
type SDKClient struct {
	model   string
	timeout time.Duration
}

// NewSDKClient creates an SDK-backed client. A zero timeout means no limit.
func NewSDKClient(model string, timeout time.Duration) *SDKClient {
	if model == "" {
		model = DefaultModel
	}
	return &SDKClient{model: model, timeout: timeout}
}

func (c *SDKClient) Complete(ctx context.Context, apiKey string, history []models.Message) (string, error) {
	system, turns, err := sdkContents(history)
	if err != nil {
		return "", err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", &ProviderError{Message: err.Error(), Err: err}
	}
	defer client.Close()

	model := client.GenerativeModel(c.model)
	model.SetTemperature(Temperature)
	model.SetTopK(TopK)
	model.SetTopP(TopP)
	model.SetMaxOutputTokens(MaxOutputTokens)
	model.SystemInstruction = system

	// The last turn is sent as the new message; everything before it is
	// chat history.
	cs := model.StartChat()
	last := turns[len(turns)-1]
	cs.History = turns[:len(turns)-1]

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", sdkError(err)
	}
	return firstText(resp)
}

func (c *SDKClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// sdkContents applies the same split as BuildRequest and converts the result
// to SDK types.
func sdkContents(history []models.Message) (*genai.Content, []*genai.Content, error) {
	system, turns, err := splitHistory(history)
	if err != nil {
		return nil, nil, err
	}
	var instruction *genai.Content
	if system != nil {
		instruction = &genai.Content{Parts: []genai.Part{genai.Text(system.Content)}}
	}
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		parts := make([]genai.Part, 0, len(t.Parts))
		for _, p := range t.Parts {
			parts = append(parts, genai.Text(p.Text))
		}
		contents = append(contents, &genai.Content{Role: t.Role, Parts: parts})
	}
	return instruction, contents, nil
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &ProviderError{Message: noCandidatesMessage}
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", &ProviderError{Message: "no content returned from Gemini"}
	}
	text, ok := content.Parts[0].(genai.Text)
	if !ok {
		return "", &ProviderError{Message: fmt.Sprintf("unexpected response type from Gemini: %T", content.Parts[0])}
	}
	return string(text), nil
}

func sdkError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = fallbackMessage
		}
		return &ProviderError{StatusCode: gerr.Code, Message: msg, Err: err}
	}
	return &ProviderError{Message: err.Error(), Err: err}
}
