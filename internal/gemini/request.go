package gemini

import (
	"errors"
	"fmt"

	"github.com/tatianab/text-adventure/internal/models"
)

// Fixed sampling parameters sent with every request.
const (
	Temperature     = 0.9
	TopK            = 40
	TopP            = 0.95
	MaxOutputTokens = 1024
)

// Provider role names.
const (
	roleUser  = "user"
	roleModel = "model"
)

// OpeningCue is sent as the only user turn when the history holds nothing but
// instructions, since the endpoint rejects an empty contents list.
const OpeningCue = "Begin the adventure."

var (
	ErrMultipleSystemMessages = errors.New("history contains more than one system message")
	ErrEmptyHistory           = errors.New("history has no messages to send")
	ErrUnknownRole            = errors.New("unknown message role")
)

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// GenerateContentRequest is the body of a generateContent call.
type GenerateContentRequest struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	GenerationConfig  GenerationConfig `json:"generationConfig"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content Content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// BuildRequest maps a session history onto the provider schema. The system
// message travels in SystemInstruction; user and assistant turns become
// contents in their original order.
func BuildRequest(history []models.Message) (*GenerateContentRequest, error) {
	system, turns, err := splitHistory(history)
	if err != nil {
		return nil, err
	}

	req := &GenerateContentRequest{
		Contents: turns,
		GenerationConfig: GenerationConfig{
			Temperature:     Temperature,
			TopK:            TopK,
			TopP:            TopP,
			MaxOutputTokens: MaxOutputTokens,
		},
	}
	if system != nil {
		req.SystemInstruction = &Content{Parts: []Part{{Text: system.Content}}}
	}
	return req, nil
}

func splitHistory(history []models.Message) (*models.Message, []Content, error) {
	var system *models.Message
	turns := make([]Content, 0, len(history))
	for i, msg := range history {
		if msg.Role == models.RoleSystem {
			if system != nil {
				return nil, nil, ErrMultipleSystemMessages
			}
			system = &history[i]
			continue
		}
		role, err := providerRole(msg.Role)
		if err != nil {
			return nil, nil, err
		}
		turns = append(turns, Content{
			Role:  role,
			Parts: []Part{{Text: msg.Content}},
		})
	}
	if len(turns) == 0 {
		if system == nil {
			return nil, nil, ErrEmptyHistory
		}
		turns = append(turns, Content{Role: roleUser, Parts: []Part{{Text: OpeningCue}}})
	}
	return system, turns, nil
}

func providerRole(r models.Role) (string, error) {
	switch r {
	case models.RoleUser:
		return roleUser, nil
	case models.RoleAssistant:
		return roleModel, nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnknownRole, r)
}
