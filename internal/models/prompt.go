package models

import (
	"bytes"
	_ "embed"
	"text/template"
)

//go:embed prompts/system_prompt.txt
var systemPromptText string

var systemPromptTmpl = template.Must(template.New("system_prompt").Parse(systemPromptText))

// SystemPrompt renders the Game Master instructions for the current player.
// The output depends only on the session's name, genre and stats.
func (s *Session) SystemPrompt() (string, error) {
	var buf bytes.Buffer
	data := struct {
		PlayerName string
		Genre      string
		Stats      Stats
	}{
		PlayerName: s.PlayerName,
		Genre:      s.Genre,
		Stats:      s.Stats,
	}
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
