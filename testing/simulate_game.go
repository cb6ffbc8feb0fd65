package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/tatianab/text-adventure/internal/config"
	"github.com/tatianab/text-adventure/internal/engine"
	"github.com/tatianab/text-adventure/internal/gemini"
	"github.com/tatianab/text-adventure/internal/models"
)

const maxTurns = 10

const playerInstructions = `You are a player in a text-based adventure game run by a Game Master.
Read the Game Master's last message and decide what your character does next.
Be creative but stay within the world's logic. Reply with ONLY the action, one short sentence, no commentary.`

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.APIKey == "" {
		log.Fatalf("Set GEMINI_API_KEY to run the simulation")
	}

	completer := gemini.NewClient(cfg.Provider.Endpoint, cfg.Provider.Model, cfg.Provider.Timeout)

	genre, _ := models.LookupGenre("fantasy")
	stats := models.Stats{Strength: 3, Intelligence: 4, Dexterity: 3}

	// The Game Master plays the real session.
	gm := engine.NewEngine(completer, models.NewSession("Robin", genre.Name, stats), cfg.APIKey, nil)

	// The player is another model with its own history. The Game Master's
	// messages are its "user" turns and its actions are its own replies.
	player := models.NewSession("Robin", genre.Name, stats)
	player.Append(models.RoleSystem, playerInstructions)

	fmt.Println("--- Opening ---")
	outcome, err := gm.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to start game: %v", err)
	}
	fmt.Printf("GM: %s\n\n", outcome)

	for turn := 1; turn <= maxTurns; turn++ {
		fmt.Printf("--- Turn %d ---\n", turn)

		player.Append(models.RoleUser, outcome)
		action, err := completer.Complete(ctx, cfg.APIKey, player.History())
		if err != nil {
			fmt.Printf("Player failed to act: %v\n", err)
			action = "look around"
		}
		action = strings.TrimSpace(action)
		player.Append(models.RoleAssistant, action)
		fmt.Printf("Player Action: %s\n", action)

		outcome, err = gm.Send(ctx, action)
		if err != nil {
			fmt.Printf("Error processing turn: %v\n", err)
			break
		}
		fmt.Printf("GM: %s\n\n", outcome)
	}

	fmt.Printf("History: %d messages\n", gm.Session().Len())
}
