package prompts

import (
	"strings"
	"testing"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

func TestBuild_RequiresSession(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Error("expected error without session")
	}
}

func TestBuild_MessageShape(t *testing.T) {
	gs := session.NewGameSession("test")
	gs.Append(chat.RolePlayer, "Arion", "I enter the tavern.")
	gs.Append(chat.RoleNarrator, "", "The tavern is loud and warm.")

	chars := []*actor.CharacterSpec{{Name: "Arion", Class: "Wojownik", Race: "Human", Level: 1, HP: 10, MaxHP: 10}}

	messages, err := New().
		WithSession(gs).
		WithCharacters(chars).
		WithPlayerMessage("I order an ale.", "Arion").
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// System prompt + 2 history + 1 player turn.
	if len(messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(messages))
	}
	if messages[0].Role != chat.RoleSystem {
		t.Errorf("messages[0].Role = %s, want system", messages[0].Role)
	}
	if !strings.Contains(messages[0].Content, "[IMG:") {
		t.Error("system prompt missing tag instructions")
	}
	if !strings.Contains(messages[0].Content, "Arion") {
		t.Error("system prompt missing character summary")
	}
	if messages[3].Content != "Arion: I order an ale." {
		t.Errorf("player turn = %q", messages[3].Content)
	}
}

func TestBuild_HistoryWindowed(t *testing.T) {
	gs := session.NewGameSession("test")
	for i := 0; i < 30; i++ {
		gs.Append(chat.RoleNarrator, "", "Filler narration.")
	}

	messages, err := New().
		WithSession(gs).
		WithHistoryLimit(5).
		WithPlayerMessage("Onward.", "").
		Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// System + 5 history + player turn.
	if len(messages) != 7 {
		t.Errorf("got %d messages, want 7", len(messages))
	}
}

func TestBuild_StateSummaryIncludesCombat(t *testing.T) {
	gs := session.NewGameSession("test")
	gs.InCombat = true
	gs.Combatants = []session.Combatant{
		{Name: "Arion", Kind: session.CombatantPlayer, Initiative: 15},
		{Name: "Goblin", Kind: session.CombatantMonster, Initiative: 9},
	}
	gs.QuestLog = "Escape the cave"

	messages, err := New().WithSession(gs).Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	system := messages[0].Content
	if !strings.Contains(system, "Combat is in progress") {
		t.Error("system prompt missing combat state")
	}
	if !strings.Contains(system, "Escape the cave") {
		t.Error("system prompt missing quest log")
	}
}
