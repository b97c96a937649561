package session

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mwisniewski/tale-engine/pkg/chat"
)

func TestAppend_SequenceMonotonic(t *testing.T) {
	gs := NewGameSession("test")

	// Rapid appends can land on the same clock tick; sequence must
	// still be strictly increasing.
	for i := 0; i < 100; i++ {
		gs.Append(chat.RolePlayer, "Arion", "I open the door.")
	}

	for i := 1; i < len(gs.Messages); i++ {
		if gs.Messages[i].Sequence <= gs.Messages[i-1].Sequence {
			t.Fatalf("sequence not monotonic at %d: %d <= %d",
				i, gs.Messages[i].Sequence, gs.Messages[i-1].Sequence)
		}
	}
}

func TestHistoryWindow(t *testing.T) {
	gs := NewGameSession("test")
	for i := 0; i < 10; i++ {
		gs.Append(chat.RoleNarrator, "", "The story continues.")
	}

	if got := gs.HistoryWindow(4); len(got) != 4 {
		t.Errorf("HistoryWindow(4) = %d messages, want 4", len(got))
	}
	if got := gs.HistoryWindow(0); len(got) != 10 {
		t.Errorf("HistoryWindow(0) = %d messages, want all 10", len(got))
	}
	if got := gs.HistoryWindow(50); len(got) != 10 {
		t.Errorf("HistoryWindow(50) = %d messages, want all 10", len(got))
	}
}

func TestAddCharacter_Deduplicates(t *testing.T) {
	gs := NewGameSession("test")
	id := uuid.New()

	gs.AddCharacter(id)
	gs.AddCharacter(id)
	gs.AddCharacter(uuid.New())

	if len(gs.CharacterIDs) != 2 {
		t.Errorf("CharacterIDs = %d, want 2", len(gs.CharacterIDs))
	}
}

func TestDeepCopy(t *testing.T) {
	gs := NewGameSession("test")
	gs.QuestLog = "Find the caravan"
	gs.Append(chat.RolePlayer, "Arion", "I search the wreck.")

	cp, err := gs.DeepCopy()
	if err != nil {
		t.Fatalf("DeepCopy() error: %v", err)
	}

	cp.QuestLog = "changed"
	cp.Messages[0].Text = "changed"

	if gs.QuestLog != "Find the caravan" {
		t.Error("copy mutation leaked into original quest log")
	}
	if gs.Messages[0].Text != "I search the wreck." {
		t.Error("copy mutation leaked into original messages")
	}
}

func TestThresholdFor(t *testing.T) {
	tests := []struct {
		level int
		want  int
		ok    bool
	}{
		{1, 0, true},
		{2, 300, true},
		{3, 900, true},
		{20, 355000, true},
		{0, 0, false},
		{21, 0, false},
	}
	for _, tt := range tests {
		got, ok := ThresholdFor(tt.level)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ThresholdFor(%d) = %d, %v; want %d, %v", tt.level, got, ok, tt.want, tt.ok)
		}
	}
}
