package directive

import (
	"reflect"
	"testing"
)

func TestParse_NoTags(t *testing.T) {
	texts := []string{
		"",
		"The cavern mouth yawns before you.",
		"Mind the  double  spaces and\n\n\nblank lines stay as-is.",
		"A signpost reads [North] and [South: 3 miles].",
	}
	for _, raw := range texts {
		narrative, directives := Parse(raw)
		if narrative != raw {
			t.Errorf("Parse(%q) narrative = %q, want unchanged", raw, narrative)
		}
		if len(directives) != 0 {
			t.Errorf("Parse(%q) yielded %d directives, want 0", raw, len(directives))
		}
	}
}

func TestParse_SceneImage(t *testing.T) {
	raw := "You step into the hall. [IMG: epic fantasy art, a torchlit great hall]"
	narrative, directives := Parse(raw)

	if narrative != "You step into the hall." {
		t.Errorf("narrative = %q", narrative)
	}
	if len(directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(directives))
	}
	img, ok := directives[0].(SceneImage)
	if !ok {
		t.Fatalf("directive type = %T, want SceneImage", directives[0])
	}
	if img.Prompt != "epic fantasy art, a torchlit great hall" {
		t.Errorf("prompt = %q", img.Prompt)
	}
}

func TestParse_SingletonFirstMatchWins(t *testing.T) {
	raw := "Dusk falls. [TLO: a] The road bends. [TLO: b]"
	narrative, directives := Parse(raw)

	if narrative != "Dusk falls. The road bends." {
		t.Errorf("narrative = %q", narrative)
	}
	if len(directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(directives))
	}
	bg, ok := directives[0].(BackgroundKeyword)
	if !ok || bg.Keyword != "a" {
		t.Errorf("directive = %#v, want BackgroundKeyword{a}", directives[0])
	}
}

func TestParse_TagTable(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Directive
	}{
		{
			name: "map image",
			raw:  "[MAPA: top-down dungeon map, stone corridors]",
			want: MapImage{Prompt: "top-down dungeon map, stone corridors"},
		},
		{
			name: "quest update",
			raw:  "[ZADANIE: Find the missing caravan before nightfall]",
			want: QuestUpdate{Text: "Find the missing caravan before nightfall"},
		},
		{
			name: "choice set",
			raw:  "[WYBÓR: Attack the guard; Sneak past; Bribe him]",
			want: ChoiceSet{Options: []string{"Attack the guard", "Sneak past", "Bribe him"}},
		},
		{
			name: "choice set ascii alias",
			raw:  "[WYBOR: Left; Right]",
			want: ChoiceSet{Options: []string{"Left", "Right"}},
		},
		{
			name: "loot with description",
			raw:  "[LOOT: Arion;Sword;A rusty blade]",
			want: LootGrant{CharacterName: "Arion", ItemName: "Sword", Description: "A rusty blade"},
		},
		{
			name: "loot without description",
			raw:  "[LOOT: Arion;Torch]",
			want: LootGrant{CharacterName: "Arion", ItemName: "Torch"},
		},
		{
			name: "experience grant",
			raw:  "[XP: Arion;50]",
			want: ExperienceGrant{CharacterName: "Arion", Amount: 50},
		},
		{
			name: "npc introduced",
			raw:  "[NPC: Borek;a gruff dwarven smith;portrait of a dwarven smith, oil painting]",
			want: NpcIntroduced{Name: "Borek", Description: "a gruff dwarven smith", PortraitPrompt: "portrait of a dwarven smith, oil painting"},
		},
		{
			name: "npc removed",
			raw:  "[NPC_REMOVE: Borek]",
			want: NpcRemoved{Name: "Borek"},
		},
		{
			name: "combat start",
			raw:  "[WALKA: START;Goblin;Goblin]",
			want: CombatStart{MonsterNames: []string{"Goblin", "Goblin"}},
		},
		{
			name: "combat end",
			raw:  "[WALKA: KONIEC]",
			want: CombatEnd{},
		},
		{
			name: "lowercase tag name",
			raw:  "[img: a quiet forest clearing]",
			want: SceneImage{Prompt: "a quiet forest clearing"},
		},
		{
			name: "quoted fields are trimmed",
			raw:  `[LOOT: "Arion";'Sword';A rusty blade]`,
			want: LootGrant{CharacterName: "Arion", ItemName: "Sword", Description: "A rusty blade"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrative, directives := Parse(tt.raw)
			if narrative != "" {
				t.Errorf("narrative = %q, want empty", narrative)
			}
			if len(directives) != 1 {
				t.Fatalf("got %d directives, want 1", len(directives))
			}
			if !reflect.DeepEqual(directives[0], tt.want) {
				t.Errorf("directive = %#v, want %#v", directives[0], tt.want)
			}
		})
	}
}

func TestParse_MalformedDropped(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"non-integer xp", "[XP: Arion;lots]"},
		{"negative xp", "[XP: Arion;-5]"},
		{"xp missing amount", "[XP: Arion]"},
		{"loot missing item", "[LOOT: Arion]"},
		{"empty img", "[IMG:  ]"},
		{"combat unknown kind", "[WALKA: PAUZA]"},
		{"npc empty name", "[NPC: ;a stranger]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrative, directives := Parse("Before. " + tt.raw + " After.")
			if len(directives) != 0 {
				t.Errorf("got %d directives, want 0: %#v", len(directives), directives)
			}
			// The tag is still stripped from the narrative.
			if narrative != "Before. After." {
				t.Errorf("narrative = %q", narrative)
			}
		})
	}
}

func TestParse_MalformedDoesNotStopScan(t *testing.T) {
	raw := "[XP: Arion;lots] The fight is won. [XP: Arion;100]"
	narrative, directives := Parse(raw)

	if narrative != "The fight is won." {
		t.Errorf("narrative = %q", narrative)
	}
	if len(directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(directives))
	}
	if xp := directives[0].(ExperienceGrant); xp.Amount != 100 {
		t.Errorf("amount = %d, want 100", xp.Amount)
	}
}

func TestParse_ManyCardinalityCollectsAll(t *testing.T) {
	raw := "[LOOT: Arion;Sword;old] treasure [LOOT: Mira;Gem;sparkling] [XP: Arion;25] [XP: Mira;25]"
	_, directives := Parse(raw)

	if len(directives) != 4 {
		t.Fatalf("got %d directives, want 4", len(directives))
	}
	// Document order is preserved.
	if _, ok := directives[0].(LootGrant); !ok {
		t.Errorf("directives[0] = %T, want LootGrant", directives[0])
	}
	if xp, ok := directives[3].(ExperienceGrant); !ok || xp.CharacterName != "Mira" {
		t.Errorf("directives[3] = %#v", directives[3])
	}
}

func TestParse_EscapedBracketInPayload(t *testing.T) {
	raw := `[ZADANIE: Recover the rune \[of sealing\]]`
	_, directives := Parse(raw)

	if len(directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(directives))
	}
	q := directives[0].(QuestUpdate)
	if q.Text != `Recover the rune \[of sealing]` {
		t.Errorf("text = %q", q.Text)
	}
}

func TestParse_UnterminatedTagLeftAlone(t *testing.T) {
	raw := "The ledger ends abruptly: [IMG: a smudge of ink"
	narrative, directives := Parse(raw)

	if narrative != raw {
		t.Errorf("narrative = %q, want unchanged", narrative)
	}
	if len(directives) != 0 {
		t.Errorf("got %d directives, want 0", len(directives))
	}
}

func TestParse_MixedNarrativeCleanup(t *testing.T) {
	raw := "The door creaks open. [IMG: a dark corridor]\n\n[TLO: dungeon]\nYou hear water dripping. [XP: Arion;10]"
	narrative, directives := Parse(raw)

	if narrative != "The door creaks open.\n\nYou hear water dripping." {
		t.Errorf("narrative = %q", narrative)
	}
	if len(directives) != 3 {
		t.Fatalf("got %d directives, want 3", len(directives))
	}
}
