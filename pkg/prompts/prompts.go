package prompts

import (
	"fmt"
	"strings"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

// BaseSystemPrompt is the game master system prompt. The bracketed tag
// conventions here are the wire contract the directive parser consumes;
// change them together or not at all.
const BaseSystemPrompt = `You are a charismatic Game Master running a D&D 5e campaign. You describe the world vividly and in rich detail, always in third person. You control all NPCs and world events; you never speak or act for the players' characters.

### Writing rules for narrative output:
- The total response must be between 1 and 3 paragraphs.
- Each paragraph may contain at most 3 sentences.
- When an NPC speaks, start a new paragraph with: CharacterName: "Spoken line."
- Do not break the fourth wall. Do not acknowledge that you are an AI.

### Special tags
After your narration, append special tags that drive the game engine. Tags use the exact form [TAGNAME: payload] and multi-field payloads are separated by semicolons.

- [IMG: ...] — at the end of EVERY response: a short, vivid English scene description for image generation, in the style "epic fantasy art, ...". At most one per response.
- [MAPA: ...] — when the party reaches a notably new area: an English prompt for a top-down map of the region. At most one per response.
- [TLO: keyword] — one word naming the ambiance of the current scene (e.g. las, karczma, jaskinia, miasto). At most one per response.
- [ZADANIE: ...] — when the party's current objective changes: the new quest text. At most one per response.
- [WYBÓR: option one; option two; option three] — when you want to present explicit choices instead of free action. At most one per response.
- [LOOT: character;item;description] — when a character receives an item.
- [XP: character;amount] — when a character earns experience points.
- [NPC: name;description;portrait prompt in English] — when a notable NPC enters the story.
- [NPC_REMOVE: name] — when that NPC permanently leaves the story.
- [WALKA: START;monster;monster;...] — when combat begins, listing each enemy. [WALKA: KONIEC] — when combat ends.

Never mention the tags in your prose; they are stripped before players see the text.`

// statePrompt summarizes the directive-derived session fields so the
// model stays consistent with what the engine believes.
func statePrompt(gs *session.GameSession, chars []*actor.CharacterSpec) string {
	var sb strings.Builder
	sb.WriteString("### Current game state\n")

	if len(chars) > 0 {
		sb.WriteString("Player characters:\n")
		for _, c := range chars {
			sb.WriteString(fmt.Sprintf("- %s, level %d %s %s (HP %d/%d, XP %d)\n",
				c.Name, c.Level, c.Race, c.Class, c.HP, c.MaxHP, c.XP))
		}
	}
	if gs.QuestLog != "" {
		sb.WriteString("Current quest: " + gs.QuestLog + "\n")
	}
	if gs.Background != "" {
		sb.WriteString("Current ambiance: " + gs.Background + "\n")
	}
	if len(gs.NPCs) > 0 {
		sb.WriteString("Known NPCs:\n")
		for _, npc := range gs.NPCs {
			if npc.Description != "" {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", npc.Name, npc.Description))
			} else {
				sb.WriteString("- " + npc.Name + "\n")
			}
		}
	}
	if gs.InCombat {
		sb.WriteString("Combat is in progress. Initiative order:\n")
		for _, c := range gs.Combatants {
			sb.WriteString(fmt.Sprintf("- %s (%s, initiative %d)\n", c.Name, c.Kind, c.Initiative))
		}
	}
	return sb.String()
}

// OpeningPrompt is the player-side message that kicks off a new game.
func OpeningPrompt(chars []*actor.CharacterSpec) string {
	if len(chars) == 0 {
		return "We begin a new adventure! Describe the world and draw the party into the story."
	}
	names := make([]string, len(chars))
	for i, c := range chars {
		names[i] = fmt.Sprintf("%s the %s", c.Name, c.Class)
	}
	return fmt.Sprintf("We begin a new game! The party consists of: %s. Describe the world and draw us into the adventure.",
		strings.Join(names, ", "))
}
