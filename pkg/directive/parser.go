package directive

import (
	"strconv"
	"strings"
	"unicode"
)

// Narrator tag names. These are the wire contract established by the
// system prompt; the Polish names are kept verbatim so existing prompt
// conventions keep working.
const (
	tagSceneImage   = "IMG"
	tagMapImage     = "MAPA"
	tagBackground   = "TLO"
	tagQuest        = "ZADANIE"
	tagChoices      = "WYBÓR"
	tagChoicesASCII = "WYBOR" // accepted alias; models often drop the diacritic
	tagLoot         = "LOOT"
	tagXP           = "XP"
	tagNPC          = "NPC"
	tagNPCRemove    = "NPC_REMOVE"
	tagCombat       = "WALKA"
)

// singletonTags have cardinality-one semantics: the first occurrence in
// document order wins, later duplicates are stripped but ignored.
var singletonTags = map[string]bool{
	tagSceneImage: true,
	tagMapImage:   true,
	tagBackground: true,
	tagQuest:      true,
	tagChoices:    true,
}

var knownTags = []string{
	tagSceneImage,
	tagMapImage,
	tagBackground,
	tagQuest,
	tagChoices,
	tagLoot,
	tagXP,
	tagNPC,
	tagNPCRemove,
	tagCombat,
}

// Parse extracts directives embedded in narrator output as
// "[TAGNAME: payload]" tags and returns the cleaned narrative plus the
// directives in document order. Tag names match case-insensitively,
// payloads run to the first unescaped "]" ("\]" escapes one), and
// multi-field payloads are split on ";".
//
// Parse never fails: malformed payloads drop that single directive and
// scanning continues, and unrecognized bracket syntax is left in the
// narrative untouched. Text containing no recognized tags is returned
// unchanged.
func Parse(raw string) (string, []Directive) {
	var out strings.Builder
	var directives []Directive
	seen := make(map[string]bool)
	stripped := 0

	runes := []rune(raw)
	i := 0
	for i < len(runes) {
		if runes[i] != '[' {
			out.WriteRune(runes[i])
			i++
			continue
		}
		tag, payload, next, ok := scanTag(runes, i)
		if !ok {
			out.WriteRune(runes[i])
			i++
			continue
		}
		// Recognized tag: strip it from the narrative exactly once.
		stripped++
		i = next
		if singletonTags[tag] {
			if seen[tag] {
				continue
			}
			seen[tag] = true
		}
		if d := buildDirective(tag, payload); d != nil {
			directives = append(directives, d)
		}
	}

	if stripped == 0 {
		return raw, nil
	}
	return collapseWhitespace(out.String()), directives
}

// scanTag reads a recognized "[TAG: payload]" starting at runes[start]
// (which must be '['). It reports ok=false for unknown tag names and
// unterminated payloads so the caller can pass the text through.
func scanTag(runes []rune, start int) (tag string, payload string, next int, ok bool) {
	i := start + 1
	nameStart := i
	for i < len(runes) && (unicode.IsLetter(runes[i]) || runes[i] == '_') {
		i++
	}
	if i == nameStart || i >= len(runes) || runes[i] != ':' {
		return "", "", 0, false
	}
	canon, known := canonicalTag(string(runes[nameStart:i]))
	if !known {
		return "", "", 0, false
	}
	i++ // ':'

	var pb strings.Builder
	for i < len(runes) {
		switch {
		case runes[i] == '\\' && i+1 < len(runes) && runes[i+1] == ']':
			pb.WriteRune(']')
			i += 2
		case runes[i] == ']':
			return canon, pb.String(), i + 1, true
		default:
			pb.WriteRune(runes[i])
			i++
		}
	}
	return "", "", 0, false
}

// canonicalTag matches a tag name case-insensitively against the known
// set and returns its canonical form.
func canonicalTag(name string) (string, bool) {
	if strings.EqualFold(name, tagChoicesASCII) {
		return tagChoices, true
	}
	for _, t := range knownTags {
		if strings.EqualFold(name, t) {
			return t, true
		}
	}
	return "", false
}

// buildDirective converts a tag payload into its directive, or nil when
// the payload fails field-count or type validation.
func buildDirective(tag, payload string) Directive {
	switch tag {
	case tagSceneImage:
		if p := trimField(payload); p != "" {
			return SceneImage{Prompt: p}
		}
	case tagMapImage:
		if p := trimField(payload); p != "" {
			return MapImage{Prompt: p}
		}
	case tagBackground:
		if k := trimField(payload); k != "" {
			return BackgroundKeyword{Keyword: k}
		}
	case tagQuest:
		if t := trimField(payload); t != "" {
			return QuestUpdate{Text: t}
		}
	case tagChoices:
		if opts := nonEmpty(splitFields(payload)); len(opts) > 0 {
			return ChoiceSet{Options: opts}
		}
	case tagLoot:
		f := splitFields(payload)
		if len(f) < 2 || f[0] == "" || f[1] == "" {
			return nil
		}
		return LootGrant{
			CharacterName: f[0],
			ItemName:      f[1],
			Description:   strings.Join(f[2:], "; "),
		}
	case tagXP:
		f := splitFields(payload)
		if len(f) != 2 || f[0] == "" {
			return nil
		}
		amount, err := strconv.Atoi(f[1])
		if err != nil || amount < 0 {
			return nil
		}
		return ExperienceGrant{CharacterName: f[0], Amount: amount}
	case tagNPC:
		f := splitFields(payload)
		if f[0] == "" {
			return nil
		}
		npc := NpcIntroduced{Name: f[0]}
		if len(f) > 1 {
			npc.Description = f[1]
		}
		if len(f) > 2 {
			npc.PortraitPrompt = strings.Join(f[2:], "; ")
		}
		return npc
	case tagNPCRemove:
		if name := trimField(payload); name != "" {
			return NpcRemoved{Name: name}
		}
	case tagCombat:
		f := splitFields(payload)
		switch {
		case strings.EqualFold(f[0], "START"):
			return CombatStart{MonsterNames: nonEmpty(f[1:])}
		case strings.EqualFold(f[0], "KONIEC"), strings.EqualFold(f[0], "END"):
			return CombatEnd{}
		}
	}
	return nil
}

// splitFields splits a payload on ";" and trims whitespace and quote
// characters from each field.
func splitFields(payload string) []string {
	parts := strings.Split(payload, ";")
	fields := make([]string, len(parts))
	for i, p := range parts {
		fields[i] = trimField(p)
	}
	return fields
}

func trimField(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		switch r {
		case '"', '\'', '“', '”', '‘', '’', '«', '»':
			return true
		}
		return unicode.IsSpace(r)
	})
}

func nonEmpty(fields []string) []string {
	out := fields[:0:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// collapseWhitespace tidies the holes left by stripped tags: runs of
// spaces become one space, blank lines collapse to a single paragraph
// break, and leading/trailing whitespace is dropped.
func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := true
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank {
				blank = true
				out = append(out, "")
			}
			continue
		}
		blank = false
		out = append(out, line)
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
