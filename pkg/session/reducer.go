package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/directive"
)

// SystemSpeaker is the speaker name on engine-generated notices.
const SystemSpeaker = "Game"

// ImageSize selects the aspect ratio of generated art.
type ImageSize string

const (
	ImageSizeSquare ImageSize = "1024x1024" // scene art, portraits
	ImageSizeWide   ImageSize = "1792x1024" // maps
)

// ImageGenerator renders art for a prompt and returns an image
// reference. Failures are non-fatal to the turn.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string, size ImageSize) (string, error)
}

// EffectKind identifies one applied side effect.
type EffectKind string

const (
	EffectSceneImage    EffectKind = "scene_image"
	EffectMapImage      EffectKind = "map_image"
	EffectBackground    EffectKind = "background"
	EffectQuest         EffectKind = "quest"
	EffectChoices       EffectKind = "choices"
	EffectLoot          EffectKind = "loot"
	EffectExperience    EffectKind = "experience"
	EffectLevelUp       EffectKind = "level_up"
	EffectNpcUpserted   EffectKind = "npc_upserted"
	EffectNpcRemoved    EffectKind = "npc_removed"
	EffectCombatStarted EffectKind = "combat_started"
	EffectCombatEnded   EffectKind = "combat_ended"
)

// Effect records one side effect produced by applying a directive.
type Effect struct {
	Kind   EffectKind `json:"kind"`
	Target string     `json:"target,omitempty"`
	Detail string     `json:"detail,omitempty"`
}

// Reducer applies parsed directives to a game session, in the order the
// parser produced them. Each directive is applied in isolation: a failed
// image call or an unknown character reference drops that one directive
// and the rest still apply. The reducer mutates the session and the
// character specs in memory; callers persist them afterwards.
type Reducer struct {
	gs         *GameSession
	characters []*actor.CharacterSpec
	images     ImageGenerator
	logger     *slog.Logger
	ctx        context.Context
	lower      cases.Caser
}

// NewReducer creates a reducer for one session.
func NewReducer(gs *GameSession, logger *slog.Logger) *Reducer {
	return &Reducer{
		gs:     gs,
		logger: logger,
		ctx:    context.Background(),
		lower:  cases.Lower(language.Polish),
	}
}

// WithCharacters sets the player characters present in the session.
// Returns the Reducer for method chaining.
func (r *Reducer) WithCharacters(chars []*actor.CharacterSpec) *Reducer {
	r.characters = chars
	return r
}

// WithImages sets the image generation client. Without one, image
// directives are skipped.
func (r *Reducer) WithImages(images ImageGenerator) *Reducer {
	r.images = images
	return r
}

// WithContext sets the context for side-effect calls.
func (r *Reducer) WithContext(ctx context.Context) *Reducer {
	r.ctx = ctx
	return r
}

// Apply applies all directives sequentially and returns the side
// effects that took hold.
func (r *Reducer) Apply(directives []directive.Directive) []Effect {
	var effects []Effect
	for _, d := range directives {
		effects = append(effects, r.apply(d)...)
	}
	return effects
}

func (r *Reducer) apply(d directive.Directive) []Effect {
	switch d := d.(type) {
	case directive.SceneImage:
		if url, ok := r.generateImage(d.Prompt, ImageSizeSquare); ok {
			r.gs.SceneImage = url
			return []Effect{{Kind: EffectSceneImage, Detail: url}}
		}
	case directive.MapImage:
		if url, ok := r.generateImage(d.Prompt, ImageSizeWide); ok {
			r.gs.MapImage = url
			return []Effect{{Kind: EffectMapImage, Detail: url}}
		}
	case directive.BackgroundKeyword:
		// Stored verbatim apart from casing; unknown keywords fall back
		// to a default ambiance at render time.
		r.gs.Background = r.lower.String(d.Keyword)
		return []Effect{{Kind: EffectBackground, Detail: r.gs.Background}}
	case directive.QuestUpdate:
		r.gs.QuestLog = d.Text
		return []Effect{{Kind: EffectQuest, Detail: d.Text}}
	case directive.ChoiceSet:
		r.gs.Choices = d.Options
		return []Effect{{Kind: EffectChoices, Detail: fmt.Sprintf("%d options", len(d.Options))}}
	case directive.LootGrant:
		return r.applyLoot(d)
	case directive.ExperienceGrant:
		return r.applyExperience(d)
	case directive.NpcIntroduced:
		return r.applyNpcIntroduced(d)
	case directive.NpcRemoved:
		if _, ok := r.gs.NPCs[d.Name]; ok {
			delete(r.gs.NPCs, d.Name)
			return []Effect{{Kind: EffectNpcRemoved, Target: d.Name}}
		}
		// Absence is not an error.
	case directive.CombatStart:
		return r.applyCombatStart(d)
	case directive.CombatEnd:
		r.gs.InCombat = false
		// Combat residue is cleared here; combatants exist only while
		// the combat flag is set.
		r.gs.Combatants = nil
		return []Effect{{Kind: EffectCombatEnded}}
	}
	return nil
}

func (r *Reducer) applyLoot(d directive.LootGrant) []Effect {
	c := r.findCharacter(d.CharacterName)
	if c == nil {
		r.logger.Warn("Loot grant for unknown character",
			"character", d.CharacterName,
			"item", d.ItemName,
			"session_id", r.gs.ID.String())
		return nil
	}

	c.AddItem(actor.InventoryItem{Name: d.ItemName, Description: d.Description})

	notice := fmt.Sprintf("%s receives %s.", c.Name, d.ItemName)
	if d.Description != "" {
		notice = fmt.Sprintf("%s receives %s (%s).", c.Name, d.ItemName, d.Description)
	}
	r.gs.Append(chat.RoleSystem, SystemSpeaker, notice)

	return []Effect{{Kind: EffectLoot, Target: c.Name, Detail: d.ItemName}}
}

func (r *Reducer) applyExperience(d directive.ExperienceGrant) []Effect {
	c := r.findCharacter(d.CharacterName)
	if c == nil {
		r.logger.Warn("Experience grant for unknown character",
			"character", d.CharacterName,
			"amount", d.Amount,
			"session_id", r.gs.ID.String())
		return nil
	}

	c.XP += d.Amount
	effects := []Effect{{Kind: EffectExperience, Target: c.Name, Detail: fmt.Sprintf("%d", d.Amount)}}

	// Advance at most one level per grant, never cascading.
	if c.Level >= 1 && c.Level < MaxLevel {
		if threshold, ok := ThresholdFor(c.Level + 1); ok && c.XP >= threshold {
			c.Level++
			r.gs.Append(chat.RoleSystem, SystemSpeaker,
				fmt.Sprintf("%s advances to level %d!", c.Name, c.Level))
			effects = append(effects, Effect{
				Kind:   EffectLevelUp,
				Target: c.Name,
				Detail: fmt.Sprintf("%d", c.Level),
			})
		}
	}
	return effects
}

func (r *Reducer) applyNpcIntroduced(d directive.NpcIntroduced) []Effect {
	npc := actor.NPC{Name: d.Name, Description: d.Description}
	if d.PortraitPrompt != "" {
		if url, ok := r.generateImage(d.PortraitPrompt, ImageSizeSquare); ok {
			npc.PortraitURL = url
		}
	}
	if r.gs.NPCs == nil {
		r.gs.NPCs = make(map[string]actor.NPC)
	}
	r.gs.NPCs[d.Name] = npc
	return []Effect{{Kind: EffectNpcUpserted, Target: d.Name}}
}

func (r *Reducer) applyCombatStart(d directive.CombatStart) []Effect {
	r.gs.InCombat = true
	r.gs.Combatants = make([]Combatant, 0, len(r.characters)+len(d.MonsterNames))

	for _, c := range r.characters {
		r.gs.Combatants = append(r.gs.Combatants, Combatant{
			Name:       c.Name,
			Kind:       CombatantPlayer,
			Initiative: rollInitiative(),
			HP:         c.HP,
		})
	}
	for _, name := range d.MonsterNames {
		r.gs.Combatants = append(r.gs.Combatants, Combatant{
			Name:       name,
			Kind:       CombatantMonster,
			Initiative: rollInitiative(),
			HP:         DefaultMonsterHP,
		})
	}

	sort.SliceStable(r.gs.Combatants, func(i, j int) bool {
		return r.gs.Combatants[i].Initiative > r.gs.Combatants[j].Initiative
	})

	return []Effect{{Kind: EffectCombatStarted, Detail: fmt.Sprintf("%d combatants", len(r.gs.Combatants))}}
}

// generateImage runs one image side effect. A missing client or an
// upstream failure means no image this turn, nothing more.
func (r *Reducer) generateImage(prompt string, size ImageSize) (string, bool) {
	if r.images == nil {
		r.logger.Debug("No image client configured, skipping image directive",
			"session_id", r.gs.ID.String())
		return "", false
	}
	url, err := r.images.Generate(r.ctx, prompt, size)
	if err != nil {
		r.logger.Warn("Image generation failed",
			"error", err,
			"size", string(size),
			"session_id", r.gs.ID.String())
		return "", false
	}
	return url, true
}

func (r *Reducer) findCharacter(name string) *actor.CharacterSpec {
	for _, c := range r.characters {
		if equalFoldName(c.Name, name) {
			return c
		}
	}
	return nil
}

func equalFoldName(a, b string) bool {
	ca := cases.Fold()
	return ca.String(a) == ca.String(b)
}

func rollInitiative() int {
	roll, err := dice.NewRoll(1, 20)
	if err != nil {
		return 10
	}
	return int(roll.GetValue())
}
