package directive

// Directive is one structured instruction extracted from narrator free
// text. The narrator embeds directives as bracketed tags; Parse strips
// them from the prose and returns them as typed values in document order.
type Directive interface {
	directive()
}

// SceneImage requests regeneration of the session's scene art.
type SceneImage struct {
	Prompt string
}

// MapImage requests regeneration of the session's map art, wide format.
type MapImage struct {
	Prompt string
}

// BackgroundKeyword selects the ambiance keyword for the session.
type BackgroundKeyword struct {
	Keyword string
}

// QuestUpdate replaces the session quest log text.
type QuestUpdate struct {
	Text string
}

// ChoiceSet presents an ordered set of options to the players.
type ChoiceSet struct {
	Options []string
}

// LootGrant awards an item to a named character.
type LootGrant struct {
	CharacterName string
	ItemName      string
	Description   string
}

// ExperienceGrant awards experience points to a named character.
type ExperienceGrant struct {
	CharacterName string
	Amount        int
}

// NpcIntroduced upserts an NPC record keyed by name.
type NpcIntroduced struct {
	Name           string
	Description    string
	PortraitPrompt string
}

// NpcRemoved deletes an NPC record by name.
type NpcRemoved struct {
	Name string
}

// CombatStart begins combat with the named monsters.
type CombatStart struct {
	MonsterNames []string
}

// CombatEnd ends combat.
type CombatEnd struct{}

func (SceneImage) directive()        {}
func (MapImage) directive()          {}
func (BackgroundKeyword) directive() {}
func (QuestUpdate) directive()       {}
func (ChoiceSet) directive()         {}
func (LootGrant) directive()         {}
func (ExperienceGrant) directive()   {}
func (NpcIntroduced) directive()     {}
func (NpcRemoved) directive()        {}
func (CombatStart) directive()       {}
func (CombatEnd) directive()         {}
