package actor

// NPC is a non-player character introduced by the narrator. Records are
// keyed by name in the session; re-introducing a name overwrites it.
type NPC struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PortraitURL string `json:"portrait_url,omitempty"`
}
