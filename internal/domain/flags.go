package domain

// ViewFlags is the view context handed to label formatting and menu construction.
// It replaces global toggles so both stay pure given their inputs.
type ViewFlags struct {
	ShowEventNames    bool `json:"show_event_names"`
	ShowParams        bool `json:"show_params"`
	ActionsProhibited bool `json:"actions_prohibited"`
	// Deleting is set while a "remove event" request is in flight and cleared by
	// the rebuild it triggers.
	Deleting bool `json:"deleting"`
}
