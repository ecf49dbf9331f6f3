package domain

import "encoding/json"

// InterceptorState models the subscription lifecycle.
type InterceptorState string

const (
	StateIdle      InterceptorState = "idle"
	StateListening InterceptorState = "listening"
)

// Status summarizes the current runtime status.
type Status struct {
	State   InterceptorState `json:"state"`
	Active  bool             `json:"active"`
	Message string           `json:"message,omitempty"`
}

// SelectionSpan is one text selection range. Offsets are rune positions in
// the surrounding document, half open, Start <= End. Text is the spanned
// content as reported by the host.
type SelectionSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Collapsed reports whether the span is a caret with no extent.
func (s SelectionSpan) Collapsed() bool {
	return s.Start >= s.End
}

// SelectionEvent is a host notification that the active text selection
// changed. The host's editable-text layer tracks the previous selection and
// supplies both spans, so handling one event needs no retained state.
type SelectionEvent struct {
	Old SelectionSpan `json:"old"`
	New SelectionSpan `json:"new"`

	// SpeakSelected and SpeakUnselected mirror the host's verbosity switches
	// for the two halves of a selection change. Hosts that omit them on the
	// wire get both enabled.
	SpeakSelected   bool `json:"speakSelected"`
	SpeakUnselected bool `json:"speakUnselected"`

	// Generalize asks for a summary announcement instead of per-piece detail.
	Generalize bool `json:"generalize,omitempty"`
}

// UnmarshalJSON decodes a selection event, defaulting SpeakSelected and
// SpeakUnselected to true when the host omits them.
func (e *SelectionEvent) UnmarshalJSON(data []byte) error {
	type alias SelectionEvent
	aux := struct {
		*alias
		SpeakSelected   *bool `json:"speakSelected"`
		SpeakUnselected *bool `json:"speakUnselected"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.SpeakSelected = aux.SpeakSelected == nil || *aux.SpeakSelected
	e.SpeakUnselected = aux.SpeakUnselected == nil || *aux.SpeakUnselected
	return nil
}

// CapitalPreferences are the host's capital-indicator settings, owned by the
// host settings store and queried fresh on every event.
type CapitalPreferences struct {
	PitchChange int  `json:"pitchChange"`
	SayCap      bool `json:"sayCap"`
	Beep        bool `json:"beep"`
}

// SynthCapabilities describes the active speech synthesizer.
type SynthCapabilities struct {
	Name          string `json:"name"`
	SupportsPitch bool   `json:"supportsPitch"`
}

// SpeechSettings is the host state consulted when handling one event.
type SpeechSettings struct {
	Caps   CapitalPreferences `json:"caps"`
	Synth  SynthCapabilities  `json:"synth"`
	Locale string             `json:"locale"`
}

// CommandKind identifies one element of an announcement sequence.
type CommandKind string

const (
	CommandText  CommandKind = "text"
	CommandPitch CommandKind = "pitch"
	CommandBeep  CommandKind = "beep"
)

// SpeechCommand is one element of an announcement sequence. Kind selects
// which of the remaining fields are meaningful.
type SpeechCommand struct {
	Kind CommandKind `json:"kind"`

	// Text payload for CommandText.
	Text string `json:"text,omitempty"`

	// Offset is a pitch change in percent for CommandPitch; zero resets the
	// synthesizer to its base pitch.
	Offset int `json:"offset,omitempty"`

	// Beep parameters for CommandBeep. Volumes are percentages per channel.
	Hz          int `json:"hz,omitempty"`
	DurationMS  int `json:"durationMs,omitempty"`
	LeftVolume  int `json:"leftVolume,omitempty"`
	RightVolume int `json:"rightVolume,omitempty"`
}

// Text builds a spoken-text command.
func Text(text string) SpeechCommand {
	return SpeechCommand{Kind: CommandText, Text: text}
}

// Pitch builds a pitch-change command.
func Pitch(offset int) SpeechCommand {
	return SpeechCommand{Kind: CommandPitch, Offset: offset}
}

// Beep builds a tone command.
func Beep(hz int, durationMS int, leftVolume int, rightVolume int) SpeechCommand {
	return SpeechCommand{
		Kind:        CommandBeep,
		Hz:          hz,
		DurationMS:  durationMS,
		LeftVolume:  leftVolume,
		RightVolume: rightVolume,
	}
}

// Capital-indicator beep parameters, matching character-navigation review.
const (
	CapBeepHz         = 2000
	CapBeepDurationMS = 50
	CapBeepVolume     = 50
)

// Announcement is one utterance submitted to the host's speech output.
type Announcement struct {
	Commands []SpeechCommand `json:"commands"`
}

// PieceKind classifies a run of text whose selection state changed.
type PieceKind string

const (
	PieceSelected      PieceKind = "selected"
	PieceUnselected    PieceKind = "unselected"
	PieceReplaced      PieceKind = "selected_instead"
	PieceSelectionGone PieceKind = "selection_removed"
)

// Piece is one contiguous run of text that became selected or unselected
// between the previous and new spans of a selection event.
type Piece struct {
	Kind PieceKind `json:"kind"`
	Text string    `json:"text"`
}
