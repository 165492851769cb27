package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave  Action = "autosave"
	ActionFocusLoss Action = "focus_loss"
	ActionPing      Action = "ping"
	ActionPause     Action = "pause"
	ActionResume    Action = "resume"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AutosaveRequest is sent by the client to save a single answer.
type AutosaveRequest struct {
	Action Action `json:"action"`
	QID    string `json:"q_id"`
	Answer string `json:"ans"`
}

// FocusLossRequest is sent by the client when the test tab loses focus.
type FocusLossRequest struct {
	Action Action `json:"action"`
	// Kind distinguishes blur, tab switch, fullscreen exit and so on.
	Kind       string `json:"kind"`
	DurationMs int    `json:"duration_ms"`
}

// PauseRequest freezes the countdown. Practice sessions only.
type PauseRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventSaved       Event = "saved"
	EventTimeSync    Event = "time_sync"
	EventTimeWarning Event = "time_warning"
	EventTimeUp      Event = "time_up"
	EventPaused      Event = "paused"
	EventResumed     Event = "resumed"
	EventPong        Event = "pong"
)

type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

// TimeSyncResponse is the periodic clock broadcast so the client can
// correct drift against the authoritative server countdown.
type TimeSyncResponse struct {
	Event     Event `json:"event"`
	RemainSec int   `json:"remain_sec"`
	Paused    bool  `json:"paused"`
}

type TimeWarningResponse struct {
	Event     Event `json:"event"`
	RemainSec int   `json:"remain_sec"`
}

type TimeUpResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
