package engine

import (
	"time"

	"github.com/ayoisaiah/diary/internal/apperr"
	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/tracker"
)

// Message types sent by the browser extension.
const (
	MsgTabActivated = "tab_activated"
	MsgTabUpdated   = "tab_updated"
	MsgTabRemoved   = "tab_removed"
	MsgFocusChanged = "focus_changed"
	MsgSummarize    = "summarize"
	MsgGoalStart    = "goal_start"
	MsgGoalStop     = "goal_stop"
	MsgGoalStatus   = "goal_status"
	MsgExport       = "export"
)

var errUnknownMessage = &apperr.Error{
	Message: "unknown message type %q",
}

// Message is the JSON form of an event as sent over native messaging or the
// HTTP events endpoint.
type Message struct {
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text,omitempty"`
	GoalType  string `json:"goal_type,omitempty"`
	TabID     int    `json:"tab_id,omitempty"`
	WindowID  int    `json:"window_id,omitempty"`
	Target    int    `json:"target,omitempty"` // seconds
	Incognito bool   `json:"incognito,omitempty"`
}

// Event converts the message into the corresponding dispatcher event.
func (m *Message) Event() (Event, error) {
	switch m.Type {
	case MsgTabActivated:
		return Browser{tracker.TabActivated{
			TabID:     m.TabID,
			URL:       m.URL,
			Incognito: m.Incognito,
		}}, nil
	case MsgTabUpdated:
		return Browser{tracker.TabUpdated{
			TabID:     m.TabID,
			URL:       m.URL,
			Incognito: m.Incognito,
		}}, nil
	case MsgTabRemoved:
		return Browser{tracker.TabRemoved{TabID: m.TabID}}, nil
	case MsgFocusChanged:
		return Browser{tracker.FocusChanged{
			WindowID:  m.WindowID,
			TabID:     m.TabID,
			URL:       m.URL,
			Incognito: m.Incognito,
		}}, nil
	case MsgSummarize:
		return Summarize{URL: m.URL, Title: m.Title, Text: m.Text}, nil
	case MsgGoalStart:
		return StartGoal{
			Type:   models.GoalType(m.GoalType),
			Target: time.Duration(m.Target) * time.Second,
		}, nil
	case MsgGoalStop:
		return StopGoal{}, nil
	case MsgGoalStatus:
		return GoalStatus{}, nil
	case MsgExport:
		return Export{}, nil
	default:
		return nil, errUnknownMessage.Fmt(m.Type)
	}
}

// Reply is the response to a Message.
type Reply struct {
	Goal  *models.Goal `json:"goal,omitempty"`
	Error string       `json:"error,omitempty"`
	OK    bool         `json:"ok"`
}
