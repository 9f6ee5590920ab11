package tracker

// WindowNone is the window id reported when the browser loses focus to
// another application.
const WindowNone = -1

// Event is a browser tab or window notification consumed by the Tracker.
type Event interface {
	event()
}

// TabActivated is delivered when a tab becomes the active tab.
type TabActivated struct {
	URL       string `json:"url"`
	TabID     int    `json:"tab_id"`
	Incognito bool   `json:"incognito,omitempty"`
}

// TabUpdated is delivered when a tab navigates to a new URL.
type TabUpdated struct {
	URL       string `json:"url"`
	TabID     int    `json:"tab_id"`
	Incognito bool   `json:"incognito,omitempty"`
}

// TabRemoved is delivered when a tab is closed.
type TabRemoved struct {
	TabID int `json:"tab_id"`
}

// FocusChanged is delivered when the focused browser window changes.
// WindowID is WindowNone when no browser window has focus, otherwise TabID and
// URL describe the active tab of the newly focused window.
type FocusChanged struct {
	URL       string `json:"url,omitempty"`
	WindowID  int    `json:"window_id"`
	TabID     int    `json:"tab_id,omitempty"`
	Incognito bool   `json:"incognito,omitempty"`
}

func (TabActivated) event() {}
func (TabUpdated) event()   {}
func (TabRemoved) event()   {}
func (FocusChanged) event() {}
