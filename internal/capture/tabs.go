package capture

import "sync"

// Tab is the last known state of one client tab.
type Tab struct {
	ID     int    `json:"tab_id"`
	URL    string `json:"url"`
	HTML   string `json:"html,omitempty"`
	Active bool   `json:"active,omitempty"`
}

// Tabs tracks open tabs and which one is active.
type Tabs struct {
	mu     sync.Mutex
	tabs   map[int]Tab
	active int
	has    bool
}

func NewTabs() *Tabs {
	return &Tabs{tabs: make(map[int]Tab)}
}

// Navigated records the tab's new location. An active tab becomes the
// refresh target.
func (t *Tabs) Navigated(tab Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tabs[tab.ID] = tab
	if tab.Active {
		t.active, t.has = tab.ID, true
	}
}

// Activated marks id as the active tab. Unknown ids are recorded without a URL.
func (t *Tabs) Activated(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tabs[id]; !ok {
		t.tabs[id] = Tab{ID: id}
	}
	t.active, t.has = id, true
}

// Closed forgets id.
func (t *Tabs) Closed(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tabs, id)
	if t.has && t.active == id {
		t.has = false
	}
}

// Active returns the active tab if it has a URL.
func (t *Tabs) Active() (Tab, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.has {
		return Tab{}, false
	}
	tab, ok := t.tabs[t.active]
	if !ok || tab.URL == "" {
		return Tab{}, false
	}
	tab.Active = true
	return tab, true
}

// Len reports the number of tracked tabs.
func (t *Tabs) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tabs)
}
