package shim

import "fmt"

// Tab is a tab header that shows the panel named by Target.
type Tab struct {
	ID     string
	Title  string
	Target string
}

// Tabs keeps exactly one tab and one panel active.
type Tabs struct {
	tabs   []Tab
	panels []string

	tabActive   []bool
	panelActive map[string]bool
}

// NewTabs builds a controller over tabs and panels and activates the first tab. Every tab
// target must name a declared panel.
func NewTabs(tabs []Tab, panels []string) (*Tabs, error) {
	if len(tabs) == 0 {
		return nil, fmt.Errorf("no tabs declared")
	}
	known := make(map[string]bool, len(panels))
	for _, p := range panels {
		known[p] = false
	}
	seen := make(map[string]struct{}, len(tabs))
	for _, tab := range tabs {
		if _, dup := seen[tab.ID]; dup {
			return nil, fmt.Errorf("duplicate tab %q", tab.ID)
		}
		seen[tab.ID] = struct{}{}
		if _, ok := known[tab.Target]; !ok {
			return nil, fmt.Errorf("tab %q targets unknown panel %q", tab.ID, tab.Target)
		}
	}
	t := &Tabs{
		tabs:        append([]Tab(nil), tabs...),
		panels:      append([]string(nil), panels...),
		tabActive:   make([]bool, len(tabs)),
		panelActive: known,
	}
	t.Activate(tabs[0].ID)
	return t, nil
}

// DefaultTabs is the tab layout of the terminal UI.
func DefaultTabs() *Tabs {
	t, err := NewTabs([]Tab{
		{ID: "tab-chat", Title: "Chat", Target: PanelChat},
		{ID: "tab-rag", Title: "Documents", Target: PanelRAG},
		{ID: "tab-vectors", Title: "Vectors", Target: PanelVectors},
		{ID: "tab-utils", Title: "Utilities", Target: PanelUtils},
	}, []string{PanelChat, PanelRAG, PanelVectors, PanelUtils})
	if err != nil {
		panic(err)
	}
	return t
}

// Activate deactivates every tab and panel, then activates tab id and its target panel.
// Unknown ids leave the state untouched and return false.
func (t *Tabs) Activate(id string) bool {
	idx := t.index(id)
	if idx < 0 {
		return false
	}
	for i := range t.tabActive {
		t.tabActive[i] = false
	}
	for p := range t.panelActive {
		t.panelActive[p] = false
	}
	t.tabActive[idx] = true
	t.panelActive[t.tabs[idx].Target] = true
	return true
}

// Next activates the tab after the active one, wrapping around.
func (t *Tabs) Next() { t.shift(1) }

// Prev activates the tab before the active one, wrapping around.
func (t *Tabs) Prev() { t.shift(-1) }

func (t *Tabs) shift(delta int) {
	n := len(t.tabs)
	cur := t.activeIndex()
	t.Activate(t.tabs[((cur+delta)%n+n)%n].ID)
}

// ActivateIndex activates the tab at position i (0-based).
func (t *Tabs) ActivateIndex(i int) bool {
	if i < 0 || i >= len(t.tabs) {
		return false
	}
	return t.Activate(t.tabs[i].ID)
}

// Active returns the active tab.
func (t *Tabs) Active() Tab { return t.tabs[t.activeIndex()] }

// ActivePanel returns the active panel id.
func (t *Tabs) ActivePanel() string {
	for _, p := range t.panels {
		if t.panelActive[p] {
			return p
		}
	}
	return ""
}

// All returns the declared tabs in order.
func (t *Tabs) All() []Tab { return append([]Tab(nil), t.tabs...) }

// Panels returns the declared panel ids in order.
func (t *Tabs) Panels() []string { return append([]string(nil), t.panels...) }

// TabActive reports whether tab id is active.
func (t *Tabs) TabActive(id string) bool {
	idx := t.index(id)
	return idx >= 0 && t.tabActive[idx]
}

// PanelActive reports whether panel id is active.
func (t *Tabs) PanelActive(id string) bool { return t.panelActive[id] }

func (t *Tabs) activeIndex() int {
	for i, on := range t.tabActive {
		if on {
			return i
		}
	}
	return 0
}

func (t *Tabs) index(id string) int {
	for i, tab := range t.tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}
