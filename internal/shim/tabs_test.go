package shim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeCounts(t *Tabs) (tabs, panels int) {
	for _, tab := range t.All() {
		if t.TabActive(tab.ID) {
			tabs++
		}
	}
	for _, p := range t.Panels() {
		if t.PanelActive(p) {
			panels++
		}
	}
	return tabs, panels
}

func TestTabs_ExactlyOneActive(t *testing.T) {
	tabs := DefaultTabs()
	for _, tab := range tabs.All() {
		require.True(t, tabs.Activate(tab.ID))
		nt, np := activeCounts(tabs)
		assert.Equal(t, 1, nt)
		assert.Equal(t, 1, np)
		assert.True(t, tabs.TabActive(tab.ID))
		assert.Equal(t, tab.Target, tabs.ActivePanel())
		assert.Equal(t, tab, tabs.Active())
	}
}

func TestTabs_FirstActiveOnStart(t *testing.T) {
	tabs := DefaultTabs()
	assert.Equal(t, "tab-chat", tabs.Active().ID)
	assert.Equal(t, PanelChat, tabs.ActivePanel())
}

func TestTabs_UnknownIDIgnored(t *testing.T) {
	tabs := DefaultTabs()
	tabs.Activate("tab-rag")
	assert.False(t, tabs.Activate("tab-missing"))
	assert.Equal(t, "tab-rag", tabs.Active().ID)
	nt, np := activeCounts(tabs)
	assert.Equal(t, 1, nt)
	assert.Equal(t, 1, np)
}

func TestTabs_Cycle(t *testing.T) {
	tabs := DefaultTabs()
	tabs.Prev()
	assert.Equal(t, "tab-utils", tabs.Active().ID)
	tabs.Next()
	assert.Equal(t, "tab-chat", tabs.Active().ID)
	assert.True(t, tabs.ActivateIndex(2))
	assert.Equal(t, PanelVectors, tabs.ActivePanel())
	assert.False(t, tabs.ActivateIndex(9))
}

func TestTabs_SharedPanel(t *testing.T) {
	tabs, err := NewTabs([]Tab{
		{ID: "a", Target: "p1"},
		{ID: "b", Target: "p1"},
		{ID: "c", Target: "p2"},
	}, []string{"p1", "p2"})
	require.NoError(t, err)

	tabs.Activate("b")
	nt, np := activeCounts(tabs)
	assert.Equal(t, 1, nt)
	assert.Equal(t, 1, np)
	assert.False(t, tabs.TabActive("a"))
	assert.True(t, tabs.PanelActive("p1"))
}

func TestNewTabs_Errors(t *testing.T) {
	_, err := NewTabs(nil, nil)
	assert.Error(t, err)

	_, err = NewTabs([]Tab{{ID: "a", Target: "missing"}}, []string{"p"})
	assert.Error(t, err)

	_, err = NewTabs([]Tab{{ID: "a", Target: "p"}, {ID: "a", Target: "p"}}, []string{"p"})
	assert.Error(t, err)
}
