package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"cybersandbox/internal/shim"
)

// item is one focusable control: a single-line input, a multi-line area, or a button.
type item struct {
	field   string
	label   string
	trigger string
	input   *textinput.Model
	area    *textarea.Model
}

func (it *item) button() bool { return it.input == nil && it.area == nil }

func (it *item) value() string {
	switch {
	case it.input != nil:
		return it.input.Value()
	case it.area != nil:
		return it.area.Value()
	}
	return ""
}

func (it *item) setValue(v string) {
	switch {
	case it.input != nil:
		it.input.SetValue(v)
	case it.area != nil:
		it.area.SetValue(v)
	}
}

func (it *item) focus() tea.Cmd {
	switch {
	case it.input != nil:
		return it.input.Focus()
	case it.area != nil:
		return it.area.Focus()
	}
	return nil
}

func (it *item) blur() {
	switch {
	case it.input != nil:
		it.input.Blur()
	case it.area != nil:
		it.area.Blur()
	}
}

func (it *item) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch {
	case it.input != nil:
		*it.input, cmd = it.input.Update(msg)
	case it.area != nil:
		*it.area, cmd = it.area.Update(msg)
	}
	return cmd
}

func (it *item) view(focused bool) string {
	if it.button() {
		label := "[ " + it.label + " ]"
		if focused {
			return focusedButtonStyle.Render(label)
		}
		return buttonStyle.Render(label)
	}
	title := labelStyle.Render(it.label)
	if it.input != nil {
		return title + " " + it.input.View()
	}
	return title + "\n" + it.area.View()
}

// panel is the form shown under one tab plus the regions it writes to.
type panel struct {
	id      string
	items   []*item
	regions []string
	focus   int
}

func (p *panel) focused() *item {
	if len(p.items) == 0 {
		return nil
	}
	return p.items[p.focus]
}

func (p *panel) moveFocus(delta int) tea.Cmd {
	if len(p.items) == 0 {
		return nil
	}
	p.items[p.focus].blur()
	p.focus = (p.focus + delta + len(p.items)) % len(p.items)
	return p.items[p.focus].focus()
}

func (p *panel) find(field string) *item {
	for _, it := range p.items {
		if it.field == field {
			return it
		}
	}
	return nil
}

func newInput(placeholder string) *textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = 0
	return &ti
}

func newArea(placeholder string) *textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(3)
	return &ta
}

func field(id, label, trigger, placeholder string) *item {
	return &item{field: id, label: label, trigger: trigger, input: newInput(placeholder)}
}

func area(id, label, trigger, placeholder string) *item {
	return &item{field: id, label: label, trigger: trigger, area: newArea(placeholder)}
}

func button(label, trigger string) *item {
	return &item{label: label, trigger: trigger}
}

func buildPanels(d shim.Defaults) map[string]*panel {
	panels := map[string]*panel{
		shim.PanelChat: {
			id: shim.PanelChat,
			items: []*item{
				field(shim.FieldChatMessage, "Message", shim.TriggerChat, "Ask the copilot and press Enter"),
				field(shim.FieldSystemPrompt, "System prompt", shim.TriggerChat, truncate(d.SystemPrompt, 48)),
				button("Send", shim.TriggerChat),
			},
			regions: []string{shim.RegionChat},
		},
		shim.PanelRAG: {
			id: shim.PanelRAG,
			items: []*item{
				field(shim.FieldIngestFile, "File", shim.TriggerIngest, "path/to/document.md"),
				field(shim.FieldChunkMode, "Chunk mode", shim.TriggerIngest, string(d.ChunkMode)),
				button("Upload", shim.TriggerIngest),
				field(shim.FieldQuery, "Query", shim.TriggerQuery, "phishing from example.net"),
				field(shim.FieldTopK, "Top K", shim.TriggerQuery, strconv.Itoa(d.TopK)),
				field(shim.FieldRetrievalMode, "Mode", shim.TriggerQuery, string(d.RetrievalMode)),
				field(shim.FieldDocIDs, "Doc IDs", shim.TriggerQuery, "comma separated"),
				field(shim.FieldThreatTags, "Threat tags", shim.TriggerQuery, "comma separated"),
				button("Search", shim.TriggerQuery),
			},
			regions: []string{shim.RegionIngest, shim.RegionQuery},
		},
		shim.PanelVectors: {
			id:      shim.PanelVectors,
			items:   []*item{button("Reload", shim.TriggerVectors)},
			regions: []string{shim.RegionVectors},
		},
		shim.PanelUtils: {
			id: shim.PanelUtils,
			items: []*item{
				area(shim.FieldIOCText, "IOC text", shim.TriggerIOC, "Paste text with indicators"),
				button("Extract IOCs", shim.TriggerIOC),
				area(shim.FieldHeaders, "Email headers", shim.TriggerHeaders, "Paste raw headers"),
				button("Parse headers", shim.TriggerHeaders),
				area(shim.FieldLogText, "Logs", shim.TriggerLogs, "Paste log lines"),
				button("Summarize logs", shim.TriggerLogs),
				area(shim.FieldEmbedTexts, "Texts to embed", shim.TriggerEmbed, "One text per line"),
				button("Embed", shim.TriggerEmbed),
			},
			regions: []string{shim.RegionIOC, shim.RegionHeaders, shim.RegionLogs, shim.RegionEmbed},
		},
	}
	for _, p := range panels {
		p.items[0].focus()
	}
	return panels
}

var regionTitles = map[string]string{
	shim.RegionChat:    "Assistant",
	shim.RegionIngest:  "Ingest result",
	shim.RegionQuery:   "Search results",
	shim.RegionVectors: "Metadata",
	shim.RegionIOC:     "IOCs",
	shim.RegionHeaders: "Headers",
	shim.RegionLogs:    "Log summary",
	shim.RegionEmbed:   "Embeddings",
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
