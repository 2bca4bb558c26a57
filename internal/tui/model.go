package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"cybersandbox/internal/logger"
	"cybersandbox/internal/plot"
	"cybersandbox/internal/render"
	"cybersandbox/internal/shim"
)

// Options configures the terminal UI.
type Options struct {
	Context        context.Context
	Logger         *zap.Logger
	Decorator      *render.Decorator
	BaseURL        string
	RenderMarkdown bool
	PlotWidth      int
	PlotHeight     int
	MarkerRadius   float64
}

// outcomeMsg carries a finished request back into Update.
type outcomeMsg struct {
	outcome shim.Outcome
}

// Model is the Bubble Tea model for the sandbox client.
type Model struct {
	ctx     context.Context
	logger  *zap.Logger
	shim    *shim.Shim
	tabs    *shim.Tabs
	panels  map[string]*panel
	regions map[string]string
	query   map[string]string

	baseURL  string
	deco     *render.Decorator
	markdown bool
	grid     *plot.Grid
	radius   float64
	markers  []plot.Marker

	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

// New creates a new TUI model instance.
func New(s *shim.Shim, opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = logger.FromContext(opts.Context)
	}
	if opts.MarkerRadius <= 0 {
		opts.MarkerRadius = 0.5
	}
	return Model{
		ctx:      opts.Context,
		logger:   opts.Logger,
		shim:     s,
		tabs:     shim.DefaultTabs(),
		panels:   buildPanels(s.Defaults()),
		regions:  map[string]string{},
		query:    map[string]string{},
		baseURL:  opts.BaseURL,
		deco:     opts.Decorator,
		markdown: opts.RenderMarkdown,
		grid:     plot.NewGrid(opts.PlotWidth, opts.PlotHeight),
		radius:   opts.MarkerRadius,
		viewport: viewport.New(0, 0),
	}
}

// Init loads the vector projection, as the page does on first paint.
func (m Model) Init() tea.Cmd {
	return m.trigger(shim.TriggerVectors)
}

// Update handles key, window and outcome messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width, m.height = msg.Width, msg.Height
		m.resizeAreas()
	case outcomeMsg:
		m.apply(msg.outcome)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	}
	m.refresh()
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
		return tea.Quit
	}
	p := m.activePanel()
	switch key := msg.String(); key {
	case "ctrl+right":
		m.tabs.Next()
		m.viewport.GotoTop()
		return nil
	case "ctrl+left":
		m.tabs.Prev()
		m.viewport.GotoTop()
		return nil
	case "alt+1", "alt+2", "alt+3", "alt+4":
		if m.tabs.ActivateIndex(int(key[len(key)-1] - '1')) {
			m.viewport.GotoTop()
		}
		return nil
	case "tab":
		return p.moveFocus(1)
	case "shift+tab":
		return p.moveFocus(-1)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	case "ctrl+s":
		if it := p.focused(); it != nil {
			return m.trigger(it.trigger)
		}
		return nil
	case "enter":
		if it := p.focused(); it != nil && it.area == nil {
			return m.trigger(it.trigger)
		}
	}
	if it := p.focused(); it != nil {
		return it.update(msg)
	}
	return nil
}

// trigger starts an action. The pending or pre-check text is shown immediately; the request,
// if any, runs as a command.
func (m *Model) trigger(id string) tea.Cmd {
	in := m.inputs()
	st := m.shim.Begin(id, in)
	if st.Region != "" {
		m.regions[st.Region] = st.Text
	}
	if id == shim.TriggerQuery {
		m.query[shim.RegionQuery] = in[shim.FieldQuery]
	}
	if st.Run == nil {
		m.logger.Debug("trigger rejected", zap.String("trigger", id), zap.Error(st.Err))
		return nil
	}
	if id == shim.TriggerVectors {
		m.grid.Clear()
		m.markers = nil
	}
	m.logger.Debug("trigger started", zap.String("trigger", id))
	ctx, run := m.ctx, st.Run
	return func() tea.Msg { return outcomeMsg{outcome: run(ctx)} }
}

func (m *Model) apply(o shim.Outcome) {
	if !m.shim.Accept(o) {
		m.logger.Debug("stale reply dropped", zap.String("region", o.Region))
		return
	}
	m.regions[o.Region] = o.Text
	if o.Region == shim.RegionVectors && o.Err == nil {
		m.markers = plot.Draw(m.grid, o.Points, m.radius)
	}
}

func (m *Model) inputs() shim.Inputs {
	in := shim.Inputs{}
	for _, p := range m.panels {
		for _, it := range p.items {
			if it.field != "" {
				in[it.field] = it.value()
			}
		}
	}
	return in
}

func (m *Model) activePanel() *panel {
	return m.panels[m.tabs.ActivePanel()]
}

func (m *Model) resizeAreas() {
	w := max(20, m.width-6)
	for _, p := range m.panels {
		for _, it := range p.items {
			if it.area != nil {
				it.area.SetWidth(w)
			}
			if it.input != nil {
				it.input.Width = max(10, w-len(it.label)-4)
			}
		}
	}
}

// refresh sizes the viewport to what the form leaves and reloads its content.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	fw, fh := outputBoxStyle.GetFrameSize()
	reserved := 1 + lipgloss.Height(m.renderTabs()) + lipgloss.Height(m.renderForm()) + 1 + fh
	m.viewport.Width = max(20, m.width-fw)
	m.viewport.Height = max(3, m.height-reserved)
	m.viewport.SetContent(m.renderOutput())
}

// View renders the tabs, the active form and its output regions.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Iron Dillo Cybersandbox") + "  " + helpStyle.Render(m.baseURL)
	help := helpStyle.Render("ctrl+left/right or alt+1-4 tabs | tab focus | enter or ctrl+s run | pgup/pgdn scroll | ctrl+c quit")
	return strings.Join([]string{
		header,
		m.renderTabs(),
		m.renderForm(),
		outputBoxStyle.Render(m.viewport.View()),
		help,
	}, "\n")
}

func (m Model) renderTabs() string {
	var parts []string
	for _, t := range m.tabs.All() {
		if m.tabs.TabActive(t.ID) {
			parts = append(parts, activeTabStyle.Render(t.Title))
		} else {
			parts = append(parts, tabStyle.Render(t.Title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderForm() string {
	p := m.activePanel()
	lines := make([]string, 0, len(p.items))
	for i, it := range p.items {
		lines = append(lines, it.view(i == p.focus))
	}
	return formBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderOutput() string {
	p := m.activePanel()
	var b strings.Builder
	if p.id == shim.PanelVectors {
		b.WriteString(regionTitleStyle.Render(fmt.Sprintf("Projection (%d points)", len(m.markers))))
		b.WriteString("\n")
		b.WriteString(m.grid.String())
		b.WriteString("\n\n")
	}
	for i, r := range p.regions {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(regionTitleStyle.Render(regionTitles[r]))
		b.WriteString("\n")
		b.WriteString(m.decorate(r))
	}
	return b.String()
}

// decorate styles region text for display without changing the stored text.
func (m Model) decorate(region string) string {
	text, ok := m.regions[region]
	if !ok || text == "" {
		return emptyStyle.Render("No output yet.")
	}
	if strings.HasPrefix(text, render.ErrorPrefix) {
		return text
	}
	a, _ := m.shim.ActionForRegion(region)
	switch {
	case region == shim.RegionQuery:
		return highlightTerms(text, m.query[region])
	case a.Kind == shim.KindText && m.markdown:
		return m.deco.Markdown(text)
	case a.Kind == shim.KindJSON:
		return m.deco.JSON(text)
	}
	return text
}

// Region returns the current text of an output region.
func (m Model) Region(id string) string { return m.regions[id] }

// SetField sets a control value by field id.
func (m Model) SetField(id, value string) bool {
	for _, p := range m.panels {
		if it := p.find(id); it != nil {
			it.setValue(value)
			return true
		}
	}
	return false
}

// Markers returns where the last projection was drawn.
func (m Model) Markers() []plot.Marker { return m.markers }
