package tui

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ppiankov/adfit/internal/models"
)

// mode represents the current UI interaction mode.
type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeFilterNetwork
)

const defaultTableHeight = 15

// statusCycle is the order the status filter steps through; "" shows all.
var statusCycle = []string{"", statusFail, statusNone, statusWarn, statusOK}

// Model is the top-level Bubble Tea model for the check browser.
type Model struct {
	// Data (immutable after init)
	report     *models.CheckReport
	trend      *models.TrendSummary
	allEntries []entry

	// UI state
	table           table.Model
	searchInput     textinput.Model
	filteredEntries []entry
	filters         filterState
	sortBy          sortField
	mode            mode
	networkChoices  []string
	networkCursor   int
	width           int
	height          int
	statusMsg       string
	// clipboard is captured here for testing instead of writing to stdout
	clipboard string
}

// New creates a new TUI model from a check report.
func New(report *models.CheckReport, trend *models.TrendSummary) Model {
	entries := buildEntries(report)

	sortEntries(entries, sortByStatus)
	rows := buildRows(entries)
	t := newTable(rows, defaultTableHeight)

	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 64

	return Model{
		report:          report,
		trend:           trend,
		allEntries:      entries,
		filteredEntries: entries,
		table:           t,
		searchInput:     ti,
		sortBy:          sortByStatus,
		mode:            modeNormal,
		networkChoices:  uniqueNetworks(entries),
		width:           80,
		height:          24,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		tableH := msg.Height - headerHeight - detailHeight - 3
		if tableH < 3 {
			tableH = 3
		}
		m.table.SetHeight(tableH)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	default:
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeSearch:
		return m.handleSearchKey(msg)
	case modeFilterNetwork:
		return m.handleFilterNetworkKey(msg)
	default:
		return m.handleNormalKey(msg)
	}
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Search):
		m.mode = modeSearch
		m.searchInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, keys.FilterNetwork):
		m.mode = modeFilterNetwork
		m.networkCursor = 0
		return m, nil
	case key.Matches(msg, keys.FilterStatus):
		m.filters.Status = nextStatus(m.filters.Status)
		m.rebuildTable()
		if m.filters.Status != "" {
			m.statusMsg = fmt.Sprintf("Status: %s", statusLabel(m.filters.Status))
		} else {
			m.statusMsg = ""
		}
		return m, nil
	case key.Matches(msg, keys.Sort):
		m.sortBy = (m.sortBy + 1) % sortField(sortFieldCount)
		m.rebuildTable()
		m.statusMsg = fmt.Sprintf("Sort: %s", sortFieldName(m.sortBy))
		return m, nil
	case key.Matches(msg, keys.Copy):
		m.copySelectedEntry()
		return m, nil
	case key.Matches(msg, keys.ClearFilter):
		m.filters = filterState{}
		m.statusMsg = ""
		m.rebuildTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func nextStatus(current string) string {
	for i, s := range statusCycle {
		if s == current {
			return statusCycle[(i+1)%len(statusCycle)]
		}
	}
	return ""
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filters.SearchText = m.searchInput.Value()
		m.mode = modeNormal
		m.searchInput.Blur()
		m.rebuildTable()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleFilterNetworkKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.networkCursor > 0 {
			m.networkCursor--
		}
	case "down", "j":
		if m.networkCursor < len(m.networkChoices) {
			m.networkCursor++
		}
	case "enter":
		if m.networkCursor == 0 {
			m.filters.Network = ""
		} else if m.networkCursor <= len(m.networkChoices) {
			m.filters.Network = m.networkChoices[m.networkCursor-1]
		}
		m.mode = modeNormal
		m.rebuildTable()
		if m.filters.Network != "" {
			m.statusMsg = fmt.Sprintf("Network: %s", m.filters.Network)
		} else {
			m.statusMsg = ""
		}
	case "esc":
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) rebuildTable() {
	filtered := applyFilters(m.allEntries, m.filters)
	sortEntries(filtered, m.sortBy)
	m.filteredEntries = filtered
	m.table.SetRows(buildRows(filtered))
}

func (m *Model) selectedEntry() *entry {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.filteredEntries) {
		return nil
	}
	return &m.filteredEntries[cursor]
}

// copySelectedEntry writes the selected row to clipboard via OSC 52.
func (m *Model) copySelectedEntry() {
	e := m.selectedEntry()
	if e == nil {
		m.statusMsg = "Nothing to copy"
		return
	}
	text := fmt.Sprintf("[%s] %s", statusLabel(e.Status), e.Asset.Path)
	if e.Placement != nil {
		text += fmt.Sprintf(" -> %s/%s", e.Placement.Network, e.Placement.PlacementKey)
		if len(e.Placement.Outcome.Issues) > 0 {
			text += " -- " + strings.Join(e.Placement.Outcome.Issues, "; ")
		}
	} else if e.Note != "" {
		text += " -- " + e.Note
	}
	m.clipboard = text
	m.statusMsg = "Copied!"
	// OSC 52 clipboard escape: works in most modern terminals
	fmt.Printf("\033]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	var sparkline []int
	if m.trend != nil {
		sparkline = m.trend.IssueSparkline
	}
	b.WriteString(renderHeader(m.report, sparkline, m.width))
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(styleSearchPrompt.Render("/ "))
		b.WriteString(m.searchInput.View())
		b.WriteString("\n")
	}

	if m.mode == modeFilterNetwork {
		b.WriteString(m.renderNetworkFilter())
		b.WriteString("\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	b.WriteString(renderDetail(m.selectedEntry(), m.width))
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderNetworkFilter() string {
	var b strings.Builder
	b.WriteString("Filter by network:\n")

	options := append([]string{"All"}, m.networkChoices...)
	for i, opt := range options {
		cursor := "  "
		if i == m.networkCursor {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, opt))
	}
	return b.String()
}

func (m *Model) renderFooter() string {
	left := "q:quit  /:search  n:network  f:status  s:sort  c:copy  esc:clear"
	right := fmt.Sprintf("%d/%d rows", len(m.filteredEntries), len(m.allEntries))

	if m.statusMsg != "" {
		right = m.statusMsg + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return styleFooter.Render(left + strings.Repeat(" ", gap) + right)
}

// Run starts the Bubble Tea program. Called from the check and runs commands.
func Run(report *models.CheckReport, trend *models.TrendSummary) error {
	m := New(report, trend)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
