// Package tui implements the interactive terminal front end: a URL entry
// form, a live progress screen while a batch runs, and a filterable result
// table with export and clipboard actions.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/anchorscan/anchorscan/config"
	"github.com/anchorscan/anchorscan/export"
	"github.com/anchorscan/anchorscan/models"
	"github.com/anchorscan/anchorscan/results"
	"github.com/anchorscan/anchorscan/runner"
)

type phase int

const (
	phaseForm phase = iota
	phaseRunning
	phaseResults
)

// BatchRunner processes a batch of URLs sequentially, reporting progress
// after each one.
type BatchRunner interface {
	Run(ctx context.Context, urls []string, brand string, progress runner.ProgressFunc) (*models.ResultTable, error)
}

type progressMsg struct {
	completed int
	total     int
}

type runDoneMsg struct {
	table *models.ResultTable
	err   error
}

// Model drives the three screens of the program. Results persist in the
// store across runs, so filtering and exporting keep working after the
// form is reopened.
type Model struct {
	cfg   *config.Config
	batch BatchRunner
	store *results.Store

	phase  phase
	notice string

	input    textarea.Model
	brands   []string
	brandIdx int

	spin      spinner.Model
	bar       progress.Model
	urls      []string
	completed int
	total     int

	tbl     table.Model
	views   []results.View
	viewIdx int

	progressCh chan progressMsg
	doneCh     chan runDoneMsg
	cancel     context.CancelFunc

	width  int
	height int
}

// New assembles the form screen with the brand selector defaulting to the
// combined view.
func New(cfg *config.Config, batch BatchRunner, store *results.Store) Model {
	ta := textarea.New()
	ta.Placeholder = "https://example.com/article1\nhttps://example.com/article2"
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(8)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))

	bar := progress.New(progress.WithDefaultGradient())

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63")).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("63"))
	tbl := table.New(table.WithFocused(true), table.WithHeight(10), table.WithStyles(st))

	brands := append([]string{config.AllBrands}, cfg.Brands.Names()...)
	brandIdx := 0
	for i, b := range brands {
		if b == cfg.Brand {
			brandIdx = i
			break
		}
	}

	return Model{
		cfg:      cfg,
		batch:    batch,
		store:    store,
		input:    ta,
		brands:   brands,
		brandIdx: brandIdx,
		spin:     sp,
		bar:      bar,
		tbl:      tbl,
		views:    results.Views(),
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if w := min(msg.Width-6, 100); w > 0 {
			m.input.SetWidth(w)
		}
		if w := min(msg.Width-10, 60); w > 0 {
			m.bar.Width = w
		}
		if m.phase == phaseResults {
			m.refreshTable()
		}
		return m, nil

	case spinner.TickMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progressMsg:
		// A zero total means the channel was closed after the run finished.
		if msg.total == 0 {
			return m, nil
		}
		m.completed, m.total = msg.completed, msg.total
		return m, m.waitProgress()

	case runDoneMsg:
		if m.phase != phaseRunning {
			return m, nil
		}
		if msg.err != nil {
			m.phase = phaseForm
			m.notice = errorStyle.Render(fmt.Sprintf("⚠️ %v", msg.err))
			m.input.Focus()
			return m, textarea.Blink
		}
		m.store.Set(msg.table)
		m.phase = phaseResults
		m.viewIdx = 0
		m.notice = successStyle.Render("✅ Extraction complete! (Results persist until you run Extract again.)")
		m.refreshTable()
		return m, nil

	case tea.KeyMsg:
		switch m.phase {
		case phaseRunning:
			return m.updateRunning(msg)
		case phaseResults:
			return m.updateResults(msg)
		default:
			return m.updateForm(msg)
		}
	}

	if m.phase == phaseForm {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		m.brandIdx = (m.brandIdx + 1) % len(m.brands)
		return m, nil
	case "shift+tab":
		m.brandIdx = (m.brandIdx - 1 + len(m.brands)) % len(m.brands)
		return m, nil
	case "ctrl+r":
		urls := runner.ParseURLList(m.input.Value())
		if len(urls) == 0 {
			m.notice = warningStyle.Render("⚠️ Please enter at least one URL.")
			return m, nil
		}
		if len(urls) > m.cfg.MaxBatchSize {
			m.notice = errorStyle.Render("❌ Too many URLs entered.")
			return m, nil
		}
		m.notice = ""
		cmd := m.startRun(urls)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateRunning(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "f":
		m.viewIdx = (m.viewIdx + 1) % len(m.views)
		m.refreshTable()
		return m, nil
	case "e":
		m.notice = m.exportNotice(export.DefaultCSVName, m.store.Get())
		return m, nil
	case "E":
		m.notice = m.exportNotice(export.DefaultFilteredCSVName, m.filtered())
		return m, nil
	case "c":
		m.notice = m.copyNotice(false)
		return m, nil
	case "C":
		m.notice = m.copyNotice(true)
		return m, nil
	case "n":
		m.phase = phaseForm
		m.notice = ""
		m.input.Focus()
		return m, textarea.Blink
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

// startRun launches the batch in a goroutine and rigs the channels the
// program drains for progress and completion. The progress channel is
// buffered for the whole batch so the runner never blocks on the UI.
func (m *Model) startRun(urls []string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.phase = phaseRunning
	m.urls = urls
	m.completed = 0
	m.total = len(urls)
	m.progressCh = make(chan progressMsg, len(urls)+1)
	m.doneCh = make(chan runDoneMsg, 1)

	progressCh := m.progressCh
	doneCh := m.doneCh
	batch := m.batch
	brand := m.brands[m.brandIdx]

	go func() {
		defer cancel()
		tbl, err := batch.Run(ctx, urls, brand, func(completed, total int) {
			progressCh <- progressMsg{completed: completed, total: total}
		})
		close(progressCh)
		doneCh <- runDoneMsg{table: tbl, err: err}
	}()

	return tea.Batch(m.spin.Tick, m.waitProgress(), m.waitDone())
}

func (m Model) waitProgress() tea.Cmd {
	ch := m.progressCh
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) waitDone() tea.Cmd {
	ch := m.doneCh
	return func() tea.Msg {
		return <-ch
	}
}

// filtered projects the stored table through the active view.
func (m Model) filtered() *models.ResultTable {
	return results.Apply(m.store.Get(), m.views[m.viewIdx])
}

func (m *Model) refreshTable() {
	ft := m.filtered()
	var brandCols []string
	if ft != nil {
		brandCols = ft.BrandColumns
	}

	rows := make([]table.Row, 0, ft.Len())
	if ft != nil {
		for _, r := range ft.Rows {
			row := table.Row{r.SourceURL, r.PageTitle}
			for _, b := range brandCols {
				row = append(row, r.BrandAnchors[b])
			}
			row = append(row, r.AnchorText, string(results.Tag(r)))
			rows = append(rows, row)
		}
	}

	m.tbl.SetRows(nil)
	m.tbl.SetColumns(m.tableColumns(brandCols))
	m.tbl.SetRows(rows)
	m.tbl.SetHeight(m.tableHeight(len(rows)))
	m.tbl.GotoTop()
}

func (m Model) tableColumns(brands []string) []table.Column {
	anchorW := 38
	if m.width > 130 {
		anchorW = min(m.width-92, 80)
	}
	cols := []table.Column{
		{Title: models.ColumnSourceURL, Width: 34},
		{Title: models.ColumnPageTitle, Width: 22},
	}
	for _, b := range brands {
		cols = append(cols, table.Column{Title: b, Width: 20})
	}
	cols = append(cols,
		table.Column{Title: models.ColumnAnchorText, Width: anchorW},
		table.Column{Title: "Status", Width: 13},
	)
	return cols
}

func (m Model) tableHeight(rows int) int {
	limit := 12
	if m.height > 0 {
		limit = max(m.height-12, 4)
	}
	return max(min(rows+1, limit), 4)
}

func (m Model) exportNotice(path string, tbl *models.ResultTable) string {
	if err := export.WriteCSVFile(path, tbl); err != nil {
		return errorStyle.Render(fmt.Sprintf("⚠️ Export failed: %v", err))
	}
	return infoStyle.Render(fmt.Sprintf("⬇️ Saved %s", path))
}

func (m Model) copyNotice(withHeader bool) string {
	ft := m.filtered()
	text, err := results.Column(ft, models.ColumnAnchorText, withHeader)
	if err != nil {
		return errorStyle.Render(fmt.Sprintf("⚠️ Copy failed: %v", err))
	}
	if err := clipboard.WriteAll(text); err != nil {
		return errorStyle.Render(fmt.Sprintf("⚠️ Copy failed: %v", err))
	}
	return infoStyle.Render(fmt.Sprintf("📋 Copied %s (%d rows)", models.ColumnAnchorText, ft.Len()))
}

func (m Model) View() string {
	switch m.phase {
	case phaseRunning:
		return m.viewRunning()
	case phaseResults:
		return m.viewResults()
	default:
		return m.viewForm()
	}
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔗 Anchor Text Extractor") + "\n\n")
	b.WriteString("Brand: " + selectedStyle.Render("◀ "+m.brands[m.brandIdx]+" ▶") + "\n\n")
	b.WriteString("Paste one URL per line:\n")
	b.WriteString(m.input.View() + "\n")
	n := len(runner.ParseURLList(m.input.Value()))
	b.WriteString(infoStyle.Render(fmt.Sprintf("URLs entered: %d / %d", n, m.cfg.MaxBatchSize)) + "\n")
	if m.notice != "" {
		b.WriteString("\n" + m.notice + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("tab: switch brand • ctrl+r: extract • ctrl+c: quit"))
	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔗 Anchor Text Extractor") + "\n\n")
	b.WriteString(fmt.Sprintf("%s Processing %d/%d\n\n", m.spin.View(), m.completed, m.total))
	b.WriteString(m.bar.ViewAs(float64(m.completed)/float64(max(1, m.total))) + "\n\n")

	width := m.width
	if width <= 0 {
		width = 80
	}
	if n := len(m.urls); n > 0 {
		done := min(m.completed, n)
		for _, url := range m.urls[max(0, done-5):done] {
			b.WriteString(successStyle.Render("✓ ") + truncate(url, width-6) + "\n")
		}
		if done < n {
			b.WriteString(infoStyle.Render("… "+truncate(m.urls[done], width-6)) + "\n")
		}
	}
	return b.String()
}

func truncate(s string, w int) string {
	if w <= 3 || len(s) <= w {
		return s
	}
	return s[:w-3] + "..."
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🔗 Anchor Text Extractor") + "\n\n")

	base := m.store.Get()
	if base.Len() == 0 {
		b.WriteString(warningStyle.Render("⚠️ No data extracted.") + "\n\n")
		b.WriteString(helpStyle.Render("n: new run • q: quit"))
		return b.String()
	}

	if m.notice != "" {
		b.WriteString(m.notice + "\n")
	}
	ft := m.filtered()
	b.WriteString(infoStyle.Render(fmt.Sprintf("Filter rows: %s (%d/%d)", m.views[m.viewIdx].Name, ft.Len(), base.Len())) + "\n")
	b.WriteString(borderStyle.Render(m.tbl.View()) + "\n")
	b.WriteString(helpStyle.Render("↑/↓: scroll • f: filter • e: export csv • E: export filtered • c/C: copy anchors • n: new run • q: quit"))
	return b.String()
}
