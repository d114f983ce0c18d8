package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"quill/internal/driver"
)

// stageWeight is the share of a file's work finished once the stage is reached.
var stageWeight = map[driver.Stage]float64{
	driver.StageLoad:    0.1,
	driver.StageParse:   0.3,
	driver.StageResolve: 0.6,
	driver.StageCheck:   0.9,
}

var stageVerb = map[driver.Stage]string{
	driver.StageLoad:    "loading",
	driver.StageParse:   "parsing",
	driver.StageResolve: "resolving",
	driver.StageCheck:   "checking",
}

var (
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleOK      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleBusy    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	styleElapsed = lipgloss.NewStyle().Faint(true)
)

const statusColumn = 10

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	items   []fileItem
	index   map[string]int
	phase   string
	width   int
	done    bool
}

// fileItem is one row of the view: an entry or a library discovered while
// loading.
type fileItem struct {
	path    string
	status  string
	stage   driver.Stage
	final   bool
	elapsed time.Duration
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders check progress.
// Rows start with files; libraries named by later events get their own rows.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styleBusy))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		index:   make(map[string]int, len(files)),
		width:   80,
	}
	for _, file := range files {
		m.row(file)
	}
	return m
}

// row returns the index of path's row, adding a queued row when needed.
func (m *progressModel) row(path string) int {
	if idx, ok := m.index[path]; ok {
		return idx
	}
	m.index[path] = len(m.items)
	m.items = append(m.items, fileItem{path: path, status: "queued"})
	return len(m.items) - 1
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for one driver event; a closed channel ends the program.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-24, 10)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// applyEvent folds one event into the rows. Events without a file name the
// current phase of the whole run. A finished row only changes to report an
// error.
func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.phase = label
		}
		return nil
	}
	it := &m.items[m.row(ev.File)]
	if it.final && ev.Status != driver.StatusError {
		return nil
	}
	if label != "" {
		it.status = label
	}
	if ev.Status != driver.StatusQueued {
		it.stage = ev.Stage
	}
	it.elapsed += ev.Elapsed
	switch {
	case ev.Status == driver.StatusError, ev.Status == driver.StatusCached:
		it.final = true
	case ev.Stage == driver.StageCheck && ev.Status == driver.StatusDone:
		it.final = true
	}
	return m.bar.SetPercent(m.percent())
}

// percent averages per-row progress; finished rows count fully.
func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, it := range m.items {
		if it.final {
			total++
			continue
		}
		total += stageWeight[it.stage]
	}
	return total / float64(len(m.items))
}

// tally counts finished, cached and failed rows.
func (m *progressModel) tally() (finished, cached, failed int) {
	for _, it := range m.items {
		if !it.final {
			continue
		}
		finished++
		switch it.status {
		case "cached":
			cached++
		case "error":
			failed++
		}
	}
	return finished, cached, failed
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	var b strings.Builder

	head := m.title
	if m.phase != "" {
		head += " (" + m.phase + ")"
	}
	if m.done {
		b.WriteString(styleOK.Render("✓") + " " + styleTitle.Render(head))
	} else {
		b.WriteString(m.spinner.View() + " " + styleTitle.Render(head))
	}
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-14, 20)
	for _, it := range m.items {
		status := statusStyle(it.status).Render(fmt.Sprintf("%*s", statusColumn, it.status))
		line := "  " + status + "  " + truncate(it.path, nameWidth)
		if it.final && it.elapsed > 0 {
			line += " " + styleElapsed.Render(it.elapsed.Round(time.Millisecond).String())
		}
		b.WriteString(line + "\n")
	}

	finished, cached, failed := m.tally()
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	fmt.Fprintf(&b, " %d/%d", finished, len(m.items))
	if cached > 0 {
		fmt.Fprintf(&b, ", %d cached", cached)
	}
	if failed > 0 {
		b.WriteString(", " + styleFailed.Render(fmt.Sprintf("%d failed", failed)))
	}
	b.WriteString("\n")
	return b.String()
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusError:
		return "error"
	case driver.StatusCached:
		return "cached"
	case driver.StatusDone:
		if stage == driver.StageCheck {
			return "done"
		}
	case driver.StatusWorking:
	default:
		return ""
	}
	return stageVerb[stage]
}

func statusStyle(status string) lipgloss.Style {
	switch status {
	case "done", "cached":
		return styleOK
	case "error":
		return styleFailed
	case "queued":
		return styleIdle
	}
	return styleBusy
}

// truncate shortens value to width terminal columns, keeping the tail: the
// file name matters more than its directories.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	prefix := "..."
	if width <= len(prefix) {
		prefix = ""
	}
	room := width - len(prefix)
	runes := []rune(value)
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if w > room {
			break
		}
		room -= w
		start--
	}
	return prefix + string(runes[start:])
}
