// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/morsedrill/internal/drill"
	"github.com/verte-zerg/morsedrill/internal/model"
	"github.com/verte-zerg/morsedrill/internal/morse"
	"github.com/verte-zerg/morsedrill/internal/store"
)

const helpText = `Each symbol is shown as its Morse pattern. Key the symbol within the time limit.
Accuracy matters more than speed. A symbol counts as learned once its accuracy
is above the mastery threshold with enough tries behind it; then the next symbol
of the course is unlocked. Symbols you miss come up more often.

space  don't know    ctrl+r  replay    tab  pause/resume
f1     help          ctrl+n  next course
esc    save and quit`

// startMsg begins the drill once the program is running.
type startMsg struct{}

type symbolStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Model implements the Bubble Tea drill UI.
type Model struct {
	config    model.Config
	store     *store.Store
	logger    *zap.Logger
	sched     *drill.Scheduler
	presenter *Presenter
	bar       progress.Model
	now       func() time.Time

	width  int
	height int

	percents map[drill.Symbol]float64
	last     drill.Response
	hasLast  bool
	showHelp bool
	errMsg   string

	sessionID string
	startedAt time.Time
	correct   int
	incorrect int
	stats     map[drill.Symbol]*symbolStat
}

var (
	patternStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FBF7F"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	newStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	helpStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
)

// NewModel constructs a drill TUI model around a fresh scheduler. The store
// may be nil, in which case nothing is persisted.
func NewModel(cfg model.Config, alphabet drill.Alphabet, st *store.Store, reg *drill.Registry, logger *zap.Logger, opts ...drill.Option) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Model{
		config:   cfg,
		store:    st,
		logger:   logger,
		now:      time.Now,
		bar:      progress.New(progress.WithSolidFill("#C89A3A"), progress.WithWidth(16), progress.WithoutPercentage()),
		percents: map[drill.Symbol]float64{},
	}
	m.presenter = NewPresenter(func() time.Time { return m.now() })

	schedCfg := drill.Config{
		PlanConfig: drill.PlanConfig{
			Mastery:        cfg.Mastery,
			MinTries:       cfg.MinTries,
			MaxWeak:        cfg.MaxWeak,
			DrillEntireSet: cfg.EntireSet,
		},
		EmphasizeWeak: cfg.EmphasizeWeak,
		Timeliness:    time.Duration(cfg.TimelyMs) * time.Millisecond,
	}
	opts = append([]drill.Option{
		drill.WithLogger(logger),
		drill.WithRegistry(reg),
		drill.WithObserver(m.onStat),
		drill.WithClock(func() time.Time { return m.now() }),
	}, opts...)
	sched, err := drill.New(alphabet, schedCfg, m.presenter, opts...)
	if err != nil {
		return nil, err
	}
	m.sched = sched
	m.refreshPercents()
	return m, nil
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.start()
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.pause()
			return m, tea.Quit
		case tea.KeyTab:
			if m.sched.State() == drill.StateRunning {
				m.pause()
			} else {
				m.start()
			}
			return m, nil
		case tea.KeyF1:
			m.showHelp = !m.showHelp
			return m, nil
		case tea.KeyCtrlR:
			m.sched.Replay()
			return m, nil
		case tea.KeyCtrlN:
			m.switchCourse(nextCourse(m.config.Course))
			return m, nil
		case tea.KeySpace:
			m.handleResponse(drill.NoSymbol)
			return m, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.handleResponse(drill.ParseSymbol(r))
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.showHelp {
		return m.place(helpStyle.Render(helpText))
	}
	sections := []string{m.renderHeader(), "", m.renderPattern(), m.renderLast(), "", m.renderBars()}
	if m.errMsg != "" {
		sections = append(sections, incorrectStyle.Render(m.errMsg))
	}
	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	if m.width == 0 || m.height == 0 {
		return body + "\n" + m.renderFooter()
	}
	if m.height < 3 {
		return m.place(body)
	}
	content := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, m.renderFooter())
}

func (m *Model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m *Model) start() {
	if m.sched.State() == drill.StateRunning {
		return
	}
	m.sessionID = uuid.NewString()
	m.startedAt = m.now()
	m.correct = 0
	m.incorrect = 0
	m.stats = map[drill.Symbol]*symbolStat{}
	m.sched.Start()
}

func (m *Model) pause() {
	if m.sched.State() != drill.StateRunning {
		return
	}
	m.sched.Stop()
	m.finishSession()
}

func (m *Model) handleResponse(keyed drill.Symbol) {
	resp := m.sched.SubmitNow(keyed)
	if resp.Status != drill.ResponseScored {
		return
	}
	m.last = resp
	m.hasLast = true
	entry := m.symbolEntry(resp.Expected)
	if resp.Success {
		m.correct++
		entry.correct++
		entry.latencySumMs += resp.Elapsed.Milliseconds()
		entry.latencyCount++
		return
	}
	m.incorrect++
	entry.incorrect++
}

// switchCourse saves the current course, loads the statistics of course and
// restarts the drill on its curriculum.
func (m *Model) switchCourse(course string) {
	order, ok := morse.Course(course)
	if !ok {
		m.errMsg = fmt.Sprintf("unknown course %q", course)
		return
	}
	alphabet, err := drill.NewAlphabet(order)
	if err != nil {
		m.errMsg = fmt.Sprintf("invalid course %q: %v", course, err)
		return
	}
	reg := drill.NewRegistry()
	if m.store != nil {
		loaded, err := m.store.LoadRegistry(context.Background(), course)
		if err != nil {
			m.logger.Error("failed to load statistics", zap.String("course", course), zap.Error(err))
			m.errMsg = fmt.Sprintf("failed to load statistics: %v", err)
			return
		}
		reg = loaded
	}

	m.pause()
	if err := m.sched.SetAlphabet(alphabet); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.sched.SetRegistry(reg)
	m.logger.Info("course switched", zap.String("from", m.config.Course), zap.String("to", course))
	m.config.Course = course
	m.config.Alphabet = ""
	m.hasLast = false
	m.errMsg = ""
	m.refreshPercents()
	m.start()
}

// nextCourse returns the built-in course after current, wrapping around. A
// custom curriculum moves to the first built-in course.
func nextCourse(current string) string {
	courses := morse.Courses()
	for i, name := range courses {
		if name == current {
			return courses[(i+1)%len(courses)]
		}
	}
	return courses[0]
}

func (m *Model) refreshPercents() {
	m.percents = map[drill.Symbol]float64{}
	for sym, st := range m.sched.Registry().Snapshot() {
		m.percents[sym] = float64(st.Accuracy()) / 100
	}
}

func (m *Model) onStat(ev drill.StatEvent) {
	m.percents[ev.Symbol] = float64(ev.Stat.Accuracy()) / 100
}

func (m *Model) symbolEntry(sym drill.Symbol) *symbolStat {
	entry, ok := m.stats[sym]
	if !ok {
		entry = &symbolStat{}
		m.stats[sym] = entry
	}
	return entry
}

func (m *Model) finishSession() {
	if m.correct+m.incorrect == 0 || m.store == nil {
		return
	}
	ctx := context.Background()
	endedAt := m.now()
	session := model.SessionStats{
		ID:         m.sessionID,
		StartedAt:  m.startedAt,
		EndedAt:    endedAt,
		Course:     m.config.Course,
		Alphabet:   m.sched.Alphabet().String(),
		Unlocked:   m.sched.Plan().Cursor,
		Correct:    m.correct,
		Incorrect:  m.incorrect,
		DurationMs: endedAt.Sub(m.startedAt).Milliseconds(),
	}
	symbols := make([]model.SymbolStats, 0, len(m.stats))
	for sym, entry := range m.stats {
		symbols = append(symbols, model.SymbolStats{
			Symbol:       sym.String(),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}
	if _, err := m.store.InsertSession(ctx, session, symbols); err != nil {
		m.logger.Error("failed to save session", zap.Error(err))
		m.errMsg = fmt.Sprintf("failed to save session: %v", err)
	}
	if err := m.store.SaveRegistry(ctx, m.config.Course, m.sched.Registry()); err != nil {
		m.logger.Error("failed to save statistics", zap.Error(err))
		m.errMsg = fmt.Sprintf("failed to save statistics: %v", err)
	}
	m.logger.Info("session saved",
		zap.String("session", m.sessionID),
		zap.Int("correct", m.correct),
		zap.Int("incorrect", m.incorrect))
}

func (m *Model) renderHeader() string {
	plan := m.sched.Plan()
	return labelStyle.Render(fmt.Sprintf("%s · %d/%d unlocked · all %d%%",
		m.config.Course, plan.Cursor, m.sched.Alphabet().Len(), plan.Average()))
}

func (m *Model) renderPattern() string {
	if m.sched.State() != drill.StateRunning {
		return labelStyle.Render("paused · tab to resume")
	}
	pattern := patternStyle.Render(m.presenter.Pattern())
	if m.sched.Plan().Kind == drill.PlanIntroduce {
		sym, _ := m.sched.Pending()
		return pattern + "\n" + newStyle.Render(fmt.Sprintf("new: %s", sym))
	}
	return pattern + "\n"
}

func (m *Model) renderLast() string {
	if !m.hasLast {
		return ""
	}
	r := m.last
	if r.Success {
		return correctStyle.Render(fmt.Sprintf("%s ✓ %dms", r.Expected, r.Elapsed.Milliseconds()))
	}
	keyed := r.Keyed.String()
	if keyed == "" {
		keyed = "nothing"
	}
	return incorrectStyle.Render(fmt.Sprintf("%s ✗ keyed %s in %dms", r.Expected, keyed, r.Elapsed.Milliseconds()))
}

func (m *Model) renderBars() string {
	symbols := m.sched.Alphabet().Symbols()
	unlocked := min(max(m.sched.Plan().Cursor, 1), len(symbols))
	rows := make([]string, 0, unlocked)
	for _, sym := range symbols[:unlocked] {
		pct := m.percents[sym]
		rows = append(rows, fmt.Sprintf("%s %s %3d%%", sym, m.bar.ViewAs(pct), int(pct*100+0.5)))
	}
	maxRows := 10
	if m.height > 12 {
		maxRows = m.height - 12
	}
	return barColumns(rows, maxRows)
}

// barColumns lays rows out top to bottom in as many columns as needed.
func barColumns(rows []string, maxRows int) string {
	if len(rows) == 0 {
		return ""
	}
	maxRows = max(maxRows, 1)
	var columns []string
	for start := 0; start < len(rows); start += maxRows {
		end := min(start+maxRows, len(rows))
		columns = append(columns, lipgloss.JoinVertical(lipgloss.Left, rows[start:end]...))
	}
	for i := 0; i < len(columns)-1; i++ {
		columns[i] = lipgloss.NewStyle().PaddingRight(3).Render(columns[i])
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func (m *Model) renderFooter() string {
	total := m.correct + m.incorrect
	segments := []string{fmt.Sprintf("Session %d", total)}
	if total > 0 {
		segments = append(segments, fmt.Sprintf("%.1f%%", float64(m.correct)/float64(total)*100))
	}
	if m.sched != nil {
		if shown := len(m.sched.History()); shown > 0 {
			segments = append(segments, fmt.Sprintf("shown %d", shown))
		}
	}
	segments = append(segments, "f1 help")
	return footerStyle.Render(strings.Join(segments, "  "))
}
