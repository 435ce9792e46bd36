package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/gicrisf/org-lorenz-attractor/internal/analysis"
	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
)

const (
	defaultCanvasW = 78
	defaultCanvasH = 22
	frameRate      = 60
	trailLen       = 600
	sparkWidth     = 30
	sparkHeight    = 4
	idleRotate     = 3 * time.Second
	autoRotStep    = 0.005
)

const helpLine = "space pause  [/] scrub  arrows rotate  +/- zoom  </> speed  a axes  t theme  g gif  r restart  q quit"

// TickMsg drives the replay clock.
type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Model replays a solved trajectory on a braille canvas with a rotating
// perspective projection and a stats sidebar. It implements tea.Model;
// run it with Run or embed it in a larger program.
type Model struct {
	name   string
	times  []float64
	states []dynamo.State
	stats  integrators.Stats

	center dynamo.State
	scale  float64

	canvas *Canvas
	camera *Camera
	theme  Theme

	pos      float64 // fractional index into states
	perTick  float64 // samples per tick at speed 1, replaying in real time
	speed    float64
	running  bool
	showAxes bool

	rec      *recorder
	recNote  string
	lastTurn time.Time // last manual camera input
}

// NewModel wraps a resampled trajectory for replay. times and states must
// have equal nonzero length; states need at least three components.
func NewModel(name string, times []float64, states []dynamo.State, stats integrators.Stats) (Model, error) {
	if len(times) == 0 || len(times) != len(states) {
		return Model{}, fmt.Errorf("%w: %d times for %d states", dynamo.ErrInvalidParams, len(times), len(states))
	}
	b, err := analysis.BoundsOf(states)
	if err != nil {
		return Model{}, err
	}
	center, scale := Fit(b)

	m := Model{
		name:    name,
		times:   times,
		states:  states,
		stats:   stats,
		center:  center,
		scale:   scale,
		canvas:  NewCanvas(defaultCanvasW, defaultCanvasH),
		camera:  NewCamera(),
		theme:   Themes[0],
		speed:   1,
		running: true,
		perTick: 1,
	}
	if span := times[len(times)-1] - times[0]; span > 0 {
		m.perTick = float64(len(times)-1) / (span * frameRate)
	}
	m.camera.RotX = -0.2
	return m, nil
}

// WithTheme returns a copy of the model using the named theme.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case TickMsg:
		if !m.running {
			return m, tick()
		}
		m.pos += m.perTick * m.speed
		if last := float64(len(m.states) - 1); m.pos >= last {
			m.pos = last
			m.running = false
			m = m.stopRecording()
		}
		if time.Since(m.lastTurn) > idleRotate {
			m.camera.RotY += autoRotStep
		}
		if m.rec != nil {
			m.draw()
			m.rec.capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m = m.stopRecording()
		return m, tea.Quit
	case " ":
		m.running = !m.running && m.pos < float64(len(m.states)-1)
	case "r":
		m.pos = 0
		m.running = true
	case "[":
		m.running = false
		m.pos = math.Max(0, m.pos-float64(len(m.states))/100)
	case "]":
		m.running = false
		m.pos = math.Min(float64(len(m.states)-1), m.pos+float64(len(m.states))/100)
	case "left":
		m.camera.RotY -= 0.1
		m.lastTurn = time.Now()
	case "right":
		m.camera.RotY += 0.1
		m.lastTurn = time.Now()
	case "up":
		m.camera.RotX -= 0.1
		m.lastTurn = time.Now()
	case "down":
		m.camera.RotX += 0.1
		m.lastTurn = time.Now()
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case ".", ">":
		m.speed = math.Min(64, m.speed*2)
	case ",", "<":
		m.speed = math.Max(0.25, m.speed/2)
	case "a":
		m.showAxes = !m.showAxes
	case "t":
		m.theme = nextTheme(m.theme)
	case "g":
		if m.rec != nil {
			m = m.stopRecording()
		} else {
			m.rec = newRecorder()
			m.recNote = "recording"
		}
	}
	return m, nil
}

// resize fits the canvas to the terminal, leaving room for the sidebar
// and the panel frames.
func (m Model) resize(w, h int) {
	cw := clampInt(w-sparkWidth-14, 40, 110)
	ch := clampInt(h-4, 14, 32)
	if cw != m.canvas.Width || ch != m.canvas.Height {
		*m.canvas = *NewCanvas(cw, ch)
	}
}

func (m Model) stopRecording() Model {
	if m.rec == nil {
		return m
	}
	path := fmt.Sprintf("%s_%d.gif", m.name, time.Now().Unix())
	if err := m.rec.save(path); err != nil {
		m.recNote = "gif: " + err.Error()
	} else {
		m.recNote = "saved " + path
	}
	m.rec = nil
	return m
}

func (m Model) cursor() int { return int(m.pos) }

func (m Model) draw() {
	m.canvas.Clear()
	if m.showAxes {
		DrawAxes(m.canvas, m.camera, 1.6)
	}
	cur := m.cursor()
	lo := cur - trailLen
	if lo < 0 {
		lo = 0
	}
	DrawTrajectory(m.canvas, m.camera, m.states[lo:cur+1], m.center, m.scale)
	DrawMarker(m.canvas, m.camera, worldPoint(m.states[cur], m.center, m.scale))
}

func (m Model) View() string {
	m.draw()
	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		canvasFrame.Render(strings.TrimSuffix(m.canvas.String(), "\n")),
		sidebarFrame.Render(m.sidebar()),
	)
	return panels + "\n" + m.theme.label().Render(helpLine) + "\n"
}

func (m Model) sidebar() string {
	cur := m.cursor()
	t := m.times[cur]
	s := m.states[cur]
	tEnd := m.times[len(m.times)-1]
	frac := 1.0
	if total := tEnd - m.times[0]; total > 0 {
		frac = (t - m.times[0]) / total
	}

	var b strings.Builder
	b.WriteString(m.theme.header().Render(strings.ToUpper(m.name)) + "\n")
	b.WriteString(m.theme.label().Render(Separator(sparkWidth)) + "\n")

	var status string
	switch {
	case cur == len(m.states)-1:
		status = m.theme.good().Render("DONE")
	case m.running:
		status = m.theme.good().Render("PLAYING")
	default:
		status = m.theme.warn().Render("PAUSED")
	}
	if m.rec != nil {
		status += m.theme.warn().Render("  REC")
	}
	b.WriteString(status + "\n\n")

	b.WriteString(m.row("t", fmt.Sprintf("%9.3f / %.1f", t, tEnd)))
	b.WriteString(ProgressBar(frac, sparkWidth) + "\n\n")

	for i, name := range []string{"u", "v", "w"} {
		if i >= len(s) {
			break
		}
		b.WriteString(m.row(name, fmt.Sprintf("%9.4f", s[i])))
	}
	b.WriteString(m.row("speed", fmt.Sprintf("%9s", fmt.Sprintf("x%g", m.speed))))
	b.WriteString(m.row("zoom", fmt.Sprintf("%9.2f", m.camera.Zoom)))
	b.WriteString("\n" + m.sparkline(cur) + "\n\n")

	b.WriteString(m.theme.label().Render(Separator(sparkWidth)) + "\n")
	b.WriteString(m.row("steps", fmt.Sprintf("%9d", m.stats.Steps)))
	b.WriteString(m.row("rejected", fmt.Sprintf("%9d", m.stats.Rejected)))
	b.WriteString(m.row("evals", fmt.Sprintf("%9d", m.stats.Evals)))
	b.WriteString(m.row("last h", fmt.Sprintf("%9.2e", m.stats.LastStep)))
	if m.recNote != "" {
		b.WriteString("\n" + m.theme.warn().Render(m.recNote))
	}
	return b.String()
}

func (m Model) row(label, value string) string {
	return fmt.Sprintf("%s %s\n",
		m.theme.label().Render(fmt.Sprintf("%-9s", label)),
		m.theme.value().Render(value))
}

// sparkline plots the recent history of the first component, the clearest
// view of lobe switching on the attractor.
func (m Model) sparkline(cur int) string {
	lo := cur - 4*sparkWidth
	if lo < 0 {
		lo = 0
	}
	vals := make([]float64, 0, cur-lo+1)
	for _, s := range m.states[lo : cur+1] {
		vals = append(vals, s[0])
	}
	if len(vals) == 1 {
		vals = append(vals, vals[0])
	}
	return asciigraph.Plot(vals,
		asciigraph.Height(sparkHeight),
		asciigraph.Width(sparkWidth),
		asciigraph.Caption("u(t)"),
	)
}

// Run starts the replay in a full-screen bubbletea program.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
