package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/attractor/internal/gravity"
	"github.com/san-kum/attractor/internal/metrics"
	"github.com/san-kum/attractor/internal/sim"
)

const (
	width           = 60
	height          = 20
	trailLength     = 80
	historyCapacity = 120
	maxStepsPerTick = 512
	gStep           = 1.1
)

const defaultFPS = 30

// Builder constructs a fresh simulator for the scene being viewed. It is
// called once up front and again on every reset.
type Builder func() (*sim.Simulator, error)

type TickMsg time.Time

// Model is the Bubble Tea model for the live view.
type Model struct {
	build Builder
	title string
	dt    float64

	sim           *sim.Simulator
	interval      time.Duration
	stepsPerTick  int
	running       bool
	last          gravity.StepStats
	err           error
	canvas        *Canvas
	camera        *Camera
	trails        map[string][]r3.Vec
	energyHistory []float64
	energy0       float64
}

// NewModel builds the first simulator and frames the camera around the
// initial body positions.
func NewModel(title string, dt float64, stepsPerTick int, build Builder) (Model, error) {
	if stepsPerTick < 1 {
		stepsPerTick = 1
	}
	m := Model{
		build:        build,
		title:        title,
		dt:           dt,
		interval:     time.Second / defaultFPS,
		stepsPerTick: stepsPerTick,
		running:      true,
		canvas:       NewCanvas(width, height),
		camera:       NewCamera(),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func (m *Model) reset() error {
	s, err := m.build()
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}
	if err := s.Begin(m.dt); err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if m.sim != nil {
		m.sim.World().Close()
	}
	m.sim = s
	m.err = nil
	m.last = gravity.StepStats{}
	m.trails = make(map[string][]r3.Vec)
	m.energyHistory = make([]float64, 0, historyCapacity)

	var points []r3.Vec
	for _, b := range s.World().Bodies() {
		points = append(points, b.Position())
	}
	m.camera.Fit(points)
	m.record()
	m.energy0 = m.energyHistory[0]
	return nil
}

// WithFPS returns a copy of the model that ticks fps times per second.
func (m Model) WithFPS(fps int) Model {
	if fps > 0 {
		m.interval = time.Second / time.Duration(fps)
	}
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

// Simulator exposes the simulator currently driven by the model.
func (m Model) Simulator() *sim.Simulator { return m.sim }

func (m Model) Running() bool     { return m.running }
func (m Model) StepsPerTick() int { return m.stepsPerTick }
func (m Model) Err() error        { return m.err }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
				m.running = false
			} else {
				m.running = true
			}
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "g":
			w := m.sim.World()
			w.SetG(w.G() * gStep)
		case "G":
			w := m.sim.World()
			w.SetG(w.G() / gStep)
		case "[":
			if m.stepsPerTick > 1 {
				m.stepsPerTick /= 2
			}
		case "]":
			if m.stepsPerTick < maxStepsPerTick {
				m.stepsPerTick *= 2
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	for i := 0; i < m.stepsPerTick; i++ {
		stats, err := m.sim.Advance(m.dt)
		m.last = stats
		if err != nil {
			m.err = err
			m.running = false
			break
		}
	}
	m.record()
}

func (m *Model) record() {
	w := m.sim.World()
	for _, b := range w.Bodies() {
		if !b.Active() {
			continue
		}
		trail := append(m.trails[b.Name()], b.Position())
		if len(trail) > trailLength {
			trail = trail[len(trail)-trailLength:]
		}
		m.trails[b.Name()] = trail
	}

	m.energyHistory = append(m.energyHistory, metrics.TotalEnergy(w))
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[len(m.energyHistory)-historyCapacity:]
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	sw, sh := m.canvas.SubWidth(), m.canvas.SubHeight()

	for _, trail := range m.trails {
		for _, p := range trail {
			if x, y, ok := m.camera.Project(p, sw, sh); ok {
				m.canvas.Set(x, y)
			}
		}
	}
	for _, b := range m.sim.World().Bodies() {
		if !b.Active() {
			continue
		}
		x, y, ok := m.camera.Project(b.Position(), sw, sh)
		if !ok {
			continue
		}
		if b.Pinned() {
			m.canvas.Disc(x, y, 3)
			m.canvas.Mark(x, y, '◉')
		} else {
			m.canvas.Mark(x, y, '●')
		}
	}
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	t, steps := m.sim.Clock()
	w := m.sim.World()

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.title)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(errorStyle.Render("ERROR") + "\n")
	case m.running:
		s.WriteString(runningStyle.Render("RUNNING") + "\n")
	default:
		s.WriteString(pausedStyle.Render("PAUSED") + "\n")
	}
	s.WriteString("\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(6), asciigraph.Width(40), asciigraph.Caption("total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3f", t))
	row("Steps", fmt.Sprintf("%d", steps))
	row("Bodies", fmt.Sprintf("%d/%d", w.Registry().Len(), len(w.Bodies())))
	row("Pairs", fmt.Sprintf("%d", m.last.Pairs))
	if m.last.Coincident > 0 {
		row("Overlap", fmt.Sprintf("%d", m.last.Coincident))
	}
	row("G", fmt.Sprintf("%g", w.G()))
	row("dt", fmt.Sprintf("%g x%d", m.dt, m.stepsPerTick))
	row("Scheme", w.Scheme().Name())
	if n := len(m.energyHistory); n > 0 {
		e := m.energyHistory[n-1]
		row("Energy", fmt.Sprintf("%.4g", e))
		if m.energy0 != 0 {
			row("Drift", fmt.Sprintf("%.2e", math.Abs((e-m.energy0)/m.energy0)))
		}
	}

	s.WriteString("\nBODIES\n")
	for _, b := range w.Bodies() {
		mark := "○"
		if b.Active() {
			mark = "●"
		}
		s.WriteString(fmt.Sprintf("  %s %-10s m=%g\n", mark, b.Name(), b.Mass()))
	}
	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\n+/-:Zoom X/Y:Rotate\ng/G:Gravity [ ]:Steps"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

// Run starts the live view and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	final, err := p.Run()
	if fm, ok := final.(Model); ok && fm.sim != nil {
		fm.sim.World().Close()
	}
	return err
}
