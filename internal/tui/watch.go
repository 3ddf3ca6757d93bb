// Package tui is the live terminal view: it steps the world on a timer
// and draws the grain field on a braille canvas.
package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shearlab/dustbox/internal/sim"
	"github.com/shearlab/dustbox/internal/viz"
)

type tickMsg time.Time

func tick(fps int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model runs a world interactively. Steps per frame and frame rate are
// fixed at construction.
type Model struct {
	World     *sim.World
	StepsPerF int
	FPS       int

	canvas *viz.Canvas
	paused bool
	steps  int
	err    error
}

// NewModel builds a watch model with a 70x20 canvas.
func NewModel(w *sim.World, stepsPerFrame, fps int) Model {
	if stepsPerFrame < 1 {
		stepsPerFrame = 1
	}
	if fps < 1 {
		fps = 30
	}
	return Model{
		World:     w,
		StepsPerF: stepsPerFrame,
		FPS:       fps,
		canvas:    viz.NewCanvas(70, 20),
	}
}

func (m Model) Init() tea.Cmd { return tick(m.FPS) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
	case tickMsg:
		if !m.paused && m.err == nil {
			w := m.World
			for i := 0; i < m.StepsPerF; i++ {
				if w.Stepper.Feedback {
					w.Stepper.FeedbackPredictor(w.Grains)
				}
				if err := w.Stepper.Advance(w.Grains); err != nil {
					m.err = err
					break
				}
				if w.Stepper.Frame.ShearingBox && w.Stepper.Frame.Fargo {
					sim.ApplyFargoRemap(w)
				}
				w.Grid.Time += w.Grid.Dt
				m.steps++
			}
		}
		return m, tick(m.FPS)
	}
	return m, nil
}

func (m Model) View() string {
	w := m.World
	m.canvas.Scatter(w.Grid, w.Grains)

	status := fmt.Sprintf("t=%.3f  step=%d  grains=%d", w.Grid.Time, m.steps, w.Grains.N())
	if m.paused {
		status += "  [paused]"
	}
	if m.err != nil {
		status = fmt.Sprintf("error: %v", m.err)
	}
	hint := viz.LabelStyle.Render("space pause · q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		viz.TitleStyle.Render("dustbox"),
		viz.FrameStyle.Render(m.canvas.String()),
		status,
		hint,
	)
}

// Run starts the watch loop and blocks until quit.
func Run(w *sim.World, stepsPerFrame, fps int) error {
	p := tea.NewProgram(NewModel(w, stepsPerFrame, fps))
	_, err := p.Run()
	return err
}
