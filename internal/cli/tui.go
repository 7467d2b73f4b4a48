package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chrsmith/kami2-solver/pkg/puzzle"
	"github.com/chrsmith/kami2-solver/pkg/render"
)

// Replay styles
var (
	replayHelpStyle = lipgloss.NewStyle().Foreground(colorDim)
	replayMoveStyle = lipgloss.NewStyle().Foreground(colorWhite)
	replayDoneStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
)

// paletteColor returns the hex fill for a color index, falling back to the
// shared default palette for graphs imported without one.
func paletteColor(palette []string, color int) string {
	if color < len(palette) && palette[color] != "" {
		return palette[color]
	}
	return render.DefaultPalette[color%len(render.DefaultPalette)]
}

// boardLine renders the board as one colored block run per region, scaled
// by cell count. It reads as a rough schematic of how much of the board
// each region covers.
func boardLine(g *puzzle.Graph, palette []string) string {
	var b strings.Builder
	for _, r := range g.Regions() {
		width := 1 + r.Size/4
		if width > 8 {
			width = 8
		}
		hex := paletteColor(palette, r.Color)
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(strings.Repeat("█", width)))
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

// =============================================================================
// ReplayModel - Interactive solution playback
// =============================================================================

// replayModel is the bubbletea model for stepping through a solution.
// states[0] is the unsolved board; states[i] is the board after move i.
type replayModel struct {
	states  []*puzzle.Graph
	moves   []puzzle.Move
	palette []string
	step    int
}

// newReplayModel precomputes every board state of the solution.
func newReplayModel(g *puzzle.Graph, palette []string, moves []puzzle.Move) (replayModel, error) {
	states := make([]*puzzle.Graph, 0, len(moves)+1)
	states = append(states, g)
	state := g
	for i, m := range moves {
		next, err := state.Apply(m)
		if err != nil {
			return replayModel{}, fmt.Errorf("replay move %d (%s): %w", i+1, m, err)
		}
		state = next
		states = append(states, next)
	}
	return replayModel{states: states, moves: moves, palette: palette}, nil
}

func (m replayModel) Init() tea.Cmd {
	return nil
}

func (m replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "up", "h", "k":
			if m.step > 0 {
				m.step--
			}
		case "right", "down", "l", "j", " ", "enter":
			if m.step < len(m.states)-1 {
				m.step++
			}
		case "g", "home":
			m.step = 0
		case "G", "end":
			m.step = len(m.states) - 1
		}
	}
	return m, nil
}

func (m replayModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Solution Replay"))
	b.WriteString("\n")
	b.WriteString(replayHelpStyle.Render("←/→ step  g/G first/last  q quit"))
	b.WriteString("\n\n")

	state := m.states[m.step]

	if m.step == 0 {
		b.WriteString(replayHelpStyle.Render("initial board"))
	} else {
		mv := m.moves[m.step-1]
		b.WriteString(replayMoveStyle.Render(fmt.Sprintf("move %d/%d: %s", m.step, len(m.moves), describeMove(m.palette, mv))))
	}
	b.WriteString("\n\n")

	b.WriteString("  " + boardLine(state, m.palette))
	b.WriteString("\n\n")

	b.WriteString(replayHelpStyle.Render(fmt.Sprintf("%d regions · %d colors", state.RegionCount(), state.ColorCount())))
	if state.Solved() {
		b.WriteString("\n")
		b.WriteString(replayDoneStyle.Render(iconSuccess + " board flooded"))
	}
	b.WriteString("\n")

	return b.String()
}

// replaySolution runs the interactive replay viewer.
func (c *CLI) replaySolution(g *puzzle.Graph, palette []string, moves []puzzle.Move) error {
	m, err := newReplayModel(g, palette, moves)
	if err != nil {
		return err
	}
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("replay viewer: %w", err)
	}
	return nil
}
