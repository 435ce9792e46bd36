package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gicrisf/org-lorenz-attractor/internal/config"
	"github.com/gicrisf/org-lorenz-attractor/internal/integrators"
	"github.com/gicrisf/org-lorenz-attractor/internal/physics"
)

var presetInfo = map[string]string{
	"classic": "canonical butterfly, rho 28",
	"gentle":  "mild chaos at rho 14",
	"stable":  "decay to a fixed point",
	"window":  "periodic window at rho 99.96",
	"rossler": "banded spiral chaos",
}

const (
	pickerMenu = iota
	pickerReplay
)

// picker is the preset selection screen. Choosing an entry solves the
// scenario and hands off to the replay model; esc returns to the menu.
type picker struct {
	state   int
	cursor  int
	presets []string
	theme   Theme
	replay  Model
	errMsg  string
}

// RunPicker starts the interactive preset browser.
func RunPicker(themeName string) error {
	p := picker{
		presets: config.ListPresets(),
		theme:   GetTheme(themeName),
	}
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}

func (p picker) Init() tea.Cmd { return nil }

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.state == pickerReplay {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			p.state = pickerMenu
			return p, nil
		}
		next, cmd := p.replay.Update(msg)
		p.replay = next.(Model)
		return p, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case "up", "k":
			if p.cursor > 0 {
				p.cursor--
			}
		case "down", "j":
			if p.cursor < len(p.presets)-1 {
				p.cursor++
			}
		case "enter", " ":
			return p.start(p.presets[p.cursor])
		}
	}
	return p, nil
}

func (p picker) start(name string) (tea.Model, tea.Cmd) {
	cfg := config.GetPreset(name)
	if cfg == nil {
		p.errMsg = fmt.Sprintf("unknown preset %q", name)
		return p, nil
	}
	m, err := solveConfig(cfg)
	if err != nil {
		p.errMsg = err.Error()
		return p, nil
	}
	p.replay = m.WithTheme(p.theme.Name)
	p.state = pickerReplay
	p.errMsg = ""
	return p, p.replay.Init()
}

// solveConfig integrates a run description and wraps the resampled
// trajectory in a replay model.
func solveConfig(cfg *config.Config) (Model, error) {
	if err := cfg.Validate(); err != nil {
		return Model{}, err
	}
	sys, err := physics.New(cfg.Model)
	if err != nil {
		return Model{}, err
	}
	if err := cfg.ApplyParams(sys); err != nil {
		return Model{}, err
	}
	sol, err := integrators.Solve(sys, cfg.InitialState(), cfg.T0, cfg.TMax, cfg.Options())
	if err != nil {
		return Model{}, err
	}
	times, states, err := sol.SampleUniform(cfg.Samples)
	if err != nil {
		return Model{}, err
	}
	return NewModel(cfg.Model, times, states, sol.Stats())
}

func (p picker) View() string {
	if p.state == pickerReplay {
		return p.replay.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + p.theme.header().Render("LORENZ ATTRACTOR") + "\n")
	b.WriteString("    " + p.theme.label().Render("trajectory replay") + "\n")
	b.WriteString("    " + p.theme.label().Render(Separator(28)) + "\n\n")
	for i, name := range p.presets {
		desc := presetInfo[name]
		if i == p.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n",
				p.theme.header().Render("▸"),
				p.theme.value().Bold(true).Render(fmt.Sprintf("%-10s", name)),
				p.theme.value().Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n",
				p.theme.label().Render(fmt.Sprintf("%-10s", name)),
				p.theme.label().Render(desc)))
		}
	}
	if p.errMsg != "" {
		b.WriteString("\n    " + p.theme.warn().Render(p.errMsg) + "\n")
	}
	b.WriteString("\n    " + p.theme.label().Render("j/k navigate  enter run  q quit") + "\n")
	return b.String()
}
