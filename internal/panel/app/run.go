package app

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/convex-panel/panelctl/internal/iostreams"
)

// program adapts Model to tea.Model.
type program struct {
	Model
}

func (p program) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := p.Model.Update(msg)
	return program{m}, cmd
}

// Run starts the full-screen browse session and blocks until it exits.
func Run(streams *iostreams.IOStreams, opts Options) error {
	if !streams.IsInteractive() {
		return errors.New("browse requires an interactive terminal")
	}
	m := New(opts)
	m.width, m.height = iostreams.Size(streams.Out)
	m.layout()

	programOpts := []tea.ProgramOption{
		tea.WithInput(streams.In),
		tea.WithOutput(streams.Out),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	_, err := tea.NewProgram(program{m}, programOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
