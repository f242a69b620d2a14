// Package ui draws the live progress view of a running count.
package ui

import (
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sadopc/gscandir/internal/ui/components"
	"github.com/sadopc/gscandir/internal/ui/style"
)

const tickInterval = 60 * time.Millisecond

// Source is a running scan the view can observe and stop.
type Source interface {
	Progress() scanner.Progress
	Stop() error
}

type tickMsg time.Time

// StoppedMsg is sent once a user-requested stop has completed.
type StoppedMsg struct {
	Err error
}

// LiveView is the Bubble Tea model of the count progress view.
type LiveView struct {
	root  string
	src   Source
	theme style.Theme
	keys  KeyMap

	spinner  spinner.Model
	progress scanner.Progress
	phase    float64
	width    int

	stopping bool
	stopped  bool
	err      error
}

// NewLiveView creates a view of src, which must already be running.
func NewLiveView(root string, src Source) *LiveView {
	theme := style.DefaultTheme()
	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(theme.TitleStyle),
	)
	return &LiveView{
		root:    root,
		src:     src,
		theme:   theme,
		keys:    DefaultKeyMap(),
		spinner: sp,
		width:   80,
	}
}

// Stopped reports whether the user interrupted the count.
func (v *LiveView) Stopped() bool { return v.stopped }

// Err returns the error of a user-requested stop, if any.
func (v *LiveView) Err() error { return v.err }

func (v *LiveView) Init() tea.Cmd {
	return tea.Batch(v.spinner.Tick, v.tickCmd())
}

func (v *LiveView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		return v, nil

	case tickMsg:
		v.progress = v.src.Progress()
		if v.progress.Done {
			return v, tea.Quit
		}
		v.phase += 0.04
		if v.phase > 1 {
			v.phase -= 1
		}
		return v, v.tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case StoppedMsg:
		v.stopped = true
		v.err = msg.Err
		v.progress = v.src.Progress()
		return v, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Quit) || key.Matches(msg, v.keys.ForceQuit) {
			if v.stopping {
				return v, nil
			}
			v.stopping = true
			return v, v.stopCmd()
		}
	}
	return v, nil
}

func (v *LiveView) View() string {
	help := v.theme.HelpKey.Render(v.keys.Quit.Help().Key) + " " + v.theme.HelpDesc.Render(v.keys.Quit.Help().Desc)
	if v.stopping {
		help = v.theme.HelpDesc.Render("stopping...")
	}
	return components.RenderScanProgress(v.theme, components.ProgressView{
		Root:     v.root,
		Progress: v.progress,
		Spinner:  v.spinner.View(),
		Phase:    v.phase,
		Help:     help,
	}, v.width) + "\n"
}

func (v *LiveView) tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (v *LiveView) stopCmd() tea.Cmd {
	src := v.src
	return func() tea.Msg {
		err := src.Stop()
		if errors.Is(err, scanner.ErrNotRunning) {
			err = nil
		}
		return StoppedMsg{Err: err}
	}
}

// Run shows the view on out until the count finishes or the user stops it.
// It reports whether the count was stopped early.
func Run(root string, src Source, in io.Reader, out io.Writer) (bool, error) {
	view := NewLiveView(root, src)
	p := tea.NewProgram(view, tea.WithInput(in), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return false, err
	}
	return view.Stopped(), view.Err()
}
