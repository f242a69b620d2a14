package ui

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	progress scanner.Progress
	stops    atomic.Int32
	stopErr  error
}

func (f *fakeSource) Progress() scanner.Progress { return f.progress }

func (f *fakeSource) Stop() error {
	f.stops.Add(1)
	f.progress.Done = true
	return f.stopErr
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestLiveView_TickRefreshesProgress(t *testing.T) {
	src := &fakeSource{progress: scanner.Progress{FilesScanned: 7, DirsScanned: 2}}
	v := NewLiveView("/data", src)

	_, cmd := v.Update(tickMsg(time.Now()))
	assert.NotNil(t, cmd, "another tick while counting")
	assert.Equal(t, int64(7), v.progress.FilesScanned)
	assert.Contains(t, v.View(), "/data")
}

func TestLiveView_QuitsWhenDone(t *testing.T) {
	src := &fakeSource{progress: scanner.Progress{Done: true}}
	v := NewLiveView("/data", src)

	_, cmd := v.Update(tickMsg(time.Now()))
	assert.True(t, isQuit(cmd), "quit once the count is done")
	assert.False(t, v.Stopped(), "a natural finish is not a stop")
}

func TestLiveView_QuitKeyStopsSource(t *testing.T) {
	src := &fakeSource{}
	v := NewLiveView("/data", src)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	stopped, ok := cmd().(StoppedMsg)
	require.True(t, ok)
	assert.Equal(t, int32(1), src.stops.Load())

	// A second key press while stopping is ignored.
	_, again := v.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, again)

	_, cmd = v.Update(stopped)
	assert.True(t, isQuit(cmd), "quit after stop")
	assert.True(t, v.Stopped())
	assert.NoError(t, v.Err())
}

func TestLiveView_StopIgnoresNotRunning(t *testing.T) {
	src := &fakeSource{stopErr: scanner.ErrNotRunning}
	v := NewLiveView("/data", src)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NoError(t, cmd().(StoppedMsg).Err)

	boom := errors.New("boom")
	v = NewLiveView("/data", &fakeSource{stopErr: boom})
	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.ErrorIs(t, cmd().(StoppedMsg).Err, boom)
}

func TestLiveView_WindowSize(t *testing.T) {
	v := NewLiveView("/data", &fakeSource{})
	v.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Equal(t, 30, v.width)
}
