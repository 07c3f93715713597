package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g3ronymo/wl-screenshot/selection"
	"github.com/g3ronymo/wl-screenshot/tui"
)

// scriptedPrompter は実ユーザーの操作を模倣します。
type scriptedPrompter struct {
	act func(f *selection.Form)
	err error
}

func (p *scriptedPrompter) Prompt(ctx context.Context, f *selection.Form) (selection.Result, error) {
	if p.err != nil {
		return selection.Result{}, p.err
	}
	p.act(f)
	return f.Wait(ctx), nil
}

type captureCall struct {
	mode selection.Mode
	path string
}

type recordingInvoker struct {
	calls []captureCall
	err   error
}

func (r *recordingInvoker) Capture(_ context.Context, mode selection.Mode, path string) error {
	r.calls = append(r.calls, captureCall{mode: mode, path: path})
	return r.err
}

func at(sec int64) func() time.Time {
	return func() time.Time { return time.Unix(sec, 0) }
}

func TestRunFullScreenBlankName(t *testing.T) {
	inv := &recordingInvoker{}
	s := &Session{
		Dir: "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) {
			require.NoError(t, f.SetMode(selection.ModeFullScreen))
			f.SetName("")
			f.Confirm()
		}},
		Invoker: inv,
		Now:     at(1700000000),
	}

	out, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []captureCall{{mode: selection.ModeFullScreen, path: "/tmp/shots/1700000000.png"}}, inv.calls)
	assert.Equal(t, Outcome{Mode: selection.ModeFullScreen, Path: "/tmp/shots/1700000000.png"}, out)
}

func TestRunAreaNamed(t *testing.T) {
	inv := &recordingInvoker{}
	s := &Session{
		Dir: "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) {
			f.SetName("desktop1")
			f.Confirm()
		}},
		Invoker: inv,
	}

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []captureCall{{mode: selection.ModeArea, path: "/tmp/shots/desktop1.png"}}, inv.calls)
}

func TestRunWhitespaceNameDefaultsToTimestamp(t *testing.T) {
	inv := &recordingInvoker{}
	s := &Session{
		Dir: "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) {
			f.SetName("  ")
			f.Confirm()
		}},
		Invoker: inv,
		Now:     at(1700000042),
	}

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, inv.calls, 1)
	assert.Equal(t, "/tmp/shots/1700000042.png", inv.calls[0].path)
}

func TestRunCancelNeverCaptures(t *testing.T) {
	inv := &recordingInvoker{}
	hookCalled := false
	s := &Session{
		Dir: "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) {
			f.SetName("whatever")
			f.Cancel()
		}},
		Invoker: inv,
		Hooks: []Hook{func(context.Context, string) error {
			hookCalled = true
			return nil
		}},
	}

	out, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.Empty(t, inv.calls)
	assert.False(t, hookCalled)
}

func TestRunRejectsTraversalName(t *testing.T) {
	inv := &recordingInvoker{}
	s := &Session{
		Dir: "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) {
			f.SetName("../etc/passwd")
			f.Confirm()
		}},
		Invoker: inv,
	}

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.Empty(t, inv.calls)
}

func TestRunPropagatesCaptureError(t *testing.T) {
	boom := errors.New("grim failed")
	hookCalled := false
	s := &Session{
		Dir:      "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) { f.Confirm() }},
		Invoker:  &recordingInvoker{err: boom},
		Hooks: []Hook{func(context.Context, string) error {
			hookCalled = true
			return nil
		}},
	}

	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, hookCalled)
}

func TestRunHooksAfterCapture(t *testing.T) {
	var got []string
	s := &Session{
		Dir:      "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) { f.SetName("a"); f.Confirm() }},
		Invoker:  &recordingInvoker{},
		Hooks: []Hook{
			func(_ context.Context, p string) error { got = append(got, "first:"+p); return errors.New("ignored") },
			func(_ context.Context, p string) error { got = append(got, "second:"+p); return nil },
		},
	}

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first:/tmp/shots/a.png", "second:/tmp/shots/a.png"}, got)
}

func TestRunPrompterError(t *testing.T) {
	inv := &recordingInvoker{}
	s := &Session{Dir: "/tmp", Prompter: &scriptedPrompter{err: errors.New("no display")}, Invoker: inv}

	_, err := s.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, inv.calls)
}

func TestOutputPath(t *testing.T) {
	p, err := OutputPath("/tmp/shots", "desktop1")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shots/desktop1.png", p)

	p, err = OutputPath("/tmp/shots", "shot.png")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shots/shot.png.png", p)

	for _, name := range []string{"a/b", "..", ".", "../x", ""} {
		_, err := OutputPath("/tmp/shots", name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()

	got, err := ResolveDirectory(dir)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, filepath.IsAbs(got))
}

func TestResolveDirectoryInvalid(t *testing.T) {
	dir := t.TempDir()

	_, err := ResolveDirectory(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrInvalidDirectory)

	file := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = ResolveDirectory(file)
	assert.ErrorIs(t, err, ErrInvalidDirectory)
}

type checkingInvoker struct {
	recordingInvoker
	checked []selection.Mode
}

func (c *checkingInvoker) MissingTools(mode selection.Mode) []string {
	c.checked = append(c.checked, mode)
	return []string{"slurp"}
}

func TestRunChecksToolsForChosenMode(t *testing.T) {
	inv := &checkingInvoker{}
	s := &Session{
		Dir: "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) {
			require.NoError(t, f.SetMode(selection.ModeFullScreen))
			f.Confirm()
		}},
		Invoker: inv,
	}

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []selection.Mode{selection.ModeFullScreen}, inv.checked)
	assert.Len(t, inv.calls, 1, "missing tools are reported, the capture still runs")
}

func TestRunCancelCheckNotCalled(t *testing.T) {
	inv := &checkingInvoker{}
	s := &Session{
		Dir:      "/tmp/shots",
		Prompter: &scriptedPrompter{act: func(f *selection.Form) { f.Cancel() }},
		Invoker:  inv,
	}

	_, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, inv.checked)
	assert.Empty(t, inv.calls)
}

func TestRunInterruptedTerminalDialog(t *testing.T) {
	inv := &recordingInvoker{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &Session{Dir: "/tmp/shots", Prompter: tui.Frontend{}, Invoker: inv}

	out, err := s.Run(ctx)
	require.NoError(t, err)
	assert.True(t, out.Cancelled)
	assert.Empty(t, inv.calls)
}
