package tui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/g3ronymo/wl-screenshot/selection"
)

func TestDialogDefaults(t *testing.T) {
	form := selection.NewForm(selection.Options{Now: func() time.Time { return time.Unix(1700000000, 0) }})
	d := NewDialog(form)

	index, label := d.modeField.GetCurrentOption()
	assert.Equal(t, 0, index)
	assert.Equal(t, "Area", label)
	assert.Equal(t, "1700000000", d.nameField.GetText())
}

func TestDialogConfirm(t *testing.T) {
	form := selection.NewForm(selection.Options{})
	d := NewDialog(form)

	d.modeField.SetCurrentOption(1)
	d.nameField.SetText(" desktop1 ")
	d.confirm()

	r, err := form.Result()
	require.NoError(t, err)
	assert.Equal(t, selection.Result{Mode: selection.ModeFullScreen, Name: "desktop1"}, r)
	assert.True(t, d.closing.Load())
}

func TestDialogBlankNameDefaults(t *testing.T) {
	form := selection.NewForm(selection.Options{Now: func() time.Time { return time.Unix(1700000555, 0) }})
	d := NewDialog(form)

	d.nameField.SetText("")
	d.confirm()

	r, err := form.Result()
	require.NoError(t, err)
	assert.Equal(t, "1700000555", r.Name)
}

func TestDialogCancelWins(t *testing.T) {
	form := selection.NewForm(selection.Options{})
	d := NewDialog(form)

	d.cancel()
	d.confirm()

	r, err := form.Result()
	require.NoError(t, err)
	assert.True(t, r.Cancelled)
}

func TestFrontendPromptInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	form := selection.NewForm(selection.Options{})

	r, err := Frontend{}.Prompt(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, selection.Result{Cancelled: true}, r)
	assert.False(t, form.Confirm())
}
