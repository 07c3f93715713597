// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package tui

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/g3ronymo/wl-screenshot/selection"
)

const (
	modeLabel = "Mode"
	nameLabel = "Screenshot Name"
)

// Dialog はターミナル上でフォームを表示します。ディスプレイがない環境向けです。
type Dialog struct {
	app  *tview.Application
	form *selection.Form

	view      *tview.Form
	modeField *tview.DropDown
	nameField *tview.InputField

	closing atomic.Bool
}

// NewDialog は tview のフォームを構築します。
func NewDialog(form *selection.Form) *Dialog {
	d := &Dialog{
		app:  tview.NewApplication(),
		form: form,
	}

	modes := form.Modes()
	labels := make([]string, 0, len(modes))
	initial := 0
	for i, m := range modes {
		labels = append(labels, m.Label())
		if m == form.Mode() {
			initial = i
		}
	}

	d.view = tview.NewForm().
		AddDropDown(modeLabel, labels, initial, func(_ string, index int) {
			if index >= 0 && index < len(modes) {
				_ = d.form.SetMode(modes[index])
			}
		}).
		AddInputField(nameLabel, form.DefaultName(), 32, nil, d.form.SetName).
		AddButton("Ok", d.confirm).
		AddButton("Cancel", d.cancel)
	d.view.SetCancelFunc(d.cancel) // Esc
	d.view.SetBorder(true).SetTitle(" wl_screenshot ").SetTitleAlign(tview.AlignLeft)

	d.modeField = d.view.GetFormItemByLabel(modeLabel).(*tview.DropDown)
	d.nameField = d.view.GetFormItemByLabel(nameLabel).(*tview.InputField)

	d.app.SetRoot(d.view, true).EnableMouse(true)
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlC {
			d.cancel()
			return nil
		}
		return event
	})
	return d
}

// confirm は表示中の値をフォームに反映してから確定します。
func (d *Dialog) confirm() {
	modes := d.form.Modes()
	if index, _ := d.modeField.GetCurrentOption(); index >= 0 && index < len(modes) {
		_ = d.form.SetMode(modes[index])
	}
	d.form.SetName(d.nameField.GetText())
	d.form.Confirm()
	d.finish()
}

func (d *Dialog) cancel() {
	d.form.Cancel()
	d.finish()
}

func (d *Dialog) finish() {
	if d.closing.CompareAndSwap(false, true) {
		d.app.Stop()
	}
}

// Frontend はターミナルでフォームを表示する selection.Prompter です。
type Frontend struct{}

// Prompt はフォームを表示し、確定またはキャンセルされるまでブロックします。
func (Frontend) Prompt(ctx context.Context, form *selection.Form) (selection.Result, error) {
	if ctx.Err() != nil {
		form.Cancel()
		return form.Result()
	}
	d := NewDialog(form)

	stop := context.AfterFunc(ctx, func() {
		form.Cancel()
		d.finish()
	})
	defer stop()

	if err := d.app.Run(); err != nil {
		form.Cancel()
		return selection.Result{}, fmt.Errorf("terminal dialog failed: %w", err)
	}

	form.Cancel()
	return form.Result()
}
