// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package gui

import (
	"context"
	"log"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/g3ronymo/wl-screenshot/selection"
)

const (
	windowTitle = "wl_screenshot"
	appID       = "io.github.g3ronymo.wl-screenshot"
)

// Dialog は撮影モードとファイル名を選択するウィンドウです。
type Dialog struct {
	Window fyne.Window
	form   *selection.Form
	quit   func()

	// GUI Widgets
	modeGroup    *widget.RadioGroup
	nameEntry    *widget.Entry
	okButton     *widget.Button
	cancelButton *widget.Button

	closing atomic.Bool // 終了処理は一度だけ
}

// NewDialog はフォームを描画するウィンドウを作成します。
func NewDialog(a fyne.App, form *selection.Form) *Dialog {
	w := a.NewWindow(windowTitle)

	d := &Dialog{
		Window: w,
		form:   form,
		quit:   a.Quit,
	}
	d.createUI()

	w.SetFixedSize(true)
	w.Resize(fyne.NewSize(320, 180))

	// ウィンドウが外部から閉じられた場合はキャンセル扱い
	w.SetOnClosed(func() {
		d.form.Cancel()
		if d.closing.CompareAndSwap(false, true) {
			d.quit()
		}
	})
	return d
}

// createUI はGUIコンポーネントを構築し、ウィンドウに配置します。
func (d *Dialog) createUI() {
	// --- 撮影モード ---
	labels := make([]string, 0, len(d.form.Modes()))
	for _, m := range d.form.Modes() {
		labels = append(labels, m.Label())
	}
	d.modeGroup = widget.NewRadioGroup(labels, func(label string) {
		if m, ok := d.modeForLabel(label); ok {
			_ = d.form.SetMode(m)
		}
	})
	d.modeGroup.Horizontal = true
	d.modeGroup.Required = true // 常にどちらか一方が選択されている
	d.modeGroup.SetSelected(d.form.Mode().Label())

	// --- ファイル名 ---
	d.nameEntry = widget.NewEntry()
	d.nameEntry.SetText(d.form.DefaultName())
	d.nameEntry.OnChanged = d.form.SetName
	d.nameEntry.OnSubmitted = func(string) { d.confirm() }

	// --- ボタン ---
	d.cancelButton = widget.NewButton("Cancel", d.cancel)
	d.okButton = widget.NewButton("Ok", d.confirm)
	d.okButton.Importance = widget.HighImportance

	content := container.NewVBox(
		d.modeGroup,
		widget.NewLabel("Screenshot Name:"),
		d.nameEntry,
		d.cancelButton,
		d.okButton,
	)
	d.Window.SetContent(content)
	d.Window.Canvas().Focus(d.nameEntry)
}

func (d *Dialog) modeForLabel(label string) (selection.Mode, bool) {
	for _, m := range d.form.Modes() {
		if m.Label() == label {
			return m, true
		}
	}
	return 0, false
}

// confirm は表示中の値をフォームに反映してから確定します。
func (d *Dialog) confirm() {
	if m, ok := d.modeForLabel(d.modeGroup.Selected); ok {
		_ = d.form.SetMode(m)
	}
	d.form.SetName(d.nameEntry.Text)
	d.form.Confirm()
	d.finish()
}

func (d *Dialog) cancel() {
	d.form.Cancel()
	d.finish()
}

// finish はウィンドウを閉じてアプリケーションを終了します。何度呼ばれても一度だけ実行されます。
func (d *Dialog) finish() {
	if !d.closing.CompareAndSwap(false, true) {
		return
	}
	d.Window.Close()
	d.quit()
}

// Frontend は fyne のウィンドウでフォームを表示する selection.Prompter です。
type Frontend struct{}

// Prompt はウィンドウを表示し、閉じられるまでブロックします。メインゴルーチンから呼び出してください。
func (Frontend) Prompt(ctx context.Context, form *selection.Form) (selection.Result, error) {
	if ctx.Err() != nil {
		form.Cancel()
		return form.Result()
	}
	a := app.NewWithID(appID)
	d := NewDialog(a, form)

	stop := context.AfterFunc(ctx, func() {
		log.Println("Interrupted while the selection dialog was open")
		form.Cancel()
		fyne.Do(d.finish)
	})
	defer stop()

	d.Window.ShowAndRun()

	// イベントループが確定前に終了した場合もキャンセルとして扱う
	form.Cancel()
	return form.Result()
}
