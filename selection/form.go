// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package selection

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Mode は撮影モード（範囲選択 / 全画面）を表します。
type Mode int

const (
	ModeArea       Mode = iota // 範囲選択（最初の選択肢、既定値）
	ModeFullScreen             // 全画面
)

// DefaultModes は選択肢の既定の並び順です。
var DefaultModes = []Mode{ModeArea, ModeFullScreen}

func (m Mode) String() string {
	switch m {
	case ModeArea:
		return "area"
	case ModeFullScreen:
		return "full_screen"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Label はダイアログに表示するラベルを返します。
func (m Mode) Label() string {
	switch m {
	case ModeArea:
		return "Area"
	case ModeFullScreen:
		return "Full Screen"
	default:
		return m.String()
	}
}

// ErrPending は結果が確定する前に Result が呼ばれたことを示します。
var ErrPending = errors.New("selection is not resolved yet")

// Result はダイアログの最終結果です。Cancelled の場合 Mode と Name は意味を持ちません。
type Result struct {
	Mode      Mode
	Name      string
	Cancelled bool
}

// Options はフォームの構成です。
type Options struct {
	Modes       []Mode
	DefaultName string
	Now         func() time.Time
}

// Prompter はフォームを描画し、ユーザーが確定またはキャンセルするまでブロックします。
type Prompter interface {
	Prompt(ctx context.Context, form *Form) (Result, error)
}

// TimestampName は Unix 秒の10進文字列を返します。
func TimestampName(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// Form はGUIツールキットに依存しない選択フォームです。
// 結果は Confirm / Cancel のいずれかで一度だけ確定します。
type Form struct {
	modes []Mode
	now   func() time.Time

	mu          sync.Mutex
	mode        Mode
	name        string
	defaultName string

	once   sync.Once
	done   chan struct{}
	result Result
}

// NewForm は新しいフォームを作成します。
func NewForm(opts Options) *Form {
	modes := opts.Modes
	if len(modes) == 0 {
		modes = DefaultModes
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	defaultName := opts.DefaultName
	if defaultName == "" {
		defaultName = TimestampName(now())
	}

	return &Form{
		modes:       append([]Mode(nil), modes...),
		now:         now,
		mode:        modes[0],
		name:        defaultName,
		defaultName: defaultName,
		done:        make(chan struct{}),
	}
}

// Modes は選択肢を表示順に返します。
func (f *Form) Modes() []Mode {
	return append([]Mode(nil), f.modes...)
}

// DefaultName は入力欄に最初に表示される名前です。
func (f *Form) DefaultName() string {
	return f.defaultName
}

func (f *Form) Mode() Mode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mode
}

// SetMode は選択中のモードを切り替えます。選択肢にないモードはエラーになります。
func (f *Form) SetMode(m Mode) error {
	for _, candidate := range f.modes {
		if candidate == m {
			f.mu.Lock()
			f.mode = m
			f.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("mode %s is not offered", m)
}

func (f *Form) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name
}

// SetName は入力欄の内容をそのまま保持します。
func (f *Form) SetName(s string) {
	f.mu.Lock()
	f.name = s
	f.mu.Unlock()
}

// Confirm は現在のモードと名前で結果を確定します。
// 名前は前後の空白を除去し、空であれば現在時刻のタイムスタンプに置き換えます。
// 既に確定済みの場合は何もせず false を返します。
func (f *Form) Confirm() bool {
	f.mu.Lock()
	mode := f.mode
	name := strings.TrimSpace(f.name)
	f.mu.Unlock()

	if name == "" {
		name = TimestampName(f.now())
	}
	return f.resolve(Result{Mode: mode, Name: name})
}

// Cancel は入力を破棄してキャンセルとして確定します。
func (f *Form) Cancel() bool {
	return f.resolve(Result{Cancelled: true})
}

func (f *Form) resolve(r Result) bool {
	resolved := false
	f.once.Do(func() {
		f.result = r
		resolved = true
		close(f.done)
	})
	return resolved
}

// Done は結果の確定時に閉じられるチャネルを返します。
func (f *Form) Done() <-chan struct{} {
	return f.done
}

// Result は確定した結果を返します。未確定の場合は ErrPending です。
func (f *Form) Result() (Result, error) {
	select {
	case <-f.done:
		return f.result, nil
	default:
		return Result{}, ErrPending
	}
}

// Wait は結果の確定を待ちます。ctx がキャンセルされた場合はキャンセルとして確定します。
func (f *Form) Wait(ctx context.Context) Result {
	select {
	case <-f.done:
	case <-ctx.Done():
		f.Cancel()
	}
	r, _ := f.Result()
	return r
}
