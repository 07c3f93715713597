// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package clipboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/g3ronymo/wl-screenshot/screenshot"
)

const (
	wlCopy = "wl-copy"

	// DefaultHold は X11 でクリップボードの所有を保つ最大時間です。
	// X11 ではプロセスの終了とともに内容が失われます。
	DefaultHold = 30 * time.Second
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// ErrWriteFailed はクリップボードへの書き込みが拒否されたことを示します。
var ErrWriteFailed = errors.New("clipboard write failed")

var (
	initOnce sync.Once
	initErr  error

	// write は golang.design/x/clipboard への書き込みです。テストで差し替えられます。
	// 戻り値のチャネルは他のアプリケーションが内容を上書きしたときに閉じられ、失敗時は nil です。
	write = func(data []byte) <-chan struct{} {
		return clipboard.Write(clipboard.FmtImage, data)
	}
	initialize = clipboard.Init
)

// Init は X11 クリップボードを初期化します。2回目以降は最初の結果を返します。
func Init() error {
	initOnce.Do(func() {
		initErr = initialize()
	})
	return initErr
}

// Copier は撮影したPNGをクリップボードへ書き込みます。
// Wayland では wl-copy に標準入力で渡し、それ以外では golang.design/x/clipboard を使います。
type Copier struct {
	runner screenshot.InputRunner
	getenv func(string) string
	Hold   time.Duration
}

// NewCopier は wl-copy の実行に runner を使う Copier を作成します。
func NewCopier(runner screenshot.InputRunner) *Copier {
	if runner == nil {
		runner = screenshot.ExecRunner{}
	}
	return &Copier{runner: runner, getenv: os.Getenv, Hold: DefaultHold}
}

// CopyImageFile は path のPNG画像をクリップボードに書き込みます。
// session.Hook として撮影後に呼び出されます。
func (c *Copier) CopyImageFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read screenshot %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return fmt.Errorf("%s is not a PNG image", path)
	}

	if c.getenv("WAYLAND_DISPLAY") != "" {
		// wl-copy はバックグラウンドで内容を保持し続けるため、こちらの終了を待たない
		if _, err := c.runner.RunWithInput(ctx, bytes.NewReader(data), wlCopy, "--type", "image/png"); err != nil {
			return fmt.Errorf("failed to copy %s with %s: %w", path, wlCopy, err)
		}
		log.Printf("Copied %s to clipboard with %s", path, wlCopy)
		return nil
	}
	return c.copyX11(ctx, path, data)
}

func (c *Copier) copyX11(ctx context.Context, path string, data []byte) error {
	if err := Init(); err != nil {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}

	changed := write(data)
	if changed == nil {
		return fmt.Errorf("%w: %s", ErrWriteFailed, path)
	}
	log.Printf("Copied %s to clipboard, holding it for up to %s", path, c.Hold)

	timer := time.NewTimer(c.Hold)
	defer timer.Stop()
	select {
	case <-changed:
		log.Println("Clipboard content was replaced by another application")
	case <-timer.C:
		log.Println("Clipboard hold time elapsed")
	case <-ctx.Done():
	}
	return nil
}
