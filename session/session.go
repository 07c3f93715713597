// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/g3ronymo/wl-screenshot/selection"
)

var (
	ErrInvalidDirectory     = errors.New("screenshot directory does not exist or is not a directory")
	ErrDirectoryNotWritable = errors.New("screenshot directory is not writable")
	ErrInvalidName          = errors.New("invalid screenshot name")
)

// Invoker は確定したモードで path に画像を作成します。
type Invoker interface {
	Capture(ctx context.Context, mode selection.Mode, path string) error
}

// ToolChecker は撮影に必要な外部ツールの不足を報告できる Invoker です。
type ToolChecker interface {
	MissingTools(mode selection.Mode) []string
}

// Hook は撮影成功後に保存先パスを受け取って実行されます。
type Hook func(ctx context.Context, path string) error

// Outcome は1回の実行結果です。
type Outcome struct {
	Cancelled bool
	Mode      selection.Mode
	Path      string
}

// Session はダイアログ表示から撮影までの1回分の流れです。
type Session struct {
	Dir      string // ResolveDirectory で検証済みのディレクトリ
	Prompter selection.Prompter
	Invoker  Invoker
	Now      func() time.Time
	Hooks    []Hook
}

// ResolveDirectory は arg を絶対パスに変換し、書き込み可能な既存ディレクトリであることを確認します。
func ResolveDirectory(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", arg, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidDirectory, abs)
	}
	if err := checkWritable(abs); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDirectoryNotWritable, abs, err)
	}
	return abs, nil
}

// OutputPath は dir/name.png を返します。パス区切りを含む名前や "." / ".." は拒否します。
func OutputPath(dir, name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/`+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(dir, name+".png"), nil
}

// Run はダイアログを表示し、確定された場合にのみ撮影します。
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	form := selection.NewForm(selection.Options{Now: s.Now})

	result, err := s.Prompter.Prompt(ctx, form)
	if err != nil {
		return Outcome{}, fmt.Errorf("selection dialog failed: %w", err)
	}
	if result.Cancelled {
		log.Println("Selection cancelled. Nothing to capture.")
		return Outcome{Cancelled: true}, nil
	}

	path, err := OutputPath(s.Dir, result.Name)
	if err != nil {
		return Outcome{}, err
	}

	if checker, ok := s.Invoker.(ToolChecker); ok {
		if missing := checker.MissingTools(result.Mode); len(missing) > 0 {
			log.Printf("Warning: not found in PATH: %s", strings.Join(missing, ", "))
		}
	}

	log.Printf("Capturing %s to %s", result.Mode, path)
	if err := s.Invoker.Capture(ctx, result.Mode, path); err != nil {
		return Outcome{}, err
	}

	for _, hook := range s.Hooks {
		if err := hook(ctx, path); err != nil {
			log.Printf("Post-capture hook failed for %s: %v", path, err)
		}
	}
	return Outcome{Mode: result.Mode, Path: path}, nil
}
