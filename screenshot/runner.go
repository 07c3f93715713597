// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner は外部コマンドを同期的に実行し、標準出力を返します。
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ProcessError は外部ツールの起動失敗または非ゼロ終了を表します。
type ProcessError struct {
	Tool     string
	Args     []string
	ExitCode int // 起動できなかった場合は -1
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	cmdline := strings.TrimSpace(e.Tool + " " + strings.Join(e.Args, " "))
	if e.ExitCode < 0 {
		return fmt.Sprintf("failed to run %s: %v", cmdline, e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", cmdline, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", cmdline, e.ExitCode)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Started はプロセスが起動し、終了コードを返したかどうかを示します。
func (e *ProcessError) Started() bool { return e.ExitCode >= 0 }

// InputRunner は標準入力を渡して外部コマンドを実行します。
type InputRunner interface {
	RunWithInput(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)
}

// ExecRunner は os/exec を使う Runner / InputRunner です。
type ExecRunner struct{}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.RunWithInput(ctx, nil, name, args...)
}

func (ExecRunner) RunWithInput(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		perr := &ProcessError{
			Tool:     name,
			Args:     args,
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		return stdout.Bytes(), perr
	}
	return stdout.Bytes(), nil
}
