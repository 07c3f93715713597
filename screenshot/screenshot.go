// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package screenshot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"

	"github.com/g3ronymo/wl-screenshot/selection"
)

// Tools は呼び出す外部ツールの名前とジオメトリ指定フラグです。
type Tools struct {
	RegionTool   string // 範囲選択ツール (slurp)
	CaptureTool  string // 撮影ツール (grim)
	GeometryFlag string // 撮影ツールに範囲を渡すフラグ (-g)
}

// DefaultTools は slurp / grim を使う既定の構成を返します。
func DefaultTools() Tools {
	return Tools{
		RegionTool:   "slurp",
		CaptureTool:  "grim",
		GeometryFlag: "-g",
	}
}

// Invoker は外部ツールを呼び出してスクリーンショットを保存します。
type Invoker struct {
	runner Runner
	tools  Tools
}

// NewInvoker は Runner とツール構成から Invoker を作成します。
func NewInvoker(runner Runner, tools Tools) *Invoker {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Invoker{runner: runner, tools: tools}
}

// Capture はモードに応じて撮影し、path にPNGを書き出させます。
func (inv *Invoker) Capture(ctx context.Context, mode selection.Mode, path string) error {
	switch mode {
	case selection.ModeFullScreen:
		return inv.CaptureFullScreen(ctx, path)
	case selection.ModeArea:
		return inv.CaptureArea(ctx, path)
	default:
		return fmt.Errorf("unsupported capture mode %s", mode)
	}
}

// CaptureFullScreen は画面全体を撮影します。範囲選択ツールは呼び出しません。
func (inv *Invoker) CaptureFullScreen(ctx context.Context, path string) error {
	if _, err := inv.runner.Run(ctx, inv.tools.CaptureTool, path); err != nil {
		return fmt.Errorf("full screen capture failed: %w", err)
	}
	log.Printf("Captured full screen to %s", path)
	return nil
}

// CaptureArea は範囲選択ツールで得たジオメトリを撮影ツールにそのまま渡します。
// 空のジオメトリも検証せずに渡します。
func (inv *Invoker) CaptureArea(ctx context.Context, path string) error {
	geometry, err := SelectRegion(ctx, inv.runner, inv.tools.RegionTool)
	if err != nil {
		return err
	}

	if _, err := inv.runner.Run(ctx, inv.tools.CaptureTool, inv.tools.GeometryFlag, geometry, path); err != nil {
		return fmt.Errorf("area capture failed: %w", err)
	}
	log.Printf("Captured area %q to %s", geometry, path)
	return nil
}

// SelectRegion は範囲選択ツールを引数なしで一度だけ実行し、前後の空白を除いた標準出力を返します。
// ツールが起動したうえで非ゼロ終了した場合（選択のキャンセルなど）は、その出力をエラーなしで返します。
func SelectRegion(ctx context.Context, runner Runner, tool string) (string, error) {
	out, err := runner.Run(ctx, tool)
	geometry := strings.TrimSpace(string(out))
	if err != nil {
		var perr *ProcessError
		if errors.As(err, &perr) && perr.Started() {
			log.Printf("Region selection exited with status %d, passing geometry %q through", perr.ExitCode, geometry)
			return geometry, nil
		}
		return "", fmt.Errorf("region selection failed: %w", err)
	}
	return geometry, nil
}

// CheckTools はモードに必要なツールのうち PATH に見つからないものを返します。空の名前は対象外です。
func CheckTools(tools Tools, mode selection.Mode) []string {
	needed := []string{tools.CaptureTool}
	if mode == selection.ModeArea {
		needed = []string{tools.RegionTool, tools.CaptureTool}
	}

	var missing []string
	for _, name := range needed {
		if name == "" {
			continue
		}
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// MissingTools は mode の撮影に必要で見つからないツールを返します。
func (inv *Invoker) MissingTools(mode selection.Mode) []string {
	return CheckTools(inv.tools, mode)
}
