// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package screenshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"strings"

	"github.com/kbinani/screenshot"

	"github.com/g3ronymo/wl-screenshot/selection"
)

// NativeInvoker は撮影をプロセス内で行う Invoker です。
// 範囲の選択には引き続き外部の範囲選択ツールを使います。
// Linux の kbinani/screenshot は X11 経由で撮影するため、Wayland では XWayland が必要です。
type NativeInvoker struct {
	runner     Runner
	regionTool string

	// captureRect はテストで差し替えられます。
	captureRect func(image.Rectangle) (*image.RGBA, error)
	bounds      func() (image.Rectangle, error)
}

// NewNativeInvoker は kbinani/screenshot を使う NativeInvoker を作成します。
func NewNativeInvoker(runner Runner, tools Tools) *NativeInvoker {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &NativeInvoker{
		runner:      runner,
		regionTool:  tools.RegionTool,
		captureRect: screenshot.CaptureRect,
		bounds:      VirtualScreenBounds,
	}
}

// Capture はモードに応じて撮影し、path にPNGを保存します。
func (n *NativeInvoker) Capture(ctx context.Context, mode selection.Mode, path string) error {
	var rect image.Rectangle
	switch mode {
	case selection.ModeFullScreen:
		b, err := n.bounds()
		if err != nil {
			return err
		}
		rect = b
	case selection.ModeArea:
		geometry, err := SelectRegion(ctx, n.runner, n.regionTool)
		if err != nil {
			return err
		}
		r, err := ParseGeometry(geometry)
		if err != nil {
			return err
		}
		rect = r
	default:
		return fmt.Errorf("unsupported capture mode %s", mode)
	}

	img, err := n.captureRect(rect)
	if err != nil {
		return fmt.Errorf("failed to capture %v: %w", rect, err)
	}
	if err := SavePNG(img, path); err != nil {
		return err
	}
	log.Printf("Captured %v to %s", rect, path)
	return nil
}

// MissingTools は mode の撮影に必要で見つからないツールを返します。全画面では外部ツールを使いません。
func (n *NativeInvoker) MissingTools(mode selection.Mode) []string {
	if mode != selection.ModeArea {
		return nil
	}
	return CheckTools(Tools{RegionTool: n.regionTool}, selection.ModeArea)
}

// VirtualScreenBounds はすべてのアクティブなディスプレイを含む矩形を返します。
func VirtualScreenBounds() (image.Rectangle, error) {
	count := screenshot.NumActiveDisplays()
	if count == 0 {
		return image.Rectangle{}, fmt.Errorf("no active displays found")
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < count; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// ParseGeometry は slurp 形式のジオメトリ "X,Y WxH" を矩形に変換します。
func ParseGeometry(geometry string) (image.Rectangle, error) {
	geometry = strings.TrimSpace(geometry)
	if geometry == "" {
		return image.Rectangle{}, fmt.Errorf("empty geometry")
	}

	var x, y, w, h int
	if _, err := fmt.Sscanf(geometry, "%d,%d %dx%d", &x, &y, &w, &h); err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid geometry %q: %w", geometry, err)
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid geometry %q: width=%d, height=%d", geometry, w, h)
	}
	return image.Rect(x, y, x+w, y+h), nil
}

// SavePNG は画像を path にPNG形式で保存します。
func SavePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create screenshot file %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode PNG image to file %s: %w", path, err)
	}
	return nil
}
