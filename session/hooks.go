// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package session

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
)

// ReportSize は保存されたファイルのサイズをログに出します。ファイルの有無で失敗はしません。
func ReportSize(_ context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		log.Printf("Warning: screenshot %s was not written: %v", path, err)
		return nil
	}
	log.Printf("Saved %s (%s)", path, humanize.Bytes(uint64(info.Size())))
	return nil
}

// Describe は撮影結果をユーザー向けの1行にします。
func Describe(out Outcome) string {
	if out.Cancelled {
		return "Cancelled"
	}
	if info, err := os.Stat(out.Path); err == nil {
		return fmt.Sprintf("%s (%s)", out.Path, humanize.Bytes(uint64(info.Size())))
	}
	return out.Path
}
