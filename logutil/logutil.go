// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	logFileName  = "wl-screenshot.log"
	maxSizeBytes = 1024 * 1024 // 1 MB
	maxArchives  = 3
)

// Options はログ出力先の設定です。
type Options struct {
	Verbose     bool   // 標準エラー出力へ出す
	FileLogging bool   // ファイルへ出す
	Dir         string // ログファイルのディレクトリ。空ならユーザーキャッシュディレクトリ
}

// stderr はログファイルを開けなかったときの通知先です。テストで差し替えます。
var stderr io.Writer = os.Stderr

// Setup は標準の log パッケージの出力先を設定します。
// どちらも無効な場合、ログは破棄されます。戻り値の関数でファイルを閉じます。
// ログファイルを開けない場合は標準エラー出力に通知し、ファイルなしで続行します。
func Setup(opts Options) func() error {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var writers []io.Writer
	if opts.Verbose {
		writers = append(writers, os.Stderr)
	}

	closeFn := func() error { return nil }
	if opts.FileLogging {
		if w, err := openLogFile(opts.Dir); err != nil {
			fmt.Fprintf(stderr, "Warning: file logging disabled: %v\n", err)
		} else {
			writers = append(writers, w)
			closeFn = w.Close
		}
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	return closeFn
}

func openLogFile(dir string) (*RotatingWriter, error) {
	if dir == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user cache directory: %w", err)
		}
		dir = filepath.Join(cacheDir, "wl-screenshot")
	}
	return NewRotatingWriter(filepath.Join(dir, logFileName), maxSizeBytes, maxArchives)
}

// RotatingWriter はサイズ上限を超えると path.1, path.2 ... にローテーションするファイルです。
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	archives int
	f        *os.File
}

// NewRotatingWriter はログファイルを追記モードで開きます。
func NewRotatingWriter(path string, maxSize int64, archives int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", filepath.Dir(path), err)
	}
	w := &RotatingWriter{path: path, maxSize: maxSize, archives: archives}
	w.rotateIfNeeded(0)
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", w.path, err)
	}
	w.f = f
	return nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		w.rotateIfNeeded(int64(len(p)))
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.f.Close()
}

// rotateIfNeeded は現在のファイルに incoming バイト追記すると上限を超える場合に .1 へ移動します。最古のものは破棄されます。
func (w *RotatingWriter) rotateIfNeeded(incoming int64) {
	st, err := os.Stat(w.path)
	if err != nil || st.Size() == 0 || st.Size()+incoming <= w.maxSize {
		return
	}
	_ = os.Remove(w.archiveName(w.archives))
	for i := w.archives - 1; i >= 1; i-- {
		_ = os.Rename(w.archiveName(i), w.archiveName(i+1))
	}
	_ = os.Rename(w.path, w.archiveName(1))
}

func (w *RotatingWriter) archiveName(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }
