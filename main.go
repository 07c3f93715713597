// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/g3ronymo/wl-screenshot/clipboard"
	"github.com/g3ronymo/wl-screenshot/config"
	"github.com/g3ronymo/wl-screenshot/gui"
	"github.com/g3ronymo/wl-screenshot/logutil"
	"github.com/g3ronymo/wl-screenshot/screenshot"
	"github.com/g3ronymo/wl-screenshot/selection"
	"github.com/g3ronymo/wl-screenshot/session"
	"github.com/g3ronymo/wl-screenshot/tui"
)

type cliOptions struct {
	configPath string
	frontend   string
	backend    string
	clipboard  bool
	verbose    bool
}

// deps はダイアログと撮影処理の生成関数です。テストで差し替えます。
type deps struct {
	prompter func(frontend string) selection.Prompter
	invoker  func(cfg *config.Config) session.Invoker
	getenv   func(string) string
}

func defaultDeps() deps {
	return deps{
		prompter: func(frontend string) selection.Prompter {
			if frontend == config.FrontendTUI {
				return tui.Frontend{}
			}
			return gui.Frontend{}
		},
		invoker: func(cfg *config.Config) session.Invoker {
			if cfg.Backend == config.BackendNative {
				return screenshot.NewNativeInvoker(screenshot.ExecRunner{}, cfg.Tools())
			}
			return screenshot.NewInvoker(screenshot.ExecRunner{}, cfg.Tools())
		},
		getenv: os.Getenv,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := runWithArgs(ctx, os.Args, defaultDeps())
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWithArgs(ctx context.Context, args []string, d deps) error {
	if len(args) == 0 {
		args = []string{"wl-screenshot"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, d)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *cliOptions, d deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wl-screenshot [flags] SCREENSHOT_DIRECTORY",
		Short:         "Take screenshots under wayland",
		Long:          "Choose full screen or area capture and a file name, then save <SCREENSHOT_DIRECTORY>/<name>.png using slurp and grim.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, *opts, args[0], d)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: user config dir)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.frontend, "frontend", "", "Selection dialog: auto, gui or tui")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "Capture backend: external (slurp and grim) or native (X11 capture, needs XWayland on wayland)")
	cmd.Flags().BoolVar(&opts.clipboard, "clipboard", false, "Copy the screenshot to the clipboard")

	cmd.AddCommand(newInitConfigCmd(opts))
	return cmd
}

func newInitConfigCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.SaveConfig(config.NewDefaultConfig(), opts.configPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func runCapture(cmd *cobra.Command, opts cliOptions, dirArg string, d deps) error {
	// 設定のロード前にログ出力先を決める
	logutil.Setup(logutil.Options{Verbose: opts.verbose})

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	closeLog := logutil.Setup(logutil.Options{Verbose: opts.verbose, FileLogging: cfg.EnableFileLogging})
	defer closeLog()

	dir, err := session.ResolveDirectory(dirArg)
	if err != nil {
		return err
	}

	frontend := resolveFrontend(cfg.Frontend, d.getenv)
	log.Printf("Using %s frontend and %s backend, saving to %s", frontend, cfg.Backend, dir)

	hooks := []session.Hook{session.ReportSize}
	if cfg.CopyToClipboard {
		hooks = append(hooks, clipboard.NewCopier(screenshot.ExecRunner{}).CopyImageFile)
	}

	s := &session.Session{
		Dir:      dir,
		Prompter: d.prompter(frontend),
		Invoker:  d.invoker(cfg),
		Hooks:    hooks,
	}
	out, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintln(cmd.OutOrStdout(), session.Describe(out))
	}
	return nil
}

// loadConfig は設定ファイルを読み込み、コマンドラインの指定で上書きします。
func loadConfig(opts cliOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.frontend != "" {
		cfg.Frontend = opts.frontend
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.clipboard {
		cfg.CopyToClipboard = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveFrontend は auto をディスプレイの有無で gui / tui に解決します。
func resolveFrontend(frontend string, getenv func(string) string) string {
	if frontend != config.FrontendAuto {
		return frontend
	}
	if getenv("WAYLAND_DISPLAY") != "" || getenv("DISPLAY") != "" {
		return config.FrontendGUI
	}
	return config.FrontendTUI
}
