// Copyright (c) 2025 SeeKT
// This source code is licensed under the MIT license found in the LICENSE file in the root directory of this source tree.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/g3ronymo/wl-screenshot/screenshot"
)

const (
	appName = "wl-screenshot"

	BackendExternal = "external" // slurp + grim
	BackendNative   = "native"   // slurp + プロセス内撮影

	FrontendAuto = "auto"
	FrontendGUI  = "gui"
	FrontendTUI  = "tui"

	// EnvFileVar は .env ファイルの場所を指定する環境変数です。
	EnvFileVar = "WL_SCREENSHOT_ENV"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	RegionTool        string `json:"region_tool"`   // 範囲選択ツール
	CaptureTool       string `json:"capture_tool"`  // 撮影ツール
	GeometryFlag      string `json:"geometry_flag"` // 撮影ツールに範囲を渡すフラグ
	Backend           string `json:"backend"`       // external / native
	Frontend          string `json:"frontend"`      // auto / gui / tui
	CopyToClipboard   bool   `json:"copy_to_clipboard"`
	EnableFileLogging bool   `json:"enable_file_logging"`
}

// NewDefaultConfig はデフォルトの設定値を返します。
func NewDefaultConfig() *Config {
	tools := screenshot.DefaultTools()
	return &Config{
		RegionTool:   tools.RegionTool,
		CaptureTool:  tools.CaptureTool,
		GeometryFlag: tools.GeometryFlag,
		Backend:      BackendExternal,
		Frontend:     FrontendAuto,
	}
}

// ConfigFilePath は設定ファイルのパスを返します。ディレクトリは作成しません。
func ConfigFilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, appName, "config.json"), nil
}

// LoadConfig は設定を読み込みます。path が空の場合は ConfigFilePath を使います。
// ファイルが存在しない場合はデフォルト設定に環境変数を重ねたものを返します。
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigFilePath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config file path: %w", err)
		}
		path = p
	}

	cfg := NewDefaultConfig() // まずデフォルト設定をロード

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
		}
		log.Printf("Config loaded from %s", path)
	case os.IsNotExist(err):
		log.Printf("Config file not found at %s. Using default settings.", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if envPath := resolveEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Failed to load %s: %v", envPath, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig は設定をファイルに保存します。path が空の場合は ConfigFilePath を使います。
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		p, err := ConfigFilePath()
		if err != nil {
			return "", fmt.Errorf("failed to get config file path: %w", err)
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ") // JSONを整形して保存
	if err != nil {
		return "", fmt.Errorf("failed to marshal config data: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	log.Printf("Config saved to %s", path)
	return path, nil
}

// Validate は設定値の整合性を確認します。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CaptureTool) == "" {
		return fmt.Errorf("capture_tool must not be empty")
	}
	if strings.TrimSpace(c.RegionTool) == "" {
		return fmt.Errorf("region_tool must not be empty")
	}
	if strings.TrimSpace(c.GeometryFlag) == "" {
		return fmt.Errorf("geometry_flag must not be empty")
	}
	switch c.Backend {
	case BackendExternal, BackendNative:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendExternal, BackendNative)
	}
	switch c.Frontend {
	case FrontendAuto, FrontendGUI, FrontendTUI:
	default:
		return fmt.Errorf("unknown frontend %q (want %s, %s or %s)", c.Frontend, FrontendAuto, FrontendGUI, FrontendTUI)
	}
	return nil
}

// Tools は設定から外部ツールの構成を返します。
func (c *Config) Tools() screenshot.Tools {
	return screenshot.Tools{
		RegionTool:   c.RegionTool,
		CaptureTool:  c.CaptureTool,
		GeometryFlag: c.GeometryFlag,
	}
}

func (c *Config) applyEnv() {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	setString("WL_SCREENSHOT_REGION_TOOL", &c.RegionTool)
	setString("WL_SCREENSHOT_CAPTURE_TOOL", &c.CaptureTool)
	setString("WL_SCREENSHOT_GEOMETRY_FLAG", &c.GeometryFlag)
	setString("WL_SCREENSHOT_BACKEND", &c.Backend)
	setString("WL_SCREENSHOT_FRONTEND", &c.Frontend)
	setBool("WL_SCREENSHOT_CLIPBOARD", &c.CopyToClipboard)
	setBool("WL_SCREENSHOT_FILE_LOGGING", &c.EnableFileLogging)
}

// resolveEnvPath は実行ファイルと同じディレクトリの .env、
// なければ WL_SCREENSHOT_ENV が指すファイルを返します。
func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvFileVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}
	return ""
}
