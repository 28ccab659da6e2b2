package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAutoSaveDelay     = 2000 * time.Millisecond
	defaultScrollMargin      = 50
	defaultScrollDuration    = 300
	defaultHealthInterval    = 5 * time.Second
	defaultPerfInterval      = 10 * time.Second
	defaultPerfHistory       = 100
	defaultMarkdownCacheSize = 128
)

// ScrollConfig はスクロール挙動の設定
type ScrollConfig struct {
	SmoothScrolling        bool `yaml:"smoothScrolling"`
	AutoScrollToNewContent bool `yaml:"autoScrollToNewContent"`
	ScrollMarginPx         int  `yaml:"scrollMarginPx"`
	ScrollDurationMs       int  `yaml:"scrollDurationMs"`
}

// UXConfig はUXポリシーの設定。実行時に変更可能
type UXConfig struct {
	Scroll            ScrollConfig  `yaml:"scroll"`
	ResponsiveTyping  bool          `yaml:"responsiveTyping"`
	AutoSave          bool          `yaml:"autoSave"`
	AutoSaveDelay     time.Duration `yaml:"autoSaveDelay"`
	FocusManagement   bool          `yaml:"focusManagement"`
	KeyboardShortcuts bool          `yaml:"keyboardShortcuts"`
}

// DefaultUX はUXポリシーの既定値を返す
func DefaultUX() UXConfig {
	return UXConfig{
		Scroll: ScrollConfig{
			SmoothScrolling:        true,
			AutoScrollToNewContent: true,
			ScrollMarginPx:         defaultScrollMargin,
			ScrollDurationMs:       defaultScrollDuration,
		},
		ResponsiveTyping:  true,
		AutoSave:          true,
		AutoSaveDelay:     defaultAutoSaveDelay,
		FocusManagement:   true,
		KeyboardShortcuts: true,
	}
}

// Config はパイプライン全体の設定を保持する構造体
type Config struct {
	DebugMode         bool          `yaml:"debug"`
	LogDir            string        `yaml:"logDir"`
	HealthInterval    time.Duration `yaml:"healthInterval"`
	PerfInterval      time.Duration `yaml:"perfInterval"`
	PerfHistory       int           `yaml:"perfHistory"`
	MarkdownCacheSize int           `yaml:"markdownCacheSize"`
	UX                UXConfig      `yaml:"ux"`
}

// Default は既定の設定を返す
func Default() *Config {
	return &Config{
		DebugMode:         false,
		LogDir:            ".",
		HealthInterval:    defaultHealthInterval,
		PerfInterval:      defaultPerfInterval,
		PerfHistory:       defaultPerfHistory,
		MarkdownCacheSize: defaultMarkdownCacheSize,
		UX:                DefaultUX(),
	}
}

// LoadConfig は.envファイルと環境変数、任意のYAMLファイルから設定を読み込む
// 優先順位は 環境変数 > YAMLファイル > 既定値
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む（存在しなくてもよい）
	godotenv.Load()

	config := Default()

	// KILONOTE_CONFIG で指定されたYAMLファイルを読み込む
	if path := os.Getenv("KILONOTE_CONFIG"); path != "" {
		if err := config.loadFile(path); err != nil {
			return nil, err
		}
	}

	config.applyEnv()
	return config, nil
}

// loadFile はYAMLファイルの内容で設定を上書きする
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv は環境変数の値で設定を上書きする
func (c *Config) applyEnv() {
	// DEBUG環境変数から設定を読み込む
	if debug := os.Getenv("DEBUG"); debug != "" {
		c.DebugMode = debug == "true" || debug == "1"
	}

	if dir := os.Getenv("LOG_DIR"); dir != "" {
		c.LogDir = dir
	}

	if autoSave := os.Getenv("AUTOSAVE"); autoSave != "" {
		c.UX.AutoSave = autoSave != "0" && autoSave != "false"
	}

	if smooth := os.Getenv("SMOOTH_SCROLL"); smooth != "" {
		c.UX.Scroll.SmoothScrolling = smooth != "0" && smooth != "false"
	}

	if v, ok := positiveInt("SCROLL_MARGIN_PX"); ok {
		c.UX.Scroll.ScrollMarginPx = v
	}
	if v, ok := positiveInt("AUTOSAVE_DELAY_MS"); ok {
		c.UX.AutoSaveDelay = time.Duration(v) * time.Millisecond
	}
	if v, ok := positiveInt("HEALTH_INTERVAL_MS"); ok {
		c.HealthInterval = time.Duration(v) * time.Millisecond
	}
	if v, ok := positiveInt("PERF_INTERVAL_MS"); ok {
		c.PerfInterval = time.Duration(v) * time.Millisecond
	}
	if v, ok := positiveInt("PERF_HISTORY"); ok {
		c.PerfHistory = v
	}
}

// positiveInt は環境変数を正の整数として読み込む
func positiveInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return 0, false
	}
	return val, true
}
