package config

import (
	"os"
	"runtime"
	"sync"

	"golang.org/x/term"
)

// Environment は実行環境の検出結果
// 起動時に一度構築し、必要なコンポーネントへ明示的に渡す
type Environment struct {
	Development bool // 開発モード (KILONOTE_ENV=development)
	Interactive bool // 標準入力が端末に接続されている
	MemoryProbe bool // プロセスのメモリ使用量を取得できる
	GCHint      bool // GCのヒントを出してよい
	OS          string
}

var (
	detectOnce  sync.Once
	detectMu    sync.Mutex
	detectedEnv Environment
)

// DetectEnvironment は実行環境を検出する。結果はプロセス内で不変なのでメモ化する
func DetectEnvironment() Environment {
	detectMu.Lock()
	defer detectMu.Unlock()
	detectOnce.Do(func() {
		detectedEnv = detect()
	})
	return detectedEnv
}

// ResetEnvironment はメモ化した検出結果を破棄する。テスト用
func ResetEnvironment() {
	detectMu.Lock()
	defer detectMu.Unlock()
	detectOnce = sync.Once{}
	detectedEnv = Environment{}
}

func detect() Environment {
	mode := os.Getenv("KILONOTE_ENV")
	return Environment{
		Development: mode == "development" || mode == "dev",
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		MemoryProbe: os.Getenv("KILONOTE_DISABLE_MEMORY_PROBE") == "",
		GCHint:      os.Getenv("KILONOTE_DISABLE_GC_HINT") == "",
		OS:          runtime.GOOS,
	}
}

// ShouldReport は外部へのエラー報告を行うべき環境かどうかを返す
func (e Environment) ShouldReport() bool {
	return !e.Development && !e.Interactive
}
