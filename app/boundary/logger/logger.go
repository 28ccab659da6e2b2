package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogEntry はログのエントリを表す構造体
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}

// Logger はロギング機能を提供する構造体
// 監視タイマーとホストの両方から呼ばれるため排他制御する
type Logger struct {
	mu        sync.Mutex
	debugMode bool
	entries   []LogEntry
	filePath  string
	maxBuffer int
	startTime time.Time
}

// New は新しいLoggerインスタンスを作成する
func New(debugMode bool) *Logger {
	return NewWithDir(debugMode, ".")
}

// NewWithDir はログファイルの出力先ディレクトリを指定してLoggerを作成する
func NewWithDir(debugMode bool, dir string) *Logger {
	startTime := time.Now()
	if dir == "" {
		dir = "."
	}
	return &Logger{
		debugMode: debugMode,
		entries:   make([]LogEntry, 0),
		filePath:  filepath.Join(dir, fmt.Sprintf("log-%s.jsonl", startTime.Format("20060102-150405"))),
		maxBuffer: 100,
		startTime: startTime,
	}
}

// Log はメッセージをログに記録する
func (l *Logger) Log(messageType string, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.debugMode {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Message:   message,
		Type:      messageType,
	}
	l.entries = append(l.entries, entry)

	// バッファが一定量に達したらフラッシュ
	if len(l.entries) >= l.maxBuffer {
		l.flushLocked()
	}
}

// Flush は現在のログエントリをファイルに書き出す
func (l *Logger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushLocked()
}

func (l *Logger) flushLocked() {
	if len(l.entries) == 0 {
		return
	}

	// 新しいエントリだけを1行1件で追記する
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, entry := range l.entries {
		enc.Encode(entry)
	}

	f, err := os.OpenFile(l.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.Write(buf.Bytes())
		f.Close()
	}

	// ログをクリア
	l.entries = l.entries[:0]
}

// SetDebugMode はデバッグモードの状態を設定する
func (l *Logger) SetDebugMode(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugMode = enabled
}

// FilePath はログファイルのパスを返す
func (l *Logger) FilePath() string {
	return l.filePath
}

// Pending はまだ書き出されていないエントリ数を返す
func (l *Logger) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
