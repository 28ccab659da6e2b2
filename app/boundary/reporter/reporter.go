// reporter パッケージはエラーレポートを外部へ送信する実装を提供します。
package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wasya-io/kilonote/app/entity/fault"
)

// FileReporter はレポートを1行1件のJSONとしてファイルに追記する
type FileReporter struct {
	mu   sync.Mutex
	path string
	sent int
}

// NewFileReporter は dir 配下の reports.jsonl に書き込むレポーターを作成する
func NewFileReporter(dir string) *FileReporter {
	if dir == "" {
		dir = "."
	}
	return &FileReporter{path: filepath.Join(dir, "reports.jsonl")}
}

// Report はレポートを書き込む
func (r *FileReporter) Report(report fault.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	r.sent++
	return nil
}

// Path はレポートファイルのパスを返す
func (r *FileReporter) Path() string {
	return r.path
}

// Sent は書き込みに成功したレポート数を返す
func (r *FileReporter) Sent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}

// Memory はレポートをメモリ上に保持する。テストと開発用
type Memory struct {
	mu      sync.Mutex
	reports []fault.Report
}

// Report はレポートを保持する
func (m *Memory) Report(report fault.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

// Reports は保持しているレポートを返す
func (m *Memory) Reports() []fault.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]fault.Report(nil), m.reports...)
}
