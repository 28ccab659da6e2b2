//go:build !linux

package perfmonitor

import "runtime"

// processMemoryMB はランタイムが使用中のメモリ(MB)を返す
// 解放済みでOSに返したページは含めない
func processMemoryMB() (float64, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.Sys-stats.HeapReleased) / (1024 * 1024), nil
}
