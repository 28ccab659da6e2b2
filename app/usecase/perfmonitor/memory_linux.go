//go:build linux

package perfmonitor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

const statmPath = "/proc/self/statm"

// processMemoryMB はプロセスの現在の常駐メモリ(MB)を返す
func processMemoryMB() (float64, error) {
	data, err := os.ReadFile(statmPath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", statmPath, err)
	}
	return parseStatm(string(data), unix.Getpagesize())
}

// parseStatm は statm の2列目(常駐ページ数)をMBに換算する
func parseStatm(statm string, pageSize int) (float64, error) {
	fields := strings.Fields(statm)
	if len(fields) < 2 {
		return 0, fmt.Errorf("unexpected statm format: %q", statm)
	}
	pages, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse resident pages: %w", err)
	}
	return float64(pages) * float64(pageSize) / (1024 * 1024), nil
}
