package core

//go:generate mockgen -source=logger.go -destination=mock_logger.go -package=core

// Logger はパイプライン全体で使うロガーのインターフェース
// messageType には "info", "warn", "error", "debug" を使う
type Logger interface {
	Log(messageType string, message string)
	Flush()
}
