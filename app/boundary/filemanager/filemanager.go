package filemanager

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wasya-io/kilonote/app/entity/content"
	"github.com/wasya-io/kilonote/app/entity/event"
)

// FileManager はノートファイルの読み書きを行う
type FileManager interface {
	OpenFile(filename string) (string, error)
	SaveFile(filename string, stored content.StoredContent) error
	SaveCurrentFile(stored content.StoredContent) error
	GetFilename() string
	HandleSaveRequest(ev event.Event) error
}

// エラー定義
var (
	ErrNoFilename     = errors.New("no filename specified")
	ErrNotSaveRequest = errors.New("event is not a save request")
)

// StandardFileManager はファイル操作を管理する構造体
// 保存要求は監視タイマーから届くため排他制御する
type StandardFileManager struct {
	mu       sync.Mutex
	filename string
	saved    int
}

var _ FileManager = (*StandardFileManager)(nil)

// NewFileManager は新しいFileManagerを作成する
func NewFileManager() *StandardFileManager {
	return &StandardFileManager{}
}

// OpenFile は指定されたファイルを開き、内容をそのまま返す
// 形式の判定は呼び出し側で行う
func (fm *StandardFileManager) OpenFile(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	fm.mu.Lock()
	fm.filename = filename
	fm.mu.Unlock()
	return string(data), nil
}

// SaveFile はエンベロープをJSONとしてファイルに保存する
// 一時ファイルに書き込んでから置き換えるため、途中で失敗しても元の内容は残る
func (fm *StandardFileManager) SaveFile(filename string, stored content.StoredContent) error {
	if filename == "" {
		return ErrNoFilename
	}

	data, err := stored.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode note: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), ".kilonote-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return err
	}

	// 保存に成功したら、管理しているファイル名を更新する
	fm.mu.Lock()
	fm.filename = filename
	fm.saved++
	fm.mu.Unlock()
	return nil
}

// SaveCurrentFile は現在のファイルに保存する
func (fm *StandardFileManager) SaveCurrentFile(stored content.StoredContent) error {
	filename := fm.GetFilename()
	if filename == "" {
		return ErrNoFilename
	}
	return fm.SaveFile(filename, stored)
}

// GetFilename は現在開いているファイル名を返す
func (fm *StandardFileManager) GetFilename() string {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.filename
}

// SavedCount は保存に成功した回数を返す
func (fm *StandardFileManager) SavedCount() int {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.saved
}

// HandleSaveRequest は save-requested イベントの内容を現在のファイルに保存する
func (fm *StandardFileManager) HandleSaveRequest(ev event.Event) error {
	payload, ok := ev.Payload.(event.SaveRequestedEvent)
	if !ok {
		return ErrNotSaveRequest
	}
	return fm.SaveCurrentFile(payload.Content)
}
