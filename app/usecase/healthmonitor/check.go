package healthmonitor

import (
	"fmt"

	"github.com/wasya-io/kilonote/app/entity/health"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

// CheckHealth は編集面を診断する
// 1回の診断の中で状態は引き上げられるだけで、下がることはない
func CheckHealth(s surface.Surface) health.Record {
	record := health.NewRecord()

	if s == nil {
		record.Add(health.Error, health.IssueSurfaceMissing,
			"editor surface is not available", "recreate the editor surface")
		return record
	}
	if s.IsDestroyed() {
		record.Add(health.Destroyed, health.IssueSurfaceDestroyed,
			"editor surface has been destroyed", "reload the editor")
		record.Recoverable = false
		return record
	}

	view := s.View()
	var root surface.Element
	if view == nil {
		record.Add(health.Error, health.IssueViewMissing,
			"editor view is missing", "remount the editor content")
	} else {
		root = view.Root()
		if root != nil && !root.IsConnected() {
			record.Add(health.Warning, health.IssueViewDetached,
				"editor view is detached from the document", "refresh the editor view")
		}
	}

	if s.State() == nil {
		record.Add(health.Error, health.IssueStateMissing,
			"editor state is missing", "reapply the document")
	}

	if s.Commands() == nil {
		record.Add(health.Warning, health.IssueCommandsMissing,
			"editor commands are unavailable", "wait for the editor to finish initializing")
	}

	if err := tryRead(s); err != nil {
		record.Add(health.Error, health.IssueDocumentUnreadable,
			fmt.Sprintf("editor content is unreadable: %v", err), "refresh the editor view")
	}

	// 描画面があるのにルート要素がない場合は切り離されたまま残っている可能性がある
	if record.State == health.Healthy && view != nil && root == nil {
		record.Add(health.Warning, health.IssueMemoryLeak,
			"editor view has no root element; detached nodes may be leaking", "reload the editor")
	}

	return record
}

// tryRead は内容を読み出してみる。パニックもエラーとして返す
func tryRead(s surface.Surface) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while reading content: %v", r)
		}
	}()
	_, err = s.Document()
	return err
}
