package healthmonitor

import (
	"errors"
	"fmt"

	"github.com/wasya-io/kilonote/app/entity/fault"
	"github.com/wasya-io/kilonote/app/entity/health"
	"github.com/wasya-io/kilonote/app/entity/surface"
)

var errNoView = errors.New("surface has no view")

// recoveryAction は問題の種類ごとの復旧処理
type recoveryAction struct {
	name string
	run  func(s surface.Surface) error
}

// defaultActions は問題の種類から復旧処理への対応表を返す
func defaultActions() map[health.IssueKind]recoveryAction {
	remount := recoveryAction{name: "remount-content", run: remountContent}
	refresh := recoveryAction{name: "refresh-view", run: refreshView}
	return map[health.IssueKind]recoveryAction{
		health.IssueViewMissing:        remount,
		health.IssueStateMissing:       remount,
		health.IssueViewDetached:       refresh,
		health.IssueDocumentUnreadable: refresh,
	}
}

// remountContent は現在の内容をコマンド経由で再適用し、描画面と内部状態を作り直させる
func remountContent(s surface.Surface) error {
	cmds := s.Commands()
	if cmds == nil {
		return surface.ErrNoCommands
	}
	doc, err := s.Document()
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	return cmds.SetContent(doc)
}

// refreshView は内部状態を描画面に再適用する
func refreshView(s surface.Surface) error {
	view := s.View()
	if view == nil {
		return errNoView
	}
	view.RefreshState()
	return nil
}

// attemptRecovery は診断結果に含まれる問題に対応する復旧処理を実行する
// クールダウン期間内の試行回数が上限に達している場合は何もしない
func (m *Monitor) attemptRecovery(gen uint64, s surface.Surface, record health.Record) {
	if s == nil {
		m.logger.Log("warn", "health: no surface to recover")
		return
	}

	var plan []recoveryAction
	seen := make(map[string]bool)
	for _, issue := range record.Issues {
		action, ok := m.actions[issue.Kind]
		if !ok || seen[action.name] {
			continue
		}
		seen[action.name] = true
		plan = append(plan, action)
	}
	if len(plan) == 0 {
		m.logger.Log("warn", "health: no recovery action for current issues")
		return
	}

	m.mu.Lock()
	if m.destroyed || gen != m.generation {
		m.mu.Unlock()
		return
	}
	if m.attempts >= MaxRecoveryAttempts {
		m.mu.Unlock()
		m.logger.Log("warn", "health: recovery attempts exhausted, waiting for cooldown")
		return
	}
	m.attempts++
	attempt := m.attempts
	if m.resetTimer == nil {
		m.cooldownSeq++
		seq := m.cooldownSeq
		m.resetTimer = m.sched.AfterFunc(RecoveryCooldown, func() { m.resetAttempts(seq) })
	}
	m.mu.Unlock()

	for _, action := range plan {
		if err := runAction(action, s); err != nil {
			recErr := fault.NewRecoveryError(err, action.name, attempt, m.sched.Now())
			m.logger.Log("error", fmt.Sprintf("health: %v", recErr))
			continue
		}
		m.logger.Log("info", fmt.Sprintf("health: recovery %q succeeded (attempt %d)", action.name, attempt))
	}
}

// runAction は復旧処理を実行する。パニックはエラーとして扱う
func runAction(action recoveryAction, s surface.Surface) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fault.FromPanic(fault.CategoryRecovery, r)
		}
	}()
	return action.run(s)
}

// resetAttempts はクールダウン期間の終わりに試行回数を戻す
func (m *Monitor) resetAttempts(seq uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.cooldownSeq {
		return
	}
	m.attempts = 0
	m.resetTimer = nil
}

type nopLogger struct{}

func (nopLogger) Log(string, string) {}
func (nopLogger) Flush()             {}
