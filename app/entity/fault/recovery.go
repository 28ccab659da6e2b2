package fault

import (
	"fmt"
	"time"
)

// RecoveryError は復旧処理中のエラーを表す
type RecoveryError struct {
	OriginalError error
	Action        string
	AttemptedAt   time.Time
	Attempt       int
}

func (e *RecoveryError) Error() string {
	return fmt.Sprintf("recovery %q failed at attempt %d (%v): %v", e.Action, e.Attempt, e.AttemptedAt.Format(time.RFC3339), e.OriginalError)
}

// Unwrap は元のエラーを返す
func (e *RecoveryError) Unwrap() error {
	return e.OriginalError
}

// NewRecoveryError は新しいRecoveryErrorを作成する
func NewRecoveryError(err error, action string, attempt int, at time.Time) *RecoveryError {
	return &RecoveryError{
		OriginalError: err,
		Action:        action,
		AttemptedAt:   at,
		Attempt:       attempt,
	}
}
