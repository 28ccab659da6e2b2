// health パッケージは編集面の健全性状態と診断結果を定義します。
package health

// State は健全性の状態を表す。値の大小が重大度の順序になる
type State int

const (
	Healthy State = iota
	Warning
	Error
	Destroyed
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Raise は重大度が高い方の状態を返す。1回の評価の中で状態を下げないために使う
func (s State) Raise(next State) State {
	if next > s {
		return next
	}
	return s
}

// IssueKind は検出された問題の種類。復元処理の分岐キーになる
type IssueKind int

const (
	IssueSurfaceMissing IssueKind = iota + 1
	IssueSurfaceDestroyed
	IssueViewMissing
	IssueViewDetached
	IssueStateMissing
	IssueCommandsMissing
	IssueDocumentUnreadable
	IssueMemoryLeak
)

func (k IssueKind) String() string {
	switch k {
	case IssueSurfaceMissing:
		return "surface_missing"
	case IssueSurfaceDestroyed:
		return "surface_destroyed"
	case IssueViewMissing:
		return "view_missing"
	case IssueViewDetached:
		return "view_detached"
	case IssueStateMissing:
		return "state_missing"
	case IssueCommandsMissing:
		return "commands_missing"
	case IssueDocumentUnreadable:
		return "document_unreadable"
	case IssueMemoryLeak:
		return "memory_leak"
	default:
		return "unknown"
	}
}

// Issue は1件の問題。Description は表示用で制御には使わない
type Issue struct {
	Kind        IssueKind
	Description string
}

// Record は1回の診断結果
type Record struct {
	State       State
	Issues      []Issue
	Suggestions []string
	Recoverable bool
}

// NewRecord は健全な状態の診断結果を作成する
func NewRecord() Record {
	return Record{
		State:       Healthy,
		Issues:      make([]Issue, 0),
		Suggestions: make([]string, 0),
		Recoverable: true,
	}
}

// Add は問題を追加し、状態を必要に応じて引き上げる
func (r *Record) Add(severity State, kind IssueKind, description, suggestion string) {
	r.State = r.State.Raise(severity)
	r.Issues = append(r.Issues, Issue{Kind: kind, Description: description})
	if suggestion != "" {
		r.Suggestions = append(r.Suggestions, suggestion)
	}
}

// Has は指定の種類の問題を含むかどうかを返す
func (r Record) Has(kind IssueKind) bool {
	for _, issue := range r.Issues {
		if issue.Kind == kind {
			return true
		}
	}
	return false
}

// Messages は問題の説明文を順に返す
func (r Record) Messages() []string {
	out := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		out = append(out, issue.Description)
	}
	return out
}
