// content パッケージは保存されるコンテンツの形式タグと封筒(エンベロープ)を定義します。
package content

import (
	"encoding/json"
	"time"
)

// FormatTag はコンテンツの形式を表す分類ラベル
type FormatTag string

const (
	FormatJSON     FormatTag = "json"
	FormatHTML     FormatTag = "html"
	FormatMarkdown FormatTag = "markdown"
	FormatUnknown  FormatTag = "unknown"
)

// SchemaVersion は現在の保存形式のバージョン
const SchemaVersion = 1

// Valid は既知のタグかどうかを返す
func (t FormatTag) Valid() bool {
	switch t {
	case FormatJSON, FormatHTML, FormatMarkdown, FormatUnknown:
		return true
	}
	return false
}

// StoredContent は永続化される際のエンベロープ
type StoredContent struct {
	Format        FormatTag `json:"formatTag"`
	Payload       any       `json:"payload"`
	SchemaVersion int       `json:"schemaVersion"`
	SavedAt       int64     `json:"savedAtTimestamp"` // unixミリ秒
}

// New は新しいエンベロープを作成する
func New(format FormatTag, payload any, savedAt time.Time) StoredContent {
	return StoredContent{
		Format:        format,
		Payload:       payload,
		SchemaVersion: SchemaVersion,
		SavedAt:       savedAt.UnixMilli(),
	}
}

// SavedTime は保存時刻を time.Time で返す
func (s StoredContent) SavedTime() time.Time {
	return time.UnixMilli(s.SavedAt)
}

// Marshal はエンベロープをJSONに変換する
func (s StoredContent) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// FromMap はJSONデコード済みの map がエンベロープの形をしていれば変換する
func FromMap(m map[string]any) (StoredContent, bool) {
	rawTag, ok := m["formatTag"].(string)
	if !ok {
		return StoredContent{}, false
	}
	payload, ok := m["payload"]
	if !ok {
		return StoredContent{}, false
	}
	s := StoredContent{
		Format:  FormatTag(rawTag),
		Payload: payload,
	}
	if v, ok := m["schemaVersion"].(float64); ok {
		s.SchemaVersion = int(v)
	}
	if v, ok := m["savedAtTimestamp"].(float64); ok {
		s.SavedAt = int64(v)
	}
	return s, true
}

// Unmarshal はJSONからエンベロープを読み込む。エンベロープの形でなければ false を返す
func Unmarshal(data []byte) (StoredContent, bool) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return StoredContent{}, false
	}
	return FromMap(m)
}
