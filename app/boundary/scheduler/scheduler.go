// scheduler パッケージは監視タイマーとデバウンスのための時刻・タイマー抽象を提供します。
// すべてのコールバックは1本の論理スレッド上で順番に実行されることを前提とします。
package scheduler

import "time"

// Timer は予約済みのコールバック
type Timer interface {
	// Stop は予約を取り消す。まだ実行待ちだった場合 true を返す
	// 取り消し後、すでにキューに積まれていたコールバックも実行されない
	Stop() bool
}

// Scheduler はタイマーの予約と現在時刻を提供する
type Scheduler interface {
	// AfterFunc は d 経過後に fn を1回実行する
	AfterFunc(d time.Duration, fn func()) Timer
	// Every は d ごとに fn を繰り返し実行する
	Every(d time.Duration, fn func()) Timer
	// Now は現在時刻を返す
	Now() time.Time
}

// FrameDelay は次の描画フレームまでの待ち時間
const FrameDelay = 16 * time.Millisecond
