package perf

// Ring は固定容量のリングバッファ。容量を超えると最も古いサンプルから捨てる
type Ring struct {
	buf   []Sample
	start int
	size  int
}

// NewRing は容量 capacity のリングバッファを作成する
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]Sample, capacity)}
}

// Push はサンプルを追加する
func (r *Ring) Push(s Sample) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = s
		r.size++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % len(r.buf)
}

// Len は保持しているサンプル数を返す
func (r *Ring) Len() int {
	return r.size
}

// Cap は容量を返す
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Samples は古い順のサンプルのコピーを返す
func (r *Ring) Samples() []Sample {
	out := make([]Sample, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Last は直近 n 件を古い順に返す
func (r *Ring) Last(n int) []Sample {
	all := r.Samples()
	if n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Latest は最新のサンプルを返す
func (r *Ring) Latest() (Sample, bool) {
	if r.size == 0 {
		return Sample{}, false
	}
	return r.buf[(r.start+r.size-1)%len(r.buf)], true
}

// Average は各フィールドの算術平均を返す。空の場合はゼロ値
func (r *Ring) Average() Sample {
	if r.size == 0 {
		return Sample{}
	}
	var avg Sample
	var dom, length int
	for _, s := range r.Samples() {
		avg.RenderTimeMs += s.RenderTimeMs
		avg.UpdateTimeMs += s.UpdateTimeMs
		avg.MemoryMB += s.MemoryMB
		dom += s.DOMNodeCount
		length += s.ContentLength
	}
	n := float64(r.size)
	avg.RenderTimeMs /= n
	avg.UpdateTimeMs /= n
	avg.MemoryMB /= n
	avg.DOMNodeCount = int(float64(dom) / n)
	avg.ContentLength = int(float64(length) / n)
	if latest, ok := r.Latest(); ok {
		avg.CapturedAt = latest.CapturedAt
	}
	return avg
}

// Reset はすべてのサンプルを破棄する
func (r *Ring) Reset() {
	r.start = 0
	r.size = 0
}
