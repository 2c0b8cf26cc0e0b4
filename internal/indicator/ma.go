package indicator

// Rolling keeps the last size samples in a ring buffer.
type Rolling struct {
	values []float64
	size   int
	next   int
	count  int
}

// NewRolling creates a rolling window. A size below 1 is treated as 1.
func NewRolling(size int) *Rolling {
	if size < 1 {
		size = 1
	}

	return &Rolling{
		values: make([]float64, size),
		size:   size,
		next:   0,
		count:  0,
	}
}

// Add pushes a sample, evicting the oldest one once the window is full.
func (r *Rolling) Add(v float64) {
	r.values[r.next] = v
	r.next = (r.next + 1) % r.size

	if r.count < r.size {
		r.count++
	}
}

// Len is the number of samples held.
func (r *Rolling) Len() int {
	return r.count
}

func (r *Rolling) Size() int {
	return r.size
}

// Full reports whether the window holds size samples.
func (r *Rolling) Full() bool {
	return r.count == r.size
}

func (r *Rolling) Ready() bool {
	return r.count > 0
}

// Mean is the average of the held samples, zero when empty.
// The sum is recomputed oldest first so the result does not depend on eviction history.
func (r *Rolling) Mean() float64 {
	if r.count == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range r.Values() {
		sum += v
	}

	return sum / float64(r.count)
}

// Values returns a copy of the samples, oldest first.
func (r *Rolling) Values() []float64 {
	out := make([]float64, 0, r.count)
	start := (r.next - r.count + r.size) % r.size

	for i := 0; i < r.count; i++ {
		out = append(out, r.values[(start+i)%r.size])
	}

	return out
}

// Last returns the most recent sample.
func (r *Rolling) Last() (float64, bool) {
	if r.count == 0 {
		return 0, false
	}

	return r.values[(r.next-1+r.size)%r.size], true
}

func (r *Rolling) Reset() {
	r.next = 0
	r.count = 0
}

// SMA is a simple moving average over the last period closes.
type SMA struct {
	window *Rolling
}

func NewSMA(period int) *SMA {
	return &SMA{window: NewRolling(period)}
}

// Update adds a close and returns the average. ok is false until the window is full.
func (s *SMA) Update(close float64) (value float64, ok bool) {
	s.window.Add(close)
	if !s.window.Full() {
		return 0, false
	}

	return s.window.Mean(), true
}

// Previous returns the close before the latest one, if the window holds two.
func (s *SMA) Previous() (float64, bool) {
	values := s.window.Values()
	if len(values) < 2 {
		return 0, false
	}

	return values[len(values)-2], true
}

func (s *SMA) Ready() bool {
	return s.window.Full()
}

func (s *SMA) Reset() {
	s.window.Reset()
}
