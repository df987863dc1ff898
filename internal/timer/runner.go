package timer

import "sync"

// Runner executes side-effect jobs off the tick path.
type Runner interface {
	Go(job func())
}

// Inline runs each job immediately on the caller's goroutine.
type Inline struct{}

func (Inline) Go(job func()) { job() }

// Serial runs jobs one at a time on a background goroutine, in submission
// order, so an unblock can never overtake the block it undoes.
type Serial struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	running bool
}

func NewSerial() *Serial {
	s := &Serial{}
	s.idle = sync.NewCond(&s.mu)
	return s
}

func (s *Serial) Go(job func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = append(s.queue, job)
	if !s.running {
		s.running = true
		go s.drain()
	}
}

// Wait blocks until every submitted job has finished.
func (s *Serial) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

func (s *Serial) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		job()
	}
}
