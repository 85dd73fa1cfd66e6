package httpapi

import "sync"

// SessionHeader carries the client session whose searches are sequenced.
const SessionHeader = "X-Session-ID"

// Sequencer hands out monotonic tokens per session so that only the newest
// search of a session is treated as current. Only sessions with a search in
// flight are tracked.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
}

// Token identifies one search within a session.
type Token struct {
	session string
	seq     uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Begin issues the next token for session. Requests without a session are
// never superseded.
func (s *Sequencer) Begin(session string) Token {
	if session == "" {
		return Token{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// sequence numbers are global so a forgotten session never reuses one
	s.next++
	s.latest[session] = s.next
	return Token{session: session, seq: s.next}
}

// Current reports whether t is still the newest token of its session.
func (s *Sequencer) Current(t Token) bool {
	if t.session == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[t.session] == t.seq
}

// Done releases t. The session is forgotten once its newest search is done.
func (s *Sequencer) Done(t Token) {
	if t.session == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest[t.session] == t.seq {
		delete(s.latest, t.session)
	}
}

// Len is the number of sessions with a search in flight.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.latest)
}
