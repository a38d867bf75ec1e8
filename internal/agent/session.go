package agent

import (
	"sync"
)

// Session is the agent's record of which employee is signed in on this
// machine. It has a single writer, the local sign-in/sign-out action, and
// is read by the relay handler and the auto-capture loop.
type Session struct {
	mu         sync.RWMutex
	bound      bool
	employeeID int64
	timeLogID  *int64
}

func NewSession() *Session {
	return &Session{}
}

// Bind records the signed-in employee and, when they are clocked in, their
// open time log.
func (s *Session) Bind(employeeID int64, timeLogID *int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = true
	s.employeeID = employeeID
	s.timeLogID = timeLogID
}

// Clear drops the session, on local sign-out or clock-out.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = false
	s.employeeID = 0
	s.timeLogID = nil
}

// Current returns the signed-in employee id, or false when nobody is
// signed in.
func (s *Session) Current() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employeeID, s.bound
}

// TimeLogID returns the bound open time log id, or nil.
func (s *Session) TimeLogID() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.timeLogID == nil {
		return nil
	}
	id := *s.timeLogID
	return &id
}
