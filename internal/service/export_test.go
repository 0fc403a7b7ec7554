package service

import "time"

// SetClock replaces the time source used by tb.
func (tb *TokenBucket) SetClock(now func() time.Time) { tb.now = now }

// Sweep runs one cleanup pass and returns the number of buckets removed.
func (tb *TokenBucket) Sweep() int { return tb.sweep() }

// SetClock replaces the time source used by s.
func (s *TokenIssuer) SetClock(now func() time.Time) { s.now = now }

// SetIDFunc replaces the id generator used by s.
func (s *UserService) SetIDFunc(f func() string) { s.newID = f }
