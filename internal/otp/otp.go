/*
Package otp - In-Process OTP Store

==============================================================================
FILE: internal/otp/otp.go
==============================================================================

DESCRIPTION:
    A minimal, process-local OTP store: a map keyed by employeeCode,
    entries carrying a value, an expiry, and an attempt counter. Issuance
    and SMS delivery live in the HTTP layer (out of this module's scope);
    this package only holds and checks the value. A replicated deployment
    must externalize this store - it is documented here, not relied on by
    the payroll core, which never imports this package.

DEVELOPER GUIDELINES:
    OK to modify: expiry duration, max attempts
    CAUTION: this store is single-process - do not add any cross-process
    assumption here (no shared cache, no DB-backed persistence).

==============================================================================
*/
package otp

import (
	"sync"
	"time"
)

const (
	defaultExpiry   = 5 * time.Minute
	defaultMaxTries = 3
)

type entry struct {
	value    string
	expires  time.Time
	attempts int
}

// Store is a process-wide, lazily-populated OTP map. The zero value is
// ready to use.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

var (
	defaultStore     *Store
	defaultStoreOnce sync.Once
)

// Default returns the process-wide lazily-initialized store.
func Default() *Store {
	defaultStoreOnce.Do(func() {
		defaultStore = &Store{}
	})
	return defaultStore
}

func (s *Store) init() {
	if s.entries == nil {
		s.entries = make(map[string]*entry)
	}
}

// Issue stores a fresh OTP value for employeeCode, resetting its attempt
// counter and expiry, valid for the given now + 5 minutes.
func (s *Store) Issue(employeeCode, value string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	s.entries[employeeCode] = &entry{
		value:   value,
		expires: now.Add(defaultExpiry),
	}
}

// Verify checks candidate against the stored OTP for employeeCode. Each
// call counts as an attempt whether or not it matches; once the attempt
// cap is exhausted, or the entry has expired, the entry is removed and
// every subsequent call fails until a new OTP is issued.
func (s *Store) Verify(employeeCode, candidate string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()

	e, ok := s.entries[employeeCode]
	if !ok {
		return false
	}
	if now.After(e.expires) {
		delete(s.entries, employeeCode)
		return false
	}

	e.attempts++
	matched := e.value == candidate
	if matched || e.attempts >= defaultMaxTries {
		delete(s.entries, employeeCode)
	}
	return matched
}

// Clear removes any pending OTP for employeeCode, e.g. after a successful
// out-of-band verification elsewhere.
func (s *Store) Clear(employeeCode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	delete(s.entries, employeeCode)
}
