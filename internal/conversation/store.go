// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Error variables for rejected store operations.
var (
	// ErrEmptyInput indicates the submitted text was empty after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrAlreadyPending indicates a completion is already outstanding.
	ErrAlreadyPending = errors.New("a request is already pending")

	// ErrNoPendingRequest indicates Resolve was called with nothing outstanding.
	ErrNoPendingRequest = errors.New("no pending request")

	// ErrStaleRequest indicates Resolve named a request other than the pending one.
	ErrStaleRequest = errors.New("stale request")

	errUnknownFailure = errors.New("completion failed")
)

// =============================================================================
// STATE AND EVENTS
// =============================================================================

// State is a point-in-time copy of the conversation.
type State struct {
	Messages []Message
	Pending  bool
}

// Len returns the number of messages in the transcript.
func (s State) Len() int {
	return len(s.Messages)
}

// Last returns the most recent message, if any.
func (s State) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// EventKind distinguishes store notifications.
type EventKind int

const (
	EventSubmitted EventKind = iota // user message appended, request pending
	EventResolved                   // bot message appended, request settled
)

// Event describes one mutation of the store.
type Event struct {
	Kind    EventKind
	Message Message
	Request Request
	Outcome Outcome
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the transcript and the pending flag. It is safe for concurrent
// use; the pending request acts as a single-flight guard.
type Store struct {
	mu       sync.RWMutex
	messages []Message
	pending  *Request

	obsMu     sync.RWMutex
	observers []observer
	nextObsID int
}

type observer struct {
	id int
	fn func(Event)
}

// NewStore creates an empty store with no pending request.
func NewStore() *Store {
	return &Store{
		messages: make([]Message, 0),
	}
}

// Submit appends the user's message as typed and marks a request as pending.
// The request carries the trimmed text.
//
// Whitespace-only text is ignored and ErrEmptyInput is returned. While a
// request is outstanding the call is rejected with ErrAlreadyPending. In both
// cases the store is unchanged.
func (s *Store) Submit(text string) (Request, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Request{}, ErrEmptyInput
	}

	s.mu.Lock()
	if s.pending != nil {
		s.mu.Unlock()
		return Request{}, ErrAlreadyPending
	}
	msg := newMessage(SenderUser, text)
	req := Request{
		ID:        uuid.NewString(),
		Input:     trimmed,
		StartedAt: time.Now(),
	}
	s.messages = append(s.messages, msg)
	s.pending = &req
	s.mu.Unlock()

	s.notify(Event{Kind: EventSubmitted, Message: msg, Request: req})
	return req, nil
}

// Resolve settles the pending request and appends exactly one bot message:
// the reply text on success, FailureReply on failure.
func (s *Store) Resolve(requestID string, outcome Outcome) (Message, error) {
	s.mu.Lock()
	if s.pending == nil {
		s.mu.Unlock()
		return Message{}, ErrNoPendingRequest
	}
	if s.pending.ID != requestID {
		s.mu.Unlock()
		return Message{}, ErrStaleRequest
	}
	req := *s.pending
	msg := newMessage(SenderBot, outcome.ReplyText())
	s.messages = append(s.messages, msg)
	s.pending = nil
	s.mu.Unlock()

	s.notify(Event{Kind: EventResolved, Message: msg, Request: req, Outcome: outcome})
	return msg, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return State{Messages: msgs, Pending: s.pending != nil}
}

// Pending reports whether a request is outstanding.
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending != nil
}

// PendingRequest returns the outstanding request, if any.
func (s *Store) PendingRequest() (Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending == nil {
		return Request{}, false
	}
	return *s.pending, true
}

// Len returns the number of messages in the transcript.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers fn to be called after every mutation. Observers run in
// registration order on the goroutine that performed the mutation, after the
// store lock is released.
// The returned function removes the observer.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.obsMu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers = append(s.observers, observer{id: id, fn: fn})
	s.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.obsMu.Lock()
			for i, o := range s.observers {
				if o.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					break
				}
			}
			s.obsMu.Unlock()
		})
	}
}

func (s *Store) notify(ev Event) {
	s.obsMu.RLock()
	fns := make([]func(Event), 0, len(s.observers))
	for _, o := range s.observers {
		fns = append(fns, o.fn)
	}
	s.obsMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
