// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"log/slog"
)

// Completer turns one user input into one reply. Implementations make a
// single best-effort call with no retries.
type Completer interface {
	Complete(ctx context.Context, input string) (string, error)
}

// CompleterFunc adapts a plain function to the Completer interface.
type CompleterFunc func(ctx context.Context, input string) (string, error)

// Complete calls f(ctx, input).
func (f CompleterFunc) Complete(ctx context.Context, input string) (string, error) {
	return f(ctx, input)
}

// Controller drives the submit/complete/resolve cycle against a Store.
type Controller struct {
	store     *Store
	completer Completer
	log       *slog.Logger
}

// NewController creates a controller. A nil logger discards log output.
func NewController(store *Store, completer Completer, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{store: store, completer: completer, log: log}
}

// Store returns the underlying store.
func (c *Controller) Store() *Store {
	return c.store
}

// WithCompleter returns a controller on the same store and logger that uses
// completer for later requests. Requests already started keep the old one.
func (c *Controller) WithCompleter(completer Completer) *Controller {
	return &Controller{store: c.store, completer: completer, log: c.log}
}

// Send runs one full turn synchronously: the user message is appended, the
// completer is called once and its outcome is folded back into the store.
// It returns the bot message. ErrEmptyInput and ErrAlreadyPending are
// returned unchanged and leave the store untouched.
func (c *Controller) Send(ctx context.Context, text string) (Message, error) {
	req, err := c.store.Submit(text)
	if err != nil {
		return Message{}, err
	}
	outcome := c.Complete(ctx, req)
	return c.store.Resolve(req.ID, outcome)
}

// Complete calls the completer for a started request and converts every
// result, including a panic, into an Outcome. It does not touch the store,
// so callers that own the mutation loop (the TUI) can resolve on their own
// goroutine.
func (c *Controller) Complete(ctx context.Context, req Request) (outcome Outcome) {
	log := c.log.With("request_id", req.ID)
	log.Info("completion started", "input_len", len(req.Input))

	defer func() {
		if r := recover(); r != nil {
			outcome = Failure(fmt.Errorf("completion panicked: %v", r))
		}
		if outcome.OK() {
			log.Info("completion finished",
				"latency", req.Elapsed(),
				"reply_len", len(outcome.ReplyText()))
		} else {
			log.Error("completion failed",
				"latency", req.Elapsed(),
				"error", outcome.Err())
		}
	}()

	if c.completer == nil {
		return Failure(fmt.Errorf("no completer configured"))
	}
	text, err := c.completer.Complete(ctx, req.Input)
	if err != nil {
		return Failure(err)
	}
	return Success(text)
}
