// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation holds the chat transcript and the single in-flight
// completion request.
//
// The Store is the only place the transcript is mutated. It exposes two
// state-changing operations:
//
//   - Submit appends the user's message and marks a request as pending
//   - Resolve clears the pending request and appends exactly one bot message
//
// At most one request is outstanding at a time; a second Submit while one is
// pending is rejected with ErrAlreadyPending.
//
// # Key Types
//
//   - Message: immutable transcript entry (sender + text)
//   - Store: mutex-guarded transcript with change notifications
//   - Outcome: result of a completion, either Success or Failure
//   - Controller: binds a Store to a Completer and guarantees that every
//     started request is resolved exactly once
//
// # Usage
//
//	store := conversation.NewStore()
//	ctrl := conversation.NewController(store, client, logger)
//	reply, err := ctrl.Send(ctx, "What is CI/CD?")
package conversation
