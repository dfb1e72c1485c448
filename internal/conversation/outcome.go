// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// Placeholder replies shown in place of an absent or failed model response.
const (
	// FailureReply is appended for every failed completion, whatever the cause.
	FailureReply = "⚠️ Sorry, something went wrong."

	// NoChoicesReply is returned by the completion client when the endpoint
	// answers with an empty choices list. It is a successful reply.
	NoChoicesReply = "⚠️ No response from model."
)

// Outcome is the settled result of one completion request.
type Outcome struct {
	text string
	err  error
}

// Success builds an outcome carrying the model's reply.
func Success(text string) Outcome {
	return Outcome{text: text}
}

// Failure builds an outcome for a failed completion. The cause is kept for
// operator logs and never shown in the transcript.
func Failure(err error) Outcome {
	if err == nil {
		err = errUnknownFailure
	}
	return Outcome{err: err}
}

// OK reports whether the outcome is a success.
func (o Outcome) OK() bool {
	return o.err == nil
}

// Err returns the failure cause, or nil on success.
func (o Outcome) Err() error {
	return o.err
}

// ReplyText returns the text the bot message will carry.
func (o Outcome) ReplyText() string {
	if o.err != nil {
		return FailureReply
	}
	return o.text
}
