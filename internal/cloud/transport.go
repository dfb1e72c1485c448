// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// headerTransport adds OpenRouter attribution headers to every request.
// Authorization and Content-Type are set by go-openai itself.
type headerTransport struct {
	base      http.RoundTripper
	siteURL   string
	siteName  string
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.siteName != "" {
		req.Header.Set("X-Title", t.siteName)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	if shape, ok := req.Context().Value(replyShapeKey{}).(*replyShape); ok {
		if err := shape.inspect(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

type replyShapeKey struct{}

// replyShape records whether the first choice of a 2xx reply carried a
// message with a content field. go-openai decodes a null or missing
// content as "", which would otherwise be indistinguishable from an
// empty answer.
type replyShape struct {
	inspected  bool
	hasContent bool
}

func withReplyShape(ctx context.Context, shape *replyShape) context.Context {
	return context.WithValue(ctx, replyShapeKey{}, shape)
}

// inspect reads and restores resp.Body. Bodies that do not decode are left
// for go-openai to reject.
func (s *replyShape) inspect(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || resp.Body == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	var payload struct {
		Choices []struct {
			Message *struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if json.Unmarshal(body, &payload) != nil || len(payload.Choices) == 0 {
		return nil
	}
	first := payload.Choices[0]
	s.inspected = true
	s.hasContent = first.Message != nil && first.Message.Content != nil
	return nil
}
