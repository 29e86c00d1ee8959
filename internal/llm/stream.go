package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Stream is a lazy, finite, single-pass sequence of text fragments. Recv
// blocks for the next fragment and returns io.EOF when the sequence ends.
// Close may be called at any time to abandon the stream; unread fragments
// are discarded and the underlying request is released.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// sseStream parses a server-sent-event response body fragment by fragment.
// Parsing is pull-driven: no bytes are read until the consumer asks.
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  func()
	done    bool
}

func newSSEStream(body io.ReadCloser, cancel func()) *sseStream {
	return &sseStream{
		body:    body,
		scanner: bufio.NewScanner(body),
		cancel:  cancel,
	}
}

// Recv returns the next non-empty content fragment.
func (s *sseStream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")

		if data == "[DONE]" {
			return "", s.finish(nil)
		}

		var resp Response
		if err := json.Unmarshal([]byte(data), &resp); err != nil {
			// Skip malformed keep-alive or partial lines.
			continue
		}

		if len(resp.Choices) == 0 {
			continue
		}
		choice := resp.Choices[0]

		if choice.Delta.Content != "" {
			return choice.Delta.Content, nil
		}
		if choice.FinishReason != "" {
			return "", s.finish(nil)
		}
	}

	if err := s.scanner.Err(); err != nil {
		return "", s.finish(err)
	}
	return "", s.finish(nil)
}

// finish tears the stream down and reports err, or io.EOF on clean end.
func (s *sseStream) finish(err error) error {
	_ = s.Close()
	if err != nil {
		return err
	}
	return io.EOF
}

// Close releases the response body and cancels the request context.
// Safe to call more than once.
func (s *sseStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.cancel != nil {
		s.cancel()
	}
	return s.body.Close()
}

// TextStream returns a Stream over fixed fragments. Used by tests and for
// canned replies that bypass the oracle.
func TextStream(fragments ...string) Stream {
	return &sliceStream{fragments: fragments}
}

type sliceStream struct {
	fragments []string
	pos       int
	closed    bool
}

func (s *sliceStream) Recv() (string, error) {
	if s.closed || s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	f := s.fragments[s.pos]
	s.pos++
	return f, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

// Collect drains a stream and returns the concatenated text. The stream is
// closed before returning.
func Collect(s Stream) (string, error) {
	var b strings.Builder
	defer s.Close()
	for {
		frag, err := s.Recv()
		if err == io.EOF {
			return b.String(), nil
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteString(frag)
	}
}
