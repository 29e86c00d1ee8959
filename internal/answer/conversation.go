package answer

import (
	"io"
	"strings"
	"sync"

	"github.com/reviewpilot/reviews-engine/internal/llm"
)

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Conversation is the explicit per-session chat state. The caller owns its
// lifecycle and passes it into the router per turn; the engine never holds
// ambient session state.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Messages returns a copy of the recorded turns.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) add(role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, Message{Role: role, Content: content})
}

// recordStream wraps an answer stream so consumed fragments accumulate and
// the full text is committed to the conversation once the stream finishes.
// Early abandonment commits whatever was consumed.
func (c *Conversation) recordStream(inner llm.Stream) llm.Stream {
	return &recordingStream{inner: inner, conv: c}
}

type recordingStream struct {
	inner     llm.Stream
	conv      *Conversation
	buf       strings.Builder
	committed bool
}

func (s *recordingStream) Recv() (string, error) {
	frag, err := s.inner.Recv()
	if err == nil {
		s.buf.WriteString(frag)
		return frag, nil
	}
	if err == io.EOF {
		s.commit()
	}
	return frag, err
}

func (s *recordingStream) Close() error {
	s.commit()
	return s.inner.Close()
}

func (s *recordingStream) commit() {
	if s.committed {
		return
	}
	s.committed = true
	s.conv.add("assistant", s.buf.String())
}
