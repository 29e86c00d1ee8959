package answer

import (
	"context"
	"fmt"

	"github.com/reviewpilot/reviews-engine/internal/llm"
)

// oracleCall records one request made to the stub oracle.
type oracleCall struct {
	system string
	user   string
}

// stubOracle replays canned completions and streams in call order.
type stubOracle struct {
	completions   []string
	completeErr   error
	streams       [][]string
	streamErr     error
	completeCalls []oracleCall
	streamCalls   []oracleCall
}

func (s *stubOracle) Complete(ctx context.Context, system, user string) (string, error) {
	s.completeCalls = append(s.completeCalls, oracleCall{system: system, user: user})
	if s.completeErr != nil {
		return "", s.completeErr
	}
	if len(s.completions) == 0 {
		return "", fmt.Errorf("stub oracle: no completion queued")
	}
	reply := s.completions[0]
	s.completions = s.completions[1:]
	return reply, nil
}

func (s *stubOracle) CompleteStream(ctx context.Context, system, user string) (llm.Stream, error) {
	s.streamCalls = append(s.streamCalls, oracleCall{system: system, user: user})
	if s.streamErr != nil {
		return nil, s.streamErr
	}
	if len(s.streams) == 0 {
		return llm.TextStream(), nil
	}
	fragments := s.streams[0]
	s.streams = s.streams[1:]
	return llm.TextStream(fragments...), nil
}

var _ Oracle = (*stubOracle)(nil)
