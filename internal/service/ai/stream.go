package ai

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// DeltaEvent is one meaningful item decoded from the provider's event stream:
// either an incremental text token or the terminal sentinel.
type DeltaEvent struct {
	Token string
	Done  bool
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamScanner incrementally decodes the newline-delimited `data:` frames of
// a streamed completion. It only depends on an io.Reader, so it can be tested
// against canned byte sequences independent of any socket.
type StreamScanner struct {
	sc *bufio.Scanner
}

// NewStreamScanner wraps a provider event stream.
func NewStreamScanner(r io.Reader) *StreamScanner {
	sc := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, 1024*1024)
	return &StreamScanner{sc: sc}
}

// Next returns the next delta or terminal event. Blank lines, non-data lines,
// malformed frames, and empty deltas are skipped without aborting the stream.
// io.EOF is returned when the underlying stream ends without a sentinel.
func (s *StreamScanner) Next() (DeltaEvent, error) {
	for s.sc.Scan() {
		line := strings.TrimSpace(s.sc.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}

		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			return DeltaEvent{Done: true}, nil
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Best-effort parsing: a single malformed frame never kills the stream.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if token := chunk.Choices[0].Delta.Content; token != "" {
			return DeltaEvent{Token: token}, nil
		}
	}

	if err := s.sc.Err(); err != nil {
		return DeltaEvent{}, err
	}
	return DeltaEvent{}, io.EOF
}
