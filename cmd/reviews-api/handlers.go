package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/reviewpilot/reviews-engine/internal/answer"
	"github.com/reviewpilot/reviews-engine/internal/observability"
)

// ChatHandler handles question-answering requests.
type ChatHandler struct {
	logger *observability.Logger
	engine *answer.Router
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(logger *observability.Logger, engine *answer.Router) *ChatHandler {
	return &ChatHandler{logger: logger, engine: engine}
}

// AskRequestDTO represents the API request for a question.
type AskRequestDTO struct {
	Question string `json:"question"`
}

// ContextDocDTO represents one retrieved passage supporting the answer.
type ContextDocDTO struct {
	Content string            `json:"content"`
	Score   float64           `json:"score"`
	Source  string            `json:"source,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Ask handles POST /api/v1/chat/ask. The reply is a server-sent event
// stream: a single "context" event carrying the retrieved passages (when
// the qualitative path ran), followed by "token" events as the oracle
// generates, terminated by a "done" event.
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO AskRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if reqDTO.Question == "" {
		h.writeError(w, http.StatusBadRequest, "question is required", "")
		return
	}

	ans, err := h.engine.Ask(ctx, nil, reqDTO.Question)
	if err != nil {
		var classErr *answer.ClassificationError
		if errors.As(err, &classErr) {
			h.logger.Warn().Str("reply", classErr.Reply).Msg("Question could not be classified")
			h.writeError(w, http.StatusUnprocessableEntity, "question could not be classified", classErr.Reply)
			return
		}
		h.logger.Error().Err(err).Msg("Ask failed")
		h.writeError(w, http.StatusInternalServerError, "ask failed", err.Error())
		return
	}
	defer ans.Stream.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if len(ans.Context) > 0 {
		docs := make([]ContextDocDTO, 0, len(ans.Context))
		for _, doc := range ans.Context {
			docs = append(docs, ContextDocDTO{
				Content: doc.Content,
				Score:   doc.Score,
				Source:  doc.Metadata["source"],
				Fields:  doc.Metadata,
			})
		}
		h.writeEvent(w, "context", docs)
		flusher.Flush()
	}

	for {
		frag, err := ans.Stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.logger.Warn().Err(err).Msg("Answer stream interrupted")
			h.writeEvent(w, "error", map[string]string{"message": "stream interrupted"})
			flusher.Flush()
			return
		}
		h.writeEvent(w, "token", map[string]string{"content": frag})
		flusher.Flush()
	}

	h.writeEvent(w, "done", map[string]string{})
	flusher.Flush()
}

func (h *ChatHandler) writeEvent(w http.ResponseWriter, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("Failed to encode event payload")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func (h *ChatHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
