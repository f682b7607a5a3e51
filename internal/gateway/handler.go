package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"simplesqs.client/pkg/sqsclient"
)

// Sender is the slice of the queue client the handler needs.
type Sender interface {
	SendMessage(ctx context.Context, body string) (string, error)
}

// MessageHandler accepts payloads over HTTP and forwards them to the queue.
type MessageHandler struct {
	Sender Sender
}

type publishRequest struct {
	Body string `json:"body"`
}

type publishResponse struct {
	MessageID string `json:"messageId"`
}

// Publish forwards the request body to the queue and answers with the
// message id the service assigned.
func (h *MessageHandler) Publish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Body == "" {
		http.Error(w, "Message body is required", http.StatusBadRequest)
		return
	}

	id, err := h.Sender.SendMessage(r.Context(), req.Body)
	if err != nil {
		var transportErr *sqsclient.TransportError
		switch {
		case errors.Is(err, sqsclient.ErrNotConnected):
			http.Error(w, "Queue client is not available", http.StatusServiceUnavailable)
		case errors.As(err, &transportErr):
			http.Error(w, "Queue service error", http.StatusBadGateway)
		default:
			http.Error(w, "Error publishing message", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(publishResponse{MessageID: id})
}
