package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"simplesqs.client/pkg/sqsclient"
)

type fakeSender struct {
	messageID string
	err       error
	lastBody  string
}

func (f *fakeSender) SendMessage(ctx context.Context, body string) (string, error) {
	f.lastBody = body
	if f.err != nil {
		return "", f.err
	}
	return f.messageID, nil
}

func postMessage(t *testing.T, h *MessageHandler, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	h.Publish(rec, req)
	return rec
}

func TestPublishReturnsMessageID(t *testing.T) {
	sender := &fakeSender{messageID: "abc-123"}
	h := &MessageHandler{Sender: sender}

	rec := postMessage(t, h, `{"body":"{\"message\":\"hello world\"}"}`)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, `{"message":"hello world"}`, sender.lastBody)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "abc-123", resp["messageId"])
}

func TestPublishRejectsInvalidJSON(t *testing.T) {
	h := &MessageHandler{Sender: &fakeSender{}}

	rec := postMessage(t, h, `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishRejectsEmptyBody(t *testing.T) {
	h := &MessageHandler{Sender: &fakeSender{}}

	rec := postMessage(t, h, `{"body":""}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublishMapsTransportErrorToBadGateway(t *testing.T) {
	sender := &fakeSender{err: &sqsclient.TransportError{Op: "send message", Err: errors.New("timeout")}}
	h := &MessageHandler{Sender: sender}

	rec := postMessage(t, h, `{"body":"hello"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPublishMapsClosedClientToServiceUnavailable(t *testing.T) {
	sender := &fakeSender{err: sqsclient.ErrNotConnected}
	h := &MessageHandler{Sender: sender}

	rec := postMessage(t, h, `{"body":"hello"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouterRoutes(t *testing.T) {
	h := &MessageHandler{Sender: &fakeSender{messageID: "abc"}}
	router := NewRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/messages", strings.NewReader(`{"body":"hi"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
