package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/sitekb/internal/models"
	"github.com/xhad/sitekb/server"
)

type answerFunc func(ctx context.Context, req models.ChatRequest) (string, error)

func (f answerFunc) Answer(ctx context.Context, req models.ChatRequest) (string, error) {
	return f(ctx, req)
}

func echo() answerFunc {
	return func(ctx context.Context, req models.ChatRequest) (string, error) {
		if req.Message == "fail" {
			return "", errors.New("upstream: 401 invalid api key")
		}
		return "you said " + req.Message, nil
	}
}

func newTestServer(t *testing.T, a server.Answerer) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(server.New(a, server.Config{Name: "Example guide"}, nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusRoutes(t *testing.T) {
	srv := newTestServer(t, echo())

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestChat(t *testing.T) {
	var got models.ChatRequest
	srv := newTestServer(t, answerFunc(func(ctx context.Context, req models.ChatRequest) (string, error) {
		got = req
		return "Plans start at $10.", nil
	}))

	body := `{"message":"How much?","history":[{"user":"hi","assistant":"hello"}]}`
	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var out models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Plans start at $10.", out.Reply)
	assert.Equal(t, models.ChatRequest{
		Message: "How much?",
		History: []models.Turn{{User: "hi", Assistant: "hello"}},
	}, got)
}

func TestChatFailureHidesDetails(t *testing.T) {
	srv := newTestServer(t, echo())

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"message":"fail"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, server.ApologyReply, out.Reply)
	assert.NotContains(t, out.Reply, "api key")
}

func TestChatMalformedJSON(t *testing.T) {
	called := false
	srv := newTestServer(t, answerFunc(func(ctx context.Context, req models.ChatRequest) (string, error) {
		called = true
		return "", nil
	}))

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(`{"message":`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, called)
}

func TestChatEmptyBody(t *testing.T) {
	var got *models.ChatRequest
	srv := newTestServer(t, answerFunc(func(ctx context.Context, req models.ChatRequest) (string, error) {
		got = &req
		return "Ask me about the site.", nil
	}))

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", strings.NewReader(""))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "Ask me about the site.", out.Reply)
	require.NotNil(t, got)
	assert.Equal(t, models.ChatRequest{}, *got)
}

func TestChatPreflight(t *testing.T) {
	srv := newTestServer(t, echo())

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/chat", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
}

func TestWebSocketChat(t *testing.T) {
	srv := newTestServer(t, echo())

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	exchange := func(out any) server.Message {
		t.Helper()
		switch v := out.(type) {
		case string:
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(v)))
		default:
			require.NoError(t, conn.WriteJSON(v))
		}
		var in server.Message
		require.NoError(t, conn.ReadJSON(&in))
		return in
	}

	reply := exchange(server.Message{Type: server.MessageChat, Content: "hello"})
	assert.Equal(t, server.Message{Type: server.MessageResponse, Content: "you said hello"}, reply)

	reply = exchange(server.Message{Type: server.MessageChat, Content: "fail"})
	assert.Equal(t, server.Message{Type: server.MessageError, Content: server.ApologyReply}, reply)

	reply = exchange(server.Message{Type: "subscribe"})
	assert.Equal(t, server.MessageError, reply.Type)

	reply = exchange("{not json")
	assert.Equal(t, server.MessageError, reply.Type)

	// The connection is still usable after errors.
	reply = exchange(server.Message{Type: server.MessageChat, Content: "again"})
	assert.Equal(t, "you said again", reply.Content)
}
