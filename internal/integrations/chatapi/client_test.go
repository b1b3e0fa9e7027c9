package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"faq-agent/internal/domain"
)

type staticGetter struct {
	token string
	err   error
	calls int
}

func (g *staticGetter) GetParameter(_ context.Context, _ string) (string, error) {
	g.calls++
	return g.token, g.err
}

type capturedRequest struct {
	path string
	auth string
	body map[string]any
}

func newTestServer(t *testing.T, status int, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		if len(raw) > 0 {
			require.NoError(t, json.Unmarshal(raw, &body))
		}
		*captured = append(*captured, capturedRequest{
			path: r.URL.Path,
			auth: r.Header.Get("Authorization"),
			body: body,
		})
		w.WriteHeader(status)
	}))
}

func TestNewClient_Validates(t *testing.T) {
	_, err := NewClient("http://x", nil, "/faq")
	require.Error(t, err)

	_, err = NewClient("  ", &staticGetter{token: "tok"}, "/faq")
	require.Error(t, err)

	_, err = NewClient("http://x", &staticGetter{token: "tok"}, "  ")
	require.Error(t, err)
}

func TestReply_SendsTokenAndBody(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusOK, &captured)
	defer srv.Close()

	c, err := NewClient(srv.URL, &staticGetter{token: "tok-1"}, "/faq")
	require.NoError(t, err)

	err = c.Reply(context.Background(), "int-9", domain.Message{Content: "hello", Ephemeral: true})
	require.NoError(t, err)
	require.Len(t, captured, 1)
	require.Equal(t, "/interactions/int-9/reply", captured[0].path)
	require.Equal(t, "Bearer tok-1", captured[0].auth)
	require.Equal(t, "hello", captured[0].body["content"])
	require.Equal(t, true, captured[0].body["ephemeral"])
}

func TestEndpoints(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusOK, &captured)
	defer srv.Close()

	c, err := NewClient(srv.URL, &staticGetter{token: "tok"}, "/faq")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.FollowUp(ctx, "int-1", domain.Message{Content: "x"}))
	require.NoError(t, c.Update(ctx, "int-1", domain.Message{Content: "x"}))
	require.NoError(t, c.OpenModal(ctx, "int-1", domain.Modal{CustomID: "m", Title: "t"}))
	require.NoError(t, c.SendChannel(ctx, "chan-1", domain.Message{Content: "x"}))
	require.NoError(t, c.SendDirect(ctx, "user-1", "psst"))

	paths := make([]string, 0, len(captured))
	for _, req := range captured {
		paths = append(paths, req.path)
	}
	require.Equal(t, []string{
		"/interactions/int-1/followup",
		"/interactions/int-1/update",
		"/interactions/int-1/modal",
		"/channels/chan-1/messages",
		"/users/user-1/messages",
	}, paths)
}

func TestPost_NonSuccessStatus(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusForbidden, &captured)
	defer srv.Close()

	c, err := NewClient(srv.URL, &staticGetter{token: "tok"}, "/faq")
	require.NoError(t, err)

	err = c.SendDirect(context.Background(), "user-1", "psst")
	require.Error(t, err)

	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode)
}

func TestResolveToken_CachedAcrossCalls(t *testing.T) {
	var captured []capturedRequest
	srv := newTestServer(t, http.StatusOK, &captured)
	defer srv.Close()

	getter := &staticGetter{token: "tok"}
	c, err := NewClient(srv.URL, getter, "/faq")
	require.NoError(t, err)

	require.NoError(t, c.SendDirect(context.Background(), "u", "a"))
	require.NoError(t, c.SendDirect(context.Background(), "u", "b"))
	require.Equal(t, 1, getter.calls)
}

func TestResolveToken_Error(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:0", &staticGetter{err: errors.New("ssm down")}, "/faq")
	require.NoError(t, err)

	err = c.SendDirect(context.Background(), "u", "a")
	require.Error(t, err)
	require.Contains(t, err.Error(), "resolve token")
}

func TestReply_EmptyInteractionID(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:0", &staticGetter{token: "tok"}, "/faq")
	require.NoError(t, err)

	require.Error(t, c.Reply(context.Background(), " ", domain.Message{Content: "x"}))
}
