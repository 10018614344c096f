package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/lydakis/cmdconsole/internal/api/apitest"
	"github.com/lydakis/cmdconsole/internal/command"
	"github.com/lydakis/cmdconsole/internal/config"
	"github.com/lydakis/cmdconsole/internal/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFake(t *testing.T) (*apitest.Server, config.Connection) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return srv, config.Connection{
		BaseURL:    srv.URL + "/",
		AuthMode:   config.AuthOff,
		HeaderName: "X-API-Key",
	}
}

func TestExecuteCommandPostsJSONBody(t *testing.T) {
	srv, conn := newFake(t)
	c := New()

	body := command.Compose(command.Direct{RequestedBy: "ops", Action: "assign_task", Payload: `{"asset_id":"a-1"}`})
	res, err := c.ExecuteCommand(context.Background(), conn, body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.OK())
	assert.Equal(t, map[string]any{"result": "ok"}, res.Body)
	assert.NotEmpty(t, res.RequestID)

	reqs := srv.RequestsTo("/commands")
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, res.RequestID, reqs[0].Header.Get(RequestIDHeader))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Equal(t, "assign_task", sent["action"])
	assert.Equal(t, map[string]any{"asset_id": "a-1"}, sent["payload"])
}

func TestCredentialHeaderFollowsAuthMode(t *testing.T) {
	srv, conn := newFake(t)
	c := New()
	conn.Credential = "sk-test"

	conn.AuthMode = config.AuthAPIKey
	_, err := c.Health(context.Background(), conn)
	require.NoError(t, err)

	conn.AuthMode = config.AuthOff
	_, err = c.Health(context.Background(), conn)
	require.NoError(t, err)

	reqs := srv.RequestsTo("/health")
	require.Len(t, reqs, 2)
	assert.Equal(t, "sk-test", reqs[0].Header.Get("X-API-Key"))
	assert.Empty(t, reqs[1].Header.Values("X-API-Key"))
}

func TestExtraHeadersAreSent(t *testing.T) {
	srv, conn := newFake(t)
	conn.Extra = map[string]string{"X-Tenant": "acme"}

	_, err := New().Health(context.Background(), conn)
	require.NoError(t, err)

	reqs := srv.RequestsTo("/health")
	require.Len(t, reqs, 1)
	assert.Equal(t, "acme", reqs[0].Header.Get("X-Tenant"))
}

func TestExecuteCommandKeepsErrorReplies(t *testing.T) {
	srv, conn := newFake(t)
	srv.Reply("/commands", apitest.Reply{
		Status: http.StatusUnprocessableEntity,
		Body:   map[string]any{"detail": []any{map[string]any{"loc": []any{"body", "raw_text"}, "msg": "required"}}},
	})

	res, err := New().ExecuteCommand(context.Background(), conn, command.Body{"requested_by": "ops"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, res.Status)
	assert.False(t, res.OK())

	info := response.Interpret(res.Status, res.Body)
	require.NotNil(t, info)
	assert.Equal(t, []string{"body.raw_text: required"}, info.Details)
}

func TestNonJSONBodyIsKeptRaw(t *testing.T) {
	srv, conn := newFake(t)
	srv.Reply("/commands", apitest.Reply{Status: http.StatusBadGateway, Raw: "<html>bad gateway</html>"})

	res, err := New().ExecuteCommand(context.Background(), conn, command.Body{})
	require.NoError(t, err)
	assert.Equal(t, response.RawBody("<html>bad gateway</html>"), res.Body)
	assert.Equal(t, "<html>bad gateway</html>", string(res.Raw))
}

func TestOversizedBodyIsAnError(t *testing.T) {
	srv, conn := newFake(t)
	srv.Reply("/commands", apitest.Reply{Status: http.StatusOK, Raw: `{"result":"0123456789"}`})

	res, err := New(WithMaxBodyBytes(8)).ExecuteCommand(context.Background(), conn, command.Body{})
	require.ErrorIs(t, err, ErrResponseTooLarge)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusOK, res.Status)
	assert.Nil(t, res.Body)

	res, err = New(WithMaxBodyBytes(int64(len(`{"result":"0123456789"}`)))).ExecuteCommand(context.Background(), conn, command.Body{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": "0123456789"}, res.Body)
}

func TestDecodeBodyPreservesNumbers(t *testing.T) {
	got := decodeBody([]byte(`{"n": 10.50}`))
	assert.Equal(t, map[string]any{"n": json.Number("10.50")}, got)
	assert.Nil(t, decodeBody([]byte("  ")))
	assert.Equal(t, response.RawBody(`{} {}`), decodeBody([]byte(`{} {}`)))
}

func TestTransportFailureReturnsError(t *testing.T) {
	srv, conn := newFake(t)
	srv.Close()

	res, err := New().ExecuteCommand(context.Background(), conn, command.Body{})
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Status)
	assert.NotEmpty(t, res.RequestID)
}

func TestLatencyIsMeasured(t *testing.T) {
	_, conn := newFake(t)
	c := New()
	ticks := []time.Time{time.Unix(0, 0), time.Unix(0, int64(42*time.Millisecond))}
	c.now = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}

	res, err := c.ExecuteCommand(context.Background(), conn, command.Body{})
	require.NoError(t, err)
	assert.Equal(t, 42*time.Millisecond, res.Latency)
}

func TestWithTimeoutBoundsCalls(t *testing.T) {
	c := New(WithTimeout(3 * time.Second))
	assert.Equal(t, 3*time.Second, c.http.Timeout)
}
