package http

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/pkg/testkit"
)

func TestSendDecodesJSON(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.Stub("GET", "/variantes/", 200, `[{"id": 1}, {"id": 2}]`)
	DefaultClient.Transport = mt
	defer ResetTransport()

	resp, err := Get("http://api.test/variantes/").Send()
	require.NoError(t, err)
	require.True(t, resp.OK())

	var out []struct {
		ID int `json:"id"`
	}
	require.NoError(t, resp.JSON(&out))
	assert.Len(t, out, 2)
}

func TestThrowOnNon2xx(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.Stub("GET", "/missing", 404, `{"detail": "no"}`)
	DefaultClient.Transport = mt
	defer ResetTransport()

	resp, err := Get("http://api.test/missing").Send()
	require.NoError(t, err)
	assert.False(t, resp.OK())
	assert.Error(t, resp.Throw())
	assert.Contains(t, resp.Text(), "no")
}

func TestRetryOnTransportFailure(t *testing.T) {
	mt := testkit.NewMockTransport()
	stub := mt.StubError("GET", "/flaky", errors.New("connection reset"))
	DefaultClient.Transport = mt
	defer ResetTransport()

	_, err := Get("http://api.test/flaky").
		Retry(3, time.Millisecond).
		Send()
	require.Error(t, err)
	assert.Equal(t, 3, stub.Calls())
}

func TestQueryParamsAppended(t *testing.T) {
	mt := testkit.NewMockTransport()
	mt.Stub("GET", "/variantes/", 200, `[]`)
	DefaultClient.Transport = mt
	defer ResetTransport()

	resp, err := Get("http://api.test/variantes/").
		Query("q", "ron").
		Query("categoria", "Ron").
		Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
}
