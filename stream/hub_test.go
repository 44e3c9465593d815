package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/milosgajdos/go-tilt/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn
}

func TestHubWrite(t *testing.T) {
	assert := assert.New(t)

	h := NewHub()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	assert.Eventually(func() bool { return h.Len() == 1 }, time.Second, 10*time.Millisecond)

	s, err := particle.NewSet(mat.NewDense(3, 2, []float64{
		1, 3,
		2, 4,
		0, 0.5,
	}), nil)
	require.NoError(t, err)

	assert.NoError(h.Write(4, s))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var f Frame
	require.NoError(t, json.Unmarshal(msg, &f))
	assert.Equal(4, f.Step)
	assert.Equal([][]float64{{1, 2, 0}, {3, 4, 0.5}}, f.Particles)
	assert.InDeltaSlice([]float64{2, 3, 0.25}, f.Mean, 1e-12)
}

func TestHubDisconnect(t *testing.T) {
	assert := assert.New(t)

	h := NewHub()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	assert.Eventually(func() bool { return h.Len() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(func() bool { return h.Len() == 0 }, time.Second, 10*time.Millisecond)
}

func TestHubClose(t *testing.T) {
	assert := assert.New(t)

	h := NewHub()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	assert.Eventually(func() bool { return h.Len() == 1 }, time.Second, 10*time.Millisecond)

	assert.NoError(h.Close())
	assert.Equal(0, h.Len())

	// the client receives a close frame
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(websocket.IsCloseError(err, websocket.CloseNormalClosure))

	// writing to a closed hub is a no-op
	s, err := particle.NewSet(mat.NewDense(1, 1, []float64{1}), nil)
	require.NoError(t, err)
	assert.NoError(h.Write(0, s))
}
