package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"planetgenerator/core"
	"planetgenerator/export"
	"planetgenerator/planet"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type reply struct {
	export.MeshData
	Error string `json:"error"`
}

func testDefaults() core.PlanetParams {
	p := core.DefaultPlanetParams()
	p.GridSize = 14
	return p
}

func newTestServer(t *testing.T) (*Server, *planet.Cache, *httptest.Server) {
	t.Helper()
	log := zaptest.NewLogger(t)
	cache, err := planet.NewCache(planet.NewGenerator(log, planet.WithWorkers(2)), 8)
	require.NoError(t, err)

	srv := New(log, cache, testDefaults(), Options{MaxConcurrentJobs: 2, MaxGridSize: 40, AtmosphereThickness: 0.2})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.Close() })
	return srv, cache, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var r reply
	require.NoError(t, conn.ReadJSON(&r))
	return r
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestPlanetEndpoint(t *testing.T) {
	_, cache, ts := newTestServer(t)

	get := func() export.MeshData {
		resp, err := http.Get(ts.URL + "/api/planet?seed=3&gridSize=16&radius=2.2")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		d, err := export.ReadJSON(resp.Body)
		require.NoError(t, err)
		return d
	}

	d := get()
	assert.Equal(t, "mesh", d.Type)
	assert.NotEmpty(t, d.ID)
	assert.Equal(t, uint32(3), d.Params.Seed)
	assert.Equal(t, 16, d.Params.GridSize)
	assert.Equal(t, 2.2, d.Params.Radius)
	assert.Greater(t, d.Triangles, 0)
	assert.Len(t, d.Positions, 9*d.Triangles)
	assert.Len(t, d.Colors, len(d.Positions))
	assert.InDelta(t, 2.4, d.Shells.Atmosphere, 1e-12)

	again := get()
	assert.Equal(t, d.Positions, again.Positions)
	assert.Equal(t, int64(1), cache.Stats().Hits)
}

func TestPlanetEndpointRejectsBadQueries(t *testing.T) {
	_, _, ts := newTestServer(t)

	for _, q := range []string{"gridSize=1", "gridSize=41", "radius=abc", "seed=x", "noise=bogus", "foamBand=-1"} {
		t.Run(q, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/planet?" + q)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var msg ErrorMessage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
			assert.Equal(t, "error", msg.Type)
			assert.Contains(t, msg.Error, core.ErrInvalidParameter.Error())
		})
	}
}

func TestWebSocketGenerate(t *testing.T) {
	_, _, ts := newTestServer(t)
	conn := dial(t, ts)

	initial := read(t, conn)
	require.Equal(t, "mesh", initial.Type)
	assert.Equal(t, testDefaults(), initial.Params)
	assert.NotEmpty(t, initial.ID)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "generate",
		"id":     "r1",
		"params": map[string]any{"seed": 7, "gridSize": 12, "terrain": map[string]any{"amplitude": 0.3}},
	}))
	r := read(t, conn)
	require.Equal(t, "mesh", r.Type, r.Error)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, uint32(7), r.Params.Seed)
	assert.Equal(t, 12, r.Params.GridSize)
	assert.Equal(t, 0.3, r.Params.Terrain.Amplitude)
	assert.Equal(t, testDefaults().Terrain.HillHeight, r.Params.Terrain.HillHeight)
	assert.Equal(t, r.Triangles*9, len(r.Positions))

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "generate", "id": "r2", "params": map[string]any{"gridSize": 1}}))
	r = read(t, conn)
	assert.Equal(t, "error", r.Type)
	assert.Equal(t, "r2", r.ID)
	assert.Contains(t, r.Error, "gridSize")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "teleport", "id": "r3"}))
	r = read(t, conn)
	assert.Equal(t, "error", r.Type)
	assert.Contains(t, r.Error, "teleport")

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "defaults", "id": "r4"}))
	r = read(t, conn)
	assert.Equal(t, "mesh", r.Type)
	assert.Equal(t, initial.Positions, r.Positions)
}

func TestSetDefaultsBroadcasts(t *testing.T) {
	srv, _, ts := newTestServer(t)
	a, b := dial(t, ts), dial(t, ts)
	read(t, a)
	read(t, b)
	assert.Equal(t, 2, srv.ClientCount())

	p := testDefaults()
	p.Seed = 9
	require.NoError(t, srv.SetDefaults(context.Background(), p))
	assert.Equal(t, p, srv.Defaults())

	for _, conn := range []*websocket.Conn{a, b} {
		r := read(t, conn)
		assert.Equal(t, "mesh", r.Type)
		assert.Equal(t, uint32(9), r.Params.Seed)
	}

	bad := p
	bad.Radius = 0
	assert.ErrorIs(t, srv.SetDefaults(context.Background(), bad), core.ErrInvalidParameter)
	assert.Equal(t, p, srv.Defaults())
}

func TestCloseDisconnectsClients(t *testing.T) {
	srv, _, ts := newTestServer(t)
	conn := dial(t, ts)
	read(t, conn)

	require.NoError(t, srv.Close())
	assert.Zero(t, srv.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		resp.Body.Close()
	}
	assert.NoError(t, srv.Close())
}
