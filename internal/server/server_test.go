package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/jeongseonghan/modviz/internal/audio"
	"github.com/jeongseonghan/modviz/internal/export"
	"github.com/jeongseonghan/modviz/internal/modem"
	"github.com/jeongseonghan/modviz/internal/scope"
)

type fixture struct {
	handlers *Handlers
	server   *httptest.Server
	played   chan []float32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	state, err := scope.New(scope.DefaultSettings(), 1, nil)
	require.NoError(t, err)

	f := &fixture{played: make(chan []float32, 1)}
	f.handlers = NewHandlers(state, Options{
		Exporter: export.NewExporter(t.TempDir(), nil, nil),
		Player: PlayerFunc(func(_ context.Context, samples []float32, _, _ float64) error {
			f.played <- samples
			return nil
		}),
		Devices: func() ([]audio.DeviceInfo, error) {
			return []audio.DeviceInfo{{Name: "speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000, IsDefault: true}}, nil
		},
	})
	srv := NewServer("", f.handlers, "", nil)
	f.server = httptest.NewServer(srv.Handler())
	t.Cleanup(f.server.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestState_GetAndPut(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view stateView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, scope.DefaultSettings(), view.Settings)
	assert.Equal(t, "A:100 F:300 2-ASK", view.Status[0])

	resp, body = f.do(t, http.MethodPut, "/api/state", `{"modulation":{"kind":"psk","bitsPerSymbol":2},"view":"spectrum"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, modem.PSK, view.Settings.Modulation.Kind)
	assert.Equal(t, 300.0, view.Settings.Modulation.Frequency)
	assert.Equal(t, scope.PowerSpectrum, view.Settings.View)
	assert.Equal(t, "A:100 F:300 QPSK", view.Status[0])

	resp, _ = f.do(t, http.MethodPut, "/api/state", `{"modulation":{"samplesPerBit":1}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/state", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMessageAndFrame(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/message", `{"text":"Hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"symbols":16`)

	resp, body = f.do(t, http.MethodGet, "/api/frame", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var frame scope.Frame
	require.NoError(t, json.Unmarshal(body, &frame))
	assert.Equal(t, "Hi", frame.Message)
	assert.Equal(t, scope.TimeDomain, frame.View)
	require.NotNil(t, frame.Time)
	assert.Len(t, frame.Time.Samples, 1240)
}

func TestFrame_Msgpack(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/message", `{"text":"Hi"}`)

	resp, body := f.do(t, http.MethodGet, "/api/frame?encoding=msgpack", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/msgpack", resp.Header.Get("Content-Type"))

	var frame scope.Frame
	require.NoError(t, msgpack.Unmarshal(body, &frame))
	assert.Equal(t, "Hi", frame.Message)
	require.NotNil(t, frame.Time)
	assert.Len(t, frame.Time.Y, 1240)
}

func TestCommand(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/command", `{"command":"amplitude-up"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view stateView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, 105.0, view.Settings.Modulation.Amplitude)

	resp, body = f.do(t, http.MethodPost, "/api/command", `{"command":"teleport"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "unknown command")

	resp, body = f.do(t, http.MethodGet, "/api/commands", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "view-spectrum")
}

func TestExportAndDownload(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/export", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "no active message to export")

	f.do(t, http.MethodPost, "/api/message", `{"text":"Hi"}`)
	resp, body = f.do(t, http.MethodPost, "/api/export", `{"name":"hi.32fl"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res export.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 800, res.Samples)

	resp, body = f.do(t, http.MethodGet, "/api/download/hi.32fl", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body, 3200)
	assert.Equal(t, res.CRC32, export.CRC32(body))

	resp, _ = f.do(t, http.MethodGet, "/api/download/missing.32fl", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/export", `{"name":"../x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDevices(t *testing.T) {
	f := newFixture(t)
	resp, body := f.do(t, http.MethodGet, "/api/devices", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "speakers")

	f.handlers.devices = func() ([]audio.DeviceInfo, error) { return nil, errors.New("no portaudio") }
	_, body = f.do(t, http.MethodGet, "/api/devices", "")
	assert.Contains(t, string(body), "no portaudio")
}

func TestPlay(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/play", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	f.do(t, http.MethodPost, "/api/message", `{"text":"A"}`)
	resp, _ = f.do(t, http.MethodPost, "/api/play", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	select {
	case samples := <-f.played:
		assert.Len(t, samples, 8*50)
	case <-time.After(2 * time.Second):
		t.Fatal("player was not called")
	}
}

func wsURL(f *fixture, query string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws" + query
}

func readFrame(t *testing.T, conn *websocket.Conn) scope.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type    string      `json:"type"`
		Payload scope.Frame `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "frame", msg.Type)
	return msg.Payload
}

func TestWebSocket_JSON(t *testing.T) {
	f := newFixture(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(f, ""), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readFrame(t, conn)
	assert.Empty(t, first.Message)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "message", Payload: "hey"}))
	assert.Equal(t, "hey", readFrame(t, conn).Message)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "command", Payload: "view-spectrum"}))
	frame := readFrame(t, conn)
	assert.Equal(t, scope.PowerSpectrum, frame.View)
	require.NotNil(t, frame.Spectrum)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "hover", Payload: 50}))
	frame = readFrame(t, conn)
	require.NotNil(t, frame.Spectrum.Hover)
	assert.Equal(t, frame.Spectrum.Spectrum.StartBin, frame.Spectrum.Hover.Bin)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "command", Payload: "nope"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var errMsg WSMessage
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, "error", errMsg.Type)

	// The frame loop reaches connected clients.
	f.handlers.tick()
	frame = readFrame(t, conn)
	assert.InDelta(t, scope.AutoScrollStep, frame.TimeOffset, 1e-12)
}

func TestWebSocket_Msgpack(t *testing.T) {
	f := newFixture(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(f, "?encoding=msgpack"), nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() WSMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		kind, data, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.BinaryMessage, kind)
		var msg WSMessage
		require.NoError(t, msgpack.Unmarshal(data, &msg))
		return msg
	}
	assert.Equal(t, "frame", read().Type)

	data, err := msgpack.Marshal(WSMessage{Type: "message", Payload: "bin"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, data))

	msg := read()
	require.Equal(t, "frame", msg.Type)
	payload, ok := msg.Payload.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "bin", payload["message"])
}

func TestToInt(t *testing.T) {
	for _, v := range []interface{}{float64(7), int8(7), uint16(7), int64(7)} {
		n, ok := toInt(v)
		assert.True(t, ok)
		assert.Equal(t, 7, n)
	}
	_, ok := toInt("7")
	assert.False(t, ok)
}

func TestEncoding(t *testing.T) {
	assert.Equal(t, EncodingMsgpack, ParseEncoding("msgpack"))
	assert.Equal(t, EncodingJSON, ParseEncoding(""))

	kind, data, err := EncodingJSON.marshal(WSMessage{Type: "status", Payload: "x"})
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	assert.True(t, bytes.HasPrefix(data, []byte(`{"type":"status"`)))
}
