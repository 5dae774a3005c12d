package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/jeongseonghan/modviz/internal/audio"
	"github.com/jeongseonghan/modviz/internal/export"
	"github.com/jeongseonghan/modviz/internal/modem"
	"github.com/jeongseonghan/modviz/internal/scope"
)

// Player plays a rendered waveform.
type Player interface {
	Play(ctx context.Context, samples []float32, sampleRate, amplitude float64) error
}

// PlayerFunc adapts a function to Player.
type PlayerFunc func(ctx context.Context, samples []float32, sampleRate, amplitude float64) error

func (f PlayerFunc) Play(ctx context.Context, samples []float32, sampleRate, amplitude float64) error {
	return f(ctx, samples, sampleRate, amplitude)
}

// Options wires the handlers to their collaborators. Nil fields disable the
// matching endpoints.
type Options struct {
	Exporter    *export.Exporter
	Player      Player
	Devices     func() ([]audio.DeviceInfo, error)
	FrameRate   int
	ExportNoise bool
	NoiseSeed   int64
	Logger      *zap.Logger
}

// Handlers holds the HTTP API handlers.
type Handlers struct {
	state    *scope.State
	hub      *WSHub
	exporter *export.Exporter
	player   Player
	devices  func() ([]audio.DeviceInfo, error)

	frameRate   int
	exportNoise bool
	noiseSeed   int64

	playing chan struct{}
	log     *zap.Logger
}

// NewHandlers creates new API handlers.
func NewHandlers(state *scope.State, opts Options) *Handlers {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = 60
	}
	return &Handlers{
		state:       state,
		hub:         NewWSHub(logger),
		exporter:    opts.Exporter,
		player:      opts.Player,
		devices:     opts.Devices,
		frameRate:   opts.FrameRate,
		exportNoise: opts.ExportNoise,
		noiseSeed:   opts.NoiseSeed,
		playing:     make(chan struct{}, 1),
		log:         logger,
	}
}

// Hub returns the websocket hub.
func (h *Handlers) Hub() *WSHub {
	return h.hub
}

// Run advances the view and pushes a frame to every client at the frame
// rate until ctx is done.
func (h *Handlers) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(h.frameRate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.tick()
		}
	}
}

func (h *Handlers) tick() {
	h.state.Tick()
	if h.hub.Len() == 0 {
		return
	}
	h.hub.Broadcast(WSMessage{Type: "frame", Payload: h.state.Render()})
}

// HandleWebSocket upgrades the connection, sends the current frame and then
// reads client commands until the connection drops.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := h.hub.AddClient(conn, ParseEncoding(r.URL.Query().Get("encoding")))
	if err := c.send(WSMessage{Type: "frame", Payload: h.state.Render()}); err != nil {
		h.hub.RemoveClient(conn)
		return
	}

	go func() {
		defer h.hub.RemoveClient(conn)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.log.Debug("websocket read ended", zap.Error(err))
				}
				return
			}
			reply := h.handleClientMessage(c.encoding, data)
			if err := c.send(reply); err != nil {
				return
			}
		}
	}()
}

// handleClientMessage applies one client message and returns the frame
// that reflects it, or an error message.
func (h *Handlers) handleClientMessage(enc Encoding, data []byte) WSMessage {
	var msg WSMessage
	if err := enc.unmarshal(data, &msg); err != nil {
		return errorMessage(fmt.Errorf("decode: %w", err))
	}

	switch msg.Type {
	case "command":
		name, ok := msg.Payload.(string)
		if !ok {
			return errorMessage(fmt.Errorf("command payload must be a string"))
		}
		if err := h.state.Apply(name); err != nil {
			return errorMessage(err)
		}
	case "message":
		text, ok := msg.Payload.(string)
		if !ok {
			return errorMessage(fmt.Errorf("message payload must be a string"))
		}
		h.state.Commit(text)
	case "hover":
		x, ok := toInt(msg.Payload)
		if !ok {
			return errorMessage(fmt.Errorf("hover payload must be a number"))
		}
		h.state.SetHover(x)
	default:
		return errorMessage(fmt.Errorf("unknown message type %q", msg.Type))
	}
	return WSMessage{Type: "frame", Payload: h.state.Render()}
}

func errorMessage(err error) WSMessage {
	return WSMessage{Type: "error", Payload: err.Error()}
}

// toInt accepts the numeric types JSON and msgpack decode into.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}

// HandleState returns or replaces the scope settings.
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.stateView())
	case http.MethodPut:
		// Fields left out of the body keep their current values.
		settings := h.state.Settings()
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
			return
		}
		if err := h.state.Update(settings); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeJSON(w, http.StatusOK, h.stateView())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type stateView struct {
	Settings   scope.Settings `json:"settings"`
	Message    string         `json:"message"`
	TimeOffset float64        `json:"timeOffset"`
	Paused     bool           `json:"paused"`
	Status     [2]string      `json:"status"`
}

func (h *Handlers) stateView() stateView {
	snap := h.state.Snapshot()
	return stateView{
		Settings:   snap.Settings,
		Message:    snap.Message.String(),
		TimeOffset: snap.TimeOffset,
		Paused:     snap.Paused,
		Status:     snap.Settings.Modulation.Status(),
	}
}

// HandleMessage commits a new message.
func (h *Handlers) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
		return
	}
	msg := h.state.Commit(req.Text)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": msg.String(),
		"bytes":   msg.Len(),
		"symbols": msg.TotalSymbols(h.state.Settings().Modulation.BitsPerSymbol),
	})
}

// HandleCommand applies a named command.
func (h *Handlers) HandleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Command string `json:"command"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
		return
	}
	if err := h.state.Apply(req.Command); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, h.stateView())
}

// HandleCommands lists the command names.
func (h *Handlers) HandleCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scope.Commands())
}

// HandleFrame renders one frame, as msgpack when the client asks for it.
func (h *Handlers) HandleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if x := r.URL.Query().Get("hover"); x != "" {
		var px int
		if _, err := fmt.Sscanf(x, "%d", &px); err == nil {
			h.state.SetHover(px)
		}
	}
	frame := h.state.Render()

	if r.URL.Query().Get("encoding") == "msgpack" || strings.Contains(r.Header.Get("Accept"), "msgpack") {
		data, err := msgpack.Marshal(frame)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		w.Write(data)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

// HandleExport writes the active message to the export directory.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("export is not configured"))
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("parse request: %w", err))
			return
		}
	}

	snap := h.state.Snapshot()
	exportReq := export.Request{
		Config:  snap.Settings.Modulation,
		Message: snap.Message,
		Name:    req.Name,
	}
	if h.exportNoise {
		exportReq.Noise = modem.NewNoise(h.noiseSeed)
	}

	res, err := h.exporter.Export(r.Context(), exportReq)
	switch {
	case errors.Is(err, export.ErrEmptyMessage), errors.Is(err, export.ErrNoSamples):
		// Informational: nothing to do yet.
		writeJSON(w, http.StatusConflict, map[string]string{"status": "info", "message": err.Error()})
		return
	case errors.Is(err, export.ErrInvalidName):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil && res == nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	case err != nil:
		// Written locally, upload failed.
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"status": "error", "message": err.Error(), "result": res})
		return
	}

	h.hub.BroadcastStatus("exported", fmt.Sprintf("%s (%d samples)", res.Name, res.Samples))
	writeJSON(w, http.StatusOK, res)
}

// HandleDownload serves exported files for download.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/api/download/")
	if filename == "" {
		http.Error(w, "Filename required", http.StatusBadRequest)
		return
	}

	filePath, err := h.exporter.Path(filename)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", export.FormatOf(filename).ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, filePath)
}

// HandleDevices lists available audio output devices.
func (h *Handlers) HandleDevices(w http.ResponseWriter, r *http.Request) {
	if h.devices == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "devices": []audio.DeviceInfo{}})
		return
	}
	devices, err := h.devices()
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"devices": devices,
	})
}

// HandlePlay renders the active message and plays it in the background.
// Only one playback runs at a time.
func (h *Handlers) HandlePlay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.player == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("audio output is not available"))
		return
	}

	snap := h.state.Snapshot()
	cfg := snap.Settings.Modulation
	samples, err := export.Render(cfg, snap.Message, nil)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"status": "info", "message": err.Error()})
		return
	}

	select {
	case h.playing <- struct{}{}:
	default:
		writeError(w, http.StatusConflict, fmt.Errorf("playback already running"))
		return
	}

	go func() {
		defer func() { <-h.playing }()
		h.hub.BroadcastStatus("playing", fmt.Sprintf("%d samples at %.0f Hz", len(samples), cfg.SampleRate))
		if err := h.player.Play(context.Background(), samples, cfg.SampleRate, cfg.Amplitude); err != nil {
			h.log.Warn("playback failed", zap.Error(err))
			h.hub.BroadcastStatus("error", fmt.Sprintf("Playback failed: %v", err))
			return
		}
		h.hub.BroadcastStatus("completed", "Playback finished")
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status":  "playing",
		"samples": len(samples),
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"status": "error", "message": err.Error()})
}
