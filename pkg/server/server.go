// Package server provides a websocket media server that runs speech onset
// detection against live telephony streams.
//
// BargeInServer accepts Twilio Media Streams connections, feeds each
// stream's audio through its own onset detector frame by frame, and
// notifies the application the moment a caller starts speaking, so it can
// cut off TTS playback. A short pre-roll ring buffer is handed along with
// each onset event so downstream consumers keep the first syllable.
//
// Usage:
//  1. Configure TwiML to connect a <Stream> to the /media endpoint
//  2. Set OnsetHandler to stop playback / flush the TTS queue
//  3. Start the server
//
// Reference: https://www.twilio.com/docs/voice/media-streams

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/speechhook/speechhook/pkg/audio"
	"github.com/speechhook/speechhook/pkg/onset"
	"github.com/speechhook/speechhook/pkg/telephony"
)

// Twilio streams μ-law at 8kHz mono, framed in 20ms chunks.
const (
	streamSampleRate     = 8000
	streamBytesPerSample = 1
	frameBytes           = 160
)

// OnsetEvent describes one detected speech onset.
type OnsetEvent struct {
	// SessionID identifies the server session.
	SessionID string

	// StreamSid and CallSid identify the Twilio stream and call.
	StreamSid string
	CallSid   string

	// PreRoll is the raw μ-law audio leading up to the detection,
	// chronological, at most PreRollMs long.
	PreRoll []byte

	// DetectedAt is when the onset frame was processed.
	DetectedAt time.Time
}

// OnsetHandler is invoked on the session's reader goroutine whenever onset
// is detected. It must return promptly to keep the stream real-time.
type OnsetHandler func(OnsetEvent)

// DetectorFactory builds a fresh detector for each stream. The default
// constructs a telephony-profile onset.Detector.
type DetectorFactory func() (onset.DetectorInterface, error)

// Config holds configuration for BargeInServer.
type Config struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string

	// WebSocketPath is the path for media stream connections (default: "/media").
	WebSocketPath string

	// PreRollMs is the amount of audio retained before an onset
	// (default: 300).
	PreRollMs int

	// ReadBufferSize and WriteBufferSize configure the websocket upgrader
	// (default: 1024 each).
	ReadBufferSize  int
	WriteBufferSize int

	// OnsetHandler receives onset events. May be nil.
	OnsetHandler OnsetHandler

	// DetectorFactory overrides detector construction, mainly for tests.
	DetectorFactory DetectorFactory
}

// session is the per-connection state. The detector and leftover buffer are
// touched only by the connection's reader goroutine.
type session struct {
	id        string
	streamSid string
	callSid   string
	detector  onset.DetectorInterface
	preRoll   *audio.RingBuffer
	startedAt time.Time

	// leftover holds a partial frame between media messages so no audio is
	// dropped when a vendor delivers chunks that are not frame-aligned.
	leftover []byte
}

// BargeInServer accepts telephony media streams and reports speech onsets.
type BargeInServer struct {
	config Config

	upgrader websocket.Upgrader
	server   *http.Server

	sessions   map[string]*session
	sessionsMu sync.RWMutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBargeInServer creates a new barge-in server.
func NewBargeInServer(config Config) *BargeInServer {
	if config.WebSocketPath == "" {
		config.WebSocketPath = "/media"
	}
	if config.PreRollMs == 0 {
		config.PreRollMs = 300
	}
	if config.ReadBufferSize == 0 {
		config.ReadBufferSize = 1024
	}
	if config.WriteBufferSize == 0 {
		config.WriteBufferSize = 1024
	}
	if config.DetectorFactory == nil {
		config.DetectorFactory = func() (onset.DetectorInterface, error) {
			return onset.NewDetector(onset.TelephonyConfig())
		}
	}

	return &BargeInServer{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// Start starts the server. It returns once the listener goroutine is
// running; use Stop for graceful shutdown.
func (s *BargeInServer) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc(s.config.WebSocketPath, s.HandleMedia)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    s.config.Addr,
		Handler: mux,
	}

	log.Printf("[BargeInServer] Starting server on %s", s.config.Addr)
	log.Printf("[BargeInServer] Media endpoint: %s", s.config.WebSocketPath)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[BargeInServer] Server error: %v", err)
		}
	}()

	return nil
}

// Stop stops the server gracefully.
func (s *BargeInServer) Stop() error {
	log.Printf("[BargeInServer] Stopping server...")

	if s.cancel != nil {
		s.cancel()
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}

	s.wg.Wait()
	log.Printf("[BargeInServer] Server stopped")
	return nil
}

// SessionCount returns the number of active stream sessions.
func (s *BargeInServer) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// HandleMedia upgrades the request to a websocket and services one media
// stream until it stops or the connection drops.
func (s *BargeInServer) HandleMedia(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[BargeInServer] WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[BargeInServer] Media connection from %s", r.RemoteAddr)

	var sess *session
	defer func() {
		if sess != nil {
			s.removeSession(sess)
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[BargeInServer] Read error: %v", err)
			}
			return
		}

		msg, err := telephony.ParseMessage(data)
		if err != nil {
			// Best-effort streaming: skip malformed messages.
			log.Printf("[BargeInServer] Skipping malformed message: %v", err)
			continue
		}

		switch msg.Event {
		case telephony.EventConnected:
			// Protocol handshake, nothing to do.

		case telephony.EventStart:
			sess, err = s.startSession(msg)
			if err != nil {
				log.Printf("[BargeInServer] Failed to start session: %v", err)
				return
			}

		case telephony.EventMedia:
			if sess == nil || msg.Media == nil {
				continue
			}
			s.handleMedia(sess, msg.Media)

		case telephony.EventStop:
			if sess != nil {
				log.Printf("[BargeInServer] Stream %s stopped after %v",
					sess.streamSid, time.Since(sess.startedAt))
			}
			return
		}
	}
}

// startSession allocates per-stream state for a started media stream.
func (s *BargeInServer) startSession(msg *telephony.MediaMessage) (*session, error) {
	detector, err := s.config.DetectorFactory()
	if err != nil {
		return nil, fmt.Errorf("detector construction failed: %w", err)
	}

	sess := &session{
		id:        uuid.NewString(),
		streamSid: msg.StreamSid,
		detector:  detector,
		preRoll:   audio.NewRingBuffer(streamSampleRate, s.config.PreRollMs, streamBytesPerSample),
		startedAt: time.Now(),
	}
	if msg.Start != nil {
		sess.callSid = msg.Start.CallSid
		if msg.StreamSid == "" {
			sess.streamSid = msg.Start.StreamSid
		}
	}

	s.sessionsMu.Lock()
	s.sessions[sess.id] = sess
	s.sessionsMu.Unlock()

	log.Printf("[BargeInServer] Session %s started (stream %s, call %s)",
		sess.id, sess.streamSid, sess.callSid)
	return sess, nil
}

func (s *BargeInServer) removeSession(sess *session) {
	s.sessionsMu.Lock()
	delete(s.sessions, sess.id)
	s.sessionsMu.Unlock()
}

// handleMedia unwraps one media payload and runs detection over it in
// 20ms frames. Runs on the session's reader goroutine only.
func (s *BargeInServer) handleMedia(sess *session, media *telephony.MediaPayload) {
	chunk, err := media.Decode()
	if err != nil {
		log.Printf("[BargeInServer] Skipping undecodable payload: %v", err)
		return
	}

	sess.preRoll.Write(chunk)

	// The detector analyzes exactly one frame per call, so carry any
	// partial frame over to the next message rather than losing it.
	buf := chunk
	if len(sess.leftover) > 0 {
		buf = append(sess.leftover, chunk...)
	}

	for len(buf) >= frameBytes {
		if sess.detector.ProcessAudio(buf[:frameBytes]) {
			s.reportOnset(sess)
		}
		buf = buf[frameBytes:]
	}
	sess.leftover = append(sess.leftover[:0], buf...)
}

func (s *BargeInServer) reportOnset(sess *session) {
	log.Printf("[BargeInServer] Speech onset on stream %s (session %s)",
		sess.streamSid, sess.id)

	if s.config.OnsetHandler == nil {
		return
	}
	s.config.OnsetHandler(OnsetEvent{
		SessionID:  sess.id,
		StreamSid:  sess.streamSid,
		CallSid:    sess.callSid,
		PreRoll:    sess.preRoll.ReadAll(),
		DetectedAt: time.Now(),
	})
}

func (s *BargeInServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, s.SessionCount())
}
