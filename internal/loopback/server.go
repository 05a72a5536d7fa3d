// Package loopback implements a development peer for the /voice_stream endpoint.
// It answers every recording with a transcript, a tone and the echoed audio
// without performing any speech recognition or synthesis.
package loopback

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mgoltzsche/voicechat/internal/protocol"
	"github.com/mgoltzsche/voicechat/internal/soundgen"
	"github.com/mgoltzsche/voicechat/internal/wavfile"
)

const (
	Path         = "/voice_stream"
	humanSender  = "Human"
	agentSender  = "Agent"
	toneDuration = 300 * time.Millisecond
	toneFreq     = 660
	writeTimeout = 10 * time.Second
)

// Server upgrades /voice_stream requests and serves one loopback conversation per connection.
type Server struct {
	Tones    *soundgen.Generator
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
	mutex    sync.Mutex
	conns    map[string]*websocket.Conn
}

func NewServer(sampleRate int) *Server {
	return &Server{
		Tones: &soundgen.Generator{SampleRate: sampleRate},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: map[string]*websocket.Conn{},
	}
}

func (s *Server) AddRoutes(mux *http.ServeMux) {
	mux.HandleFunc(Path, s.handleWebSocket)
}

// ConnectionCount returns the number of currently connected clients.
func (s *Server) ConnectionCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return len(s.conns)
}

// Close closes all client connections with a going away status and waits for their handlers to return.
func (s *Server) Close() {
	s.mutex.Lock()
	for _, conn := range s.conns {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = conn.Close()
	}
	s.mutex.Unlock()

	s.wg.Wait()
}

func (s *Server) handleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Warn(fmt.Sprintf("upgrade websocket connection: %s", err))
		return
	}

	id := uuid.NewString()

	s.mutex.Lock()
	s.conns[id] = conn
	s.mutex.Unlock()

	s.wg.Add(1)
	defer func() {
		s.mutex.Lock()
		delete(s.conns, id)
		s.mutex.Unlock()
		_ = conn.Close()
		s.wg.Done()
	}()

	slog.Info(fmt.Sprintf("client %s connected from %s", id, req.RemoteAddr))

	err = s.serve(req.Context(), conn)
	if err != nil {
		slog.Warn(fmt.Sprintf("client %s: %s", id, err))
		return
	}

	slog.Info(fmt.Sprintf("client %s disconnected", id))
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read websocket message: %w", err)
		}

		if msgType != websocket.BinaryMessage {
			slog.Debug(fmt.Sprintf("ignoring %d byte text message", len(data)))
			continue
		}

		err = s.reply(conn, data)
		if err != nil {
			return fmt.Errorf("reply to recording: %w", err)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// reply answers a recording the way a voice agent would: transcript, audio, turn end.
func (s *Server) reply(conn *websocket.Conn, data []byte) error {
	buf, err := wavfile.Decode(data)
	if err != nil {
		slog.Debug(fmt.Sprintf("received undecodable recording: %s", err))
		buf = nil
	}

	described := "unknown format"
	if buf != nil {
		described = "unknown duration"
		if d, err := wavfile.Duration(data); err == nil {
			described = d.Round(time.Millisecond).String()
		}
	}

	err = writeText(conn, humanSender, fmt.Sprintf("received %d bytes of audio (%s)", len(data), described))
	if err != nil {
		return err
	}

	tone, err := s.Tones.Tone(toneFreq, toneDuration)
	if err != nil {
		return err
	}

	err = write(conn, websocket.BinaryMessage, tone)
	if err != nil {
		return err
	}

	answer := "I could not decode your audio."
	if buf != nil && len(buf.Data) > 0 {
		echo, err := wavfile.Encode(buf)
		if err != nil {
			return fmt.Errorf("encode echo: %w", err)
		}

		err = write(conn, websocket.BinaryMessage, echo)
		if err != nil {
			return err
		}

		answer = fmt.Sprintf("That was %s of audio, played back to you.", described)
	}

	// keep-alive
	err = write(conn, websocket.BinaryMessage, []byte{})
	if err != nil {
		return err
	}

	return writeText(conn, agentSender, answer)
}

func writeText(conn *websocket.Conn, sender, msg string) error {
	return write(conn, websocket.TextMessage, []byte(protocol.FormatText(sender, msg)))
}

func write(conn *websocket.Conn, msgType int, data []byte) error {
	err := conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	err = conn.WriteMessage(msgType, data)
	if err != nil {
		return fmt.Errorf("write websocket message: %w", err)
	}

	return nil
}
