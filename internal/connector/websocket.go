package connector

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/milkywaybrain/marketstream/internal/config"
)

// Websocket is for websocket connection.
type Websocket struct {
	Conn net.Conn
	Cfg  *config.WS
}

// NewWebsocket dials url, the dial is bounded by the configured connection timeout.
func NewWebsocket(appCtx context.Context, cfg *config.WS, url string) (Websocket, error) {
	ctx := appCtx
	if cfg.ConnTimeoutSec > 0 {
		timeoutCtx, cancel := context.WithTimeout(appCtx, time.Duration(cfg.ConnTimeoutSec)*time.Second)
		ctx = timeoutCtx
		defer cancel()
	}
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return Websocket{}, err
	}
	if br != nil {
		// Frames sent right after the handshake are already buffered.
		conn = bufferedConn{Conn: conn, r: br}
	}
	websocket := Websocket{Conn: conn, Cfg: cfg}
	return websocket, nil
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// Write writes data frame on websocket connection.
func (w *Websocket) Write(data []byte) error {
	return wsutil.WriteClientText(w.Conn, data)
}

// Read reads the next text or binary data frame from websocket connection.
// Control frames are answered on the way.
func (w *Websocket) Read() ([]byte, error) {
	if w.Cfg.ReadTimeoutSec > 0 {
		err := w.Conn.SetReadDeadline(time.Now().Add(time.Duration(w.Cfg.ReadTimeoutSec) * time.Second))
		if err != nil {
			return nil, err
		}
	}
	data, _, err := wsutil.ReadServerData(w.Conn)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Close closes the underlying connection.
func (w *Websocket) Close() error {
	return w.Conn.Close()
}

// Stream is a byte stream view of a websocket connection, for protocols that
// frame their own messages. Every Write is sent as one text frame, reads
// drain one data frame at a time.
type Stream struct {
	ws *Websocket

	rmu sync.Mutex
	buf bytes.Buffer

	wmu sync.Mutex
}

// NewStream wraps an open websocket.
func NewStream(ws *Websocket) *Stream {
	return &Stream{ws: ws}
}

func (s *Stream) Read(p []byte) (int, error) {
	s.rmu.Lock()
	defer s.rmu.Unlock()
	for s.buf.Len() == 0 {
		data, err := s.ws.Read()
		if err != nil {
			return 0, err
		}
		s.buf.Write(data)
	}
	return s.buf.Read(p)
}

func (s *Stream) Write(p []byte) (int, error) {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if err := s.ws.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Stream) Close() error {
	return s.ws.Close()
}
