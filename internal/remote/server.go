// Package remote serves a board to a web browser over a WebSocket.
package remote

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"whiteboard/internal/gesture"
	"whiteboard/internal/logging"
	"whiteboard/internal/render"
	"whiteboard/internal/session"
)

//go:embed index.html
var page []byte

const (
	writeWait = 10 * time.Second
	// Client messages are single small JSON objects.
	maxMessageSize = 64 << 10
)

// Dispatcher runs fn on the goroutine that owns the session.
type Dispatcher interface {
	Do(fn func())
}

// DispatcherFunc adapts a function such as fyne.Do to a Dispatcher.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Do(fn func()) { f(fn) }

// Options tune a Server.
type Options struct {
	// Resize lets the browser size the surface. Leave it off when a desktop
	// window owns the surface.
	Resize bool
}

// Server is the http.Handler for the page and its WebSocket.
type Server struct {
	session  *session.Session
	dispatch Dispatcher
	opts     Options
	mux      *http.ServeMux
	upgrader websocket.Upgrader

	mu     sync.Mutex
	active *conn
}

// NewServer returns a handler controlling s. Every session call goes
// through d.
func NewServer(s *session.Session, d Dispatcher, opts Options) *Server {
	srv := &Server{
		session:  s,
		dispatch: d,
		opts:     opts,
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 64 * 1024},
	}
	srv.mux.HandleFunc("GET /{$}", srv.handlePage)
	srv.mux.HandleFunc("GET /ws", srv.handleWS)
	return srv
}

func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.mux.ServeHTTP(w, r)
}

func (srv *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// claim takes the controller slot, or returns nil if it is held.
func (srv *Server) claim() *conn {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.active != nil {
		return nil
	}
	srv.active = &conn{
		srv:    srv,
		id:     uuid.NewString(),
		frames: make(chan struct{}, 1),
		status: make(chan Status, 8),
		done:   make(chan struct{}),
	}
	return srv.active
}

func (srv *Server) release(c *conn) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.active == c {
		srv.active = nil
	}
}

func (srv *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c := srv.claim()
	if c == nil {
		http.Error(w, "board already has a controller", http.StatusConflict)
		return
	}
	defer srv.release(c)

	ws, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		return
	}
	c.ws = ws
	c.log = logging.For("remote").With("conn", c.id, "addr", r.RemoteAddr)
	c.log.Info("controller connected")
	c.serve()
	c.log.Info("controller disconnected")
}

// Status is the JSON text frame reporting key results and errors.
type Status struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Error   bool   `json:"error,omitempty"`
}

// Settings is the first frame of a connection: the stored pen, so the page
// controls start where the board left off.
type Settings struct {
	Type  string  `json:"type"`
	Color string  `json:"color"`
	Size  float64 `json:"size"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

type message struct {
	Type    string          `json:"type"`
	Button  gesture.Button  `json:"button"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	DeltaY  float64         `json:"deltaY"`
	Touches []gesture.Point `json:"touches"`
	W       int             `json:"w"`
	H       int             `json:"h"`
	Key     string          `json:"key"`
	Color   string          `json:"color"`
	Size    float64         `json:"size"`
}

type conn struct {
	srv *Server
	id  string
	ws  *websocket.Conn
	log *slog.Logger

	frames chan struct{}
	status chan Status
	done   chan struct{}
	once   sync.Once
}

func (c *conn) close() {
	c.once.Do(func() { close(c.done) })
}

// call runs fn through the dispatcher and waits for it. It gives up when
// the connection closes.
func (c *conn) call(fn func()) bool {
	ran := make(chan struct{})
	c.srv.dispatch.Do(func() {
		fn()
		close(ran)
	})
	select {
	case <-ran:
		return true
	case <-c.done:
		return false
	}
}

// invalidate marks a frame as due. At most one frame waits.
func (c *conn) invalidate() {
	select {
	case c.frames <- struct{}{}:
	default:
	}
}

func (c *conn) report(st Status) {
	select {
	case c.status <- st:
	default:
		c.log.Warn("status dropped", "message", st.Message)
	}
}

func (c *conn) serve() {
	var cancel func()
	settings := Settings{Type: "settings"}
	if !c.call(func() {
		s := c.srv.session
		cancel = s.Subscribe(c.invalidate)
		settings.Size = s.PenSize()
		if pen, err := render.ParseColor(s.Color()); err == nil {
			settings.Color = render.Hex(pen)
		}
		settings.Min, settings.Max = s.PenRange()
	}) {
		return
	}
	defer c.srv.dispatch.Do(cancel)

	data, err := json.Marshal(settings)
	if err != nil || !c.write(websocket.TextMessage, data) {
		return
	}
	c.invalidate()
	c.ws.SetReadLimit(maxMessageSize)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writeLoop()
	}()

	c.readLoop()
	c.close()
	wg.Wait()
	c.ws.Close()
}

func (c *conn) readLoop() {
	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.report(Status{Type: "status", Message: fmt.Sprintf("bad message: %v", err), Error: true})
			continue
		}
		c.srv.dispatch.Do(func() { c.apply(msg) })
	}
}

func (c *conn) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.frames:
			var buf bytes.Buffer
			var err error
			if !c.call(func() { err = c.srv.session.EncodePNG(&buf) }) {
				return
			}
			if err != nil {
				c.log.Error("encode frame", "err", err)
				continue
			}
			if !c.write(websocket.BinaryMessage, buf.Bytes()) {
				return
			}
		case st := <-c.status:
			data, err := json.Marshal(st)
			if err != nil {
				continue
			}
			if !c.write(websocket.TextMessage, data) {
				return
			}
		}
	}
}

func (c *conn) write(kind int, data []byte) bool {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(kind, data); err != nil {
		c.log.Debug("write failed", "err", err)
		c.close()
		c.ws.Close()
		return false
	}
	return true
}

// apply runs one client message on the session's goroutine.
func (c *conn) apply(msg message) {
	s := c.srv.session
	var err error
	switch msg.Type {
	case "down":
		s.PointerDown(msg.Button, msg.X, msg.Y)
	case "move":
		err = s.PointerMove(msg.X, msg.Y)
	case "up":
		err = s.PointerUp()
	case "wheel":
		s.Wheel(msg.X, msg.Y, msg.DeltaY)
	case "touchstart":
		s.TouchStart(msg.Touches)
	case "touchmove":
		err = s.TouchMove(msg.Touches)
	case "touchend":
		err = s.TouchEnd(msg.Touches)
	case "resize":
		if c.srv.opts.Resize {
			err = s.Resize(msg.W, msg.H)
		}
	case "key":
		var res session.KeyResult
		res, err = s.HandleKey(msg.Key)
		if err == nil && res.Action != session.KeyIgnored {
			c.report(Status{Type: "status", Message: res.String()})
		}
	case "color":
		err = s.SetColor(msg.Color)
	case "pen":
		err = s.SetPenSize(msg.Size)
	default:
		err = errors.New("unknown message type " + msg.Type)
	}
	if err != nil {
		c.log.Warn("message failed", "type", msg.Type, "err", err)
		c.report(Status{Type: "status", Message: err.Error(), Error: true})
	}
}
