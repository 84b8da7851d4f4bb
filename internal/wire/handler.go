package wire

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/goliatone/go-formbuilder/pkg/builder"
)

// EditorFactory opens the editor a connection works on, usually by loading
// the template named in the request.
type EditorFactory func(r *http.Request) (*builder.Editor, error)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOriginPatterns lists the cross-origin hosts allowed to open a
// connection. Without patterns only same-host requests are accepted.
func WithOriginPatterns(patterns ...string) HandlerOption {
	return func(h *Handler) {
		h.origins = append([]string(nil), patterns...)
	}
}

// Handler serves live editing sessions over WebSocket. Each connection owns
// one editor; any interaction still open when the socket closes is released.
type Handler struct {
	factory EditorFactory
	logger  *zap.Logger
	origins []string
}

// NewHandler creates a WebSocket handler around factory.
func NewHandler(factory EditorFactory, opts ...HandlerOption) *Handler {
	h := &Handler{
		factory: factory,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.logger = h.logger.Named("wire")
	return h
}

// ServeHTTP opens the editor, upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	editor, err := h.factory(r)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, builder.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.logger.Warn("open editor", zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		editor.Release()
		h.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	session := NewSession(editor, h.logger)
	defer session.Close()

	ctx := r.Context()
	h.send(ctx, conn, session.Snapshot(""))

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				h.logger.Debug("connection closed", zap.Int("status", int(status)))
			}
			return
		}
		for _, reply := range session.Handle(ctx, msg) {
			h.send(ctx, conn, reply)
		}
	}
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.logger.Debug("write", zap.String("type", msg.Type), zap.Error(err))
	}
}
