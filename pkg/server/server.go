package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/willbeason/escape-fractal/pkg/pgm"
)

const (
	// DefaultMaxPixels caps the size of a single remote render.
	DefaultMaxPixels = 4096 * 4096

	// DefaultMaxIterCap caps the iterations a remote render may ask for.
	DefaultMaxIterCap = 100000
)

// Server renders fractals on request over plain HTTP and websockets.
type Server struct {
	MaxPixels int
	MaxIter   int
	Logger    *log.Logger
}

func New(maxPixels, maxIter int, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{MaxPixels: maxPixels, MaxIter: maxIter, Logger: logger}
}

// Handler serves /mandelbrot.pgm, /julia.pgm, and the /ws websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /mandelbrot.pgm", s.imageHandler(ModeMandelbrot))
	mux.HandleFunc("GET /julia.pgm", s.imageHandler(ModeJulia))
	mux.HandleFunc("/ws", s.websocketHandler)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.Logger.Printf("listening on %s", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err = <-errs; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) imageHandler(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseQuery(mode, r.URL.Query())
		if err == nil {
			err = req.Validate(s.MaxPixels, s.MaxIter)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		buf, err := encode(req)
		if err != nil {
			s.Logger.Printf("encoding %s: %v", mode, err)
			http.Error(w, "encoding failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", pgm.ContentType)
		if _, err = w.Write(buf); err != nil {
			s.Logger.Printf("writing %s response: %v", mode, err)
		}
	}
}

// websocketHandler answers each JSON Request message with one binary message
// holding the encoded image, until the client closes the connection.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.Logger.Println(err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	for {
		var req Request
		err = wsjson.Read(ctx, c, &req)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				s.Logger.Printf("ws %s: read: %v", r.RemoteAddr, err)
			}
			return
		}

		if err = req.Validate(s.MaxPixels, s.MaxIter); err != nil {
			_ = c.Close(websocket.StatusPolicyViolation, closeReason(err))
			return
		}

		var buf []byte
		buf, err = encode(req)
		if err != nil {
			s.Logger.Printf("ws %s: encoding %s: %v", r.RemoteAddr, req.Mode, err)
			_ = c.Close(websocket.StatusInternalError, "encoding failed")
			return
		}

		if err = c.Write(ctx, websocket.MessageBinary, buf); err != nil {
			s.Logger.Printf("ws %s: write: %v", r.RemoteAddr, err)
			return
		}
	}
}

func encode(req Request) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := pgm.Encode(buf, req.Render(), req.MaxIter)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// closeReason fits err into the 123 bytes a close frame allows.
func closeReason(err error) string {
	reason := err.Error()
	if len(reason) > 123 {
		reason = strings.ToValidUTF8(reason[:123], "")
	}
	return reason
}
