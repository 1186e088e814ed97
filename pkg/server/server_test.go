package server

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/willbeason/escape-fractal/pkg/pgm"
	"github.com/willbeason/escape-fractal/pkg/render"
)

// testMaxIter is the iteration cap of servers built by newTestServer.
const testMaxIter = 1000

func newTestServer(t *testing.T, maxPixels int) *httptest.Server {
	t.Helper()

	s := New(maxPixels, testMaxIter, log.New(io.Discard, "", 0))
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestImageHandler(t *testing.T) {
	ts := newTestServer(t, DefaultMaxPixels)

	tcs := []struct {
		name string
		path string
		want *render.Grid
	}{
		{
			name: "mandelbrot",
			path: "/mandelbrot.pgm?width=20&height=10&maxIter=50",
			want: render.Mandelbrot(20, 10, 50),
		},
		{
			name: "julia default constant",
			path: "/julia.pgm?width=12&height=12&maxIter=30",
			want: render.Julia(12, 12, 30, render.DefaultJuliaC),
		},
		{
			name: "julia zero constant",
			path: "/julia.pgm?width=4&height=4&maxIter=30&re=0&im=0",
			want: render.Julia(4, 4, 30, 0),
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tc.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if got := resp.Header.Get("Content-Type"); got != pgm.ContentType {
				t.Errorf("Content-Type = %q, want %q", got, pgm.ContentType)
			}

			g, _, err := pgm.Decode(resp.Body, DefaultMaxPixels)
			if err != nil {
				t.Fatal(err)
			}
			if !g.Equal(tc.want) {
				t.Error("served grid differs from a local render")
			}
		})
	}
}

func TestImageHandler_BadRequest(t *testing.T) {
	ts := newTestServer(t, 100)

	for _, path := range []string{
		"/mandelbrot.pgm",
		"/mandelbrot.pgm?width=abc&height=2",
		"/mandelbrot.pgm?width=-1&height=2",
		"/mandelbrot.pgm?width=2&height=2&maxIter=0",
		"/mandelbrot.pgm?width=4&height=4&maxIter=1001",
		"/mandelbrot.pgm?width=4&height=4&maxIter=1099511627776",
		"/mandelbrot.pgm?width=20&height=20",
		"/julia.pgm?width=2&height=2&re=NaN",
		"/julia.pgm?width=2&height=2&im=x",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestFetch(t *testing.T) {
	ts := newTestServer(t, DefaultMaxPixels)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req := NewRequest(ModeJulia, 40, 30)
	req.MaxIter = 100

	g, maxVal, err := Fetch(ctx, wsURL(ts), req)
	if err != nil {
		t.Fatal(err)
	}
	if maxVal != 100 {
		t.Errorf("max value = %d, want 100", maxVal)
	}
	if !g.Equal(render.Julia(40, 30, 100, render.DefaultJuliaC)) {
		t.Error("fetched grid differs from a local render")
	}
}

func TestWebsocket_SeveralRequests(t *testing.T) {
	ts := newTestServer(t, DefaultMaxPixels)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer c.CloseNow()

	for _, req := range []Request{
		NewRequest(ModeMandelbrot, 8, 8),
		NewRequest(ModeJulia, 8, 8),
	} {
		if err = wsjson.Write(ctx, c, req); err != nil {
			t.Fatal(err)
		}

		typ, bs, err := c.Read(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if typ != websocket.MessageBinary {
			t.Errorf("%s: message type = %v, want binary", req.Mode, typ)
		}
		if !strings.HasPrefix(string(bs), "P2\n8 8\n400\n") {
			t.Errorf("%s: unexpected header in %q", req.Mode, string(bs[:min(len(bs), 20)]))
		}
	}

	if err = c.Close(websocket.StatusNormalClosure, ""); err != nil {
		t.Error(err)
	}
}

func TestFetch_Rejected(t *testing.T) {
	ts := newTestServer(t, 100)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tcs := []struct {
		name string
		req  Request
	}{
		{name: "too large", req: NewRequest(ModeMandelbrot, 11, 10)},
		{name: "unknown mode", req: NewRequest("burning-ship", 2, 2)},
		{name: "zero height", req: NewRequest(ModeJulia, 2, 0)},
		{name: "iterations over cap", req: Request{Mode: ModeMandelbrot, Width: 4, Height: 4, MaxIter: 1 << 40}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Fetch(ctx, wsURL(ts), tc.req)
			if got := websocket.CloseStatus(err); got != websocket.StatusPolicyViolation {
				t.Errorf("close status = %v (err %v), want StatusPolicyViolation", got, err)
			}
		})
	}
}

func TestRequest_Validate(t *testing.T) {
	tcs := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{name: "mandelbrot", req: NewRequest(ModeMandelbrot, 10, 10)},
		{name: "julia at cap", req: NewRequest(ModeJulia, 10, 10)},
		{name: "over cap", req: NewRequest(ModeJulia, 10, 11), wantErr: true},
		{name: "no mode", req: NewRequest("", 1, 1), wantErr: true},
		{name: "negative width", req: NewRequest(ModeMandelbrot, -1, 1), wantErr: true},
		{name: "iterations at cap", req: Request{Mode: ModeMandelbrot, Width: 1, Height: 1, MaxIter: 50}},
		{name: "iterations over cap", req: Request{Mode: ModeMandelbrot, Width: 1, Height: 1, MaxIter: 51}, wantErr: true},
		{name: "infinite constant", req: Request{Mode: ModeJulia, Width: 1, Height: 1, MaxIter: 1, Im: math.Inf(1)}, wantErr: true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate(100, 50)
			if tc.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Validate() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := New(DefaultMaxPixels, DefaultMaxIterCap, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.ListenAndServe(ctx, "127.0.0.1:0")
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}
}

func TestRequest_EncodedSize(t *testing.T) {
	for _, req := range []Request{
		NewRequest(ModeMandelbrot, 1, 1),
		NewRequest(ModeMandelbrot, 37, 23),
		NewRequest(ModeJulia, 64, 3),
		{Mode: ModeJulia, Width: 5, Height: 5, MaxIter: 9, Re: 0, Im: 0},
	} {
		buf, err := encode(req)
		if err != nil {
			t.Fatal(err)
		}
		if got := req.EncodedSize(); len(buf) > got {
			t.Errorf("%s %dx%d maxIter=%d: encoded %d bytes, EncodedSize() = %d",
				req.Mode, req.Width, req.Height, req.MaxIter, len(buf), got)
		}
	}
}

func TestFetch_LargerThanDefaultReadLimit(t *testing.T) {
	ts := newTestServer(t, DefaultMaxPixels)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 200x200 values of up to four digits is well past 32KiB.
	req := NewRequest(ModeMandelbrot, 200, 200)
	req.MaxIter = testMaxIter

	g, _, err := Fetch(ctx, wsURL(ts), req)
	if err != nil {
		t.Fatal(err)
	}
	if g.Width != 200 || g.Height != 200 {
		t.Errorf("fetched %dx%d, want 200x200", g.Width, g.Height)
	}
}

func TestCloseReason(t *testing.T) {
	tcs := []struct {
		name string
		msg  string
	}{
		{name: "short", msg: "bad request"},
		{name: "ascii over limit", msg: strings.Repeat("x", 200)},
		{name: "multibyte over limit", msg: "unknown mode: " + strings.Repeat("ñ", 100)},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			got := closeReason(errors.New(tc.msg))
			if len(got) > 123 {
				t.Errorf("len(closeReason()) = %d, want at most 123", len(got))
			}
			if !utf8.ValidString(got) {
				t.Errorf("closeReason() = %q is not valid UTF-8", got)
			}
			if !strings.HasPrefix(tc.msg, got) {
				t.Errorf("closeReason() = %q is not a prefix of the message", got)
			}
		})
	}
}
