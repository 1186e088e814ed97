package server

import (
	"bytes"
	"context"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/willbeason/escape-fractal/pkg/pgm"
	"github.com/willbeason/escape-fractal/pkg/render"
)

// Fetch asks the websocket endpoint at url for one render and returns the
// decoded grid and its maximum gray value.
func Fetch(ctx context.Context, url string, req Request) (*render.Grid, int, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("dialing %s: %w", url, err)
	}
	defer c.CloseNow()

	// Images are usually larger than the default 32KiB message limit.
	c.SetReadLimit(int64(max(req.EncodedSize(), 32768)))

	err = wsjson.Write(ctx, c, req)
	if err != nil {
		return nil, 0, fmt.Errorf("sending request: %w", err)
	}

	_, bs, err := c.Read(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("reading image: %w", err)
	}

	g, maxVal, err := pgm.Decode(bytes.NewReader(bs), req.Width*req.Height)
	if err != nil {
		return nil, 0, err
	}

	return g, maxVal, c.Close(websocket.StatusNormalClosure, "")
}
