package apiclient

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"

	"github.com/robertosw/gamepad-bridge/apitypes"
)

// Subscribe opens the event stream. Events arrive on the returned channel
// until the context is canceled or the server closes the connection; the
// channel is closed when the stream ends. The returned cancel func closes
// the connection and may be called more than once.
func (c *Client) Subscribe(ctx context.Context) (<-chan apitypes.Event, func(), error) {
	if c.t.mock != nil {
		return nil, nil, fmt.Errorf("subscribe: streaming is not supported by the mock transport")
	}
	d := &net.Dialer{Timeout: c.t.cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.t.addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial: %w", err)
	}
	if _, err := conn.Write([]byte("subscribe\x00")); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("write request: %w", err)
	}

	events := make(chan apitypes.Event, 16)
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	cancel := func() {
		stop()
		conn.Close()
	}
	go func() {
		defer close(events)
		defer cancel()
		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 0, 4096), 1<<20)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			var ev apitypes.Event
			if err := json.Unmarshal(line, &ev); err != nil {
				continue
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, cancel, nil
}
