// Package rpc owns the single persistent connection to Zotero's integration
// port and the command dispatcher that answers its document API calls with
// synthetic document state.
package rpc

import (
	"fmt"
	"log/slog"
	"net"

	"zotroam/pkg/wire"
)

// DefaultAddr is the address Zotero's word-processor integration pipe
// listens on.
const DefaultAddr = "127.0.0.1:23116"

// FrameHandler consumes one reassembled frame and reports whether the
// exchange is finished. Frames are delivered strictly in arrival order;
// the handler runs to completion before the next frame is examined.
type FrameHandler func(transactionID uint32, payload string) (done bool, err error)

// Conn is the process-wide connection to Zotero. It is created lazily on the
// first outbound send and recreated when the transport is observed closed.
// All methods must be called from a single goroutine; the protocol is strict
// request/reply turn-taking, so no locking is needed.
type Conn struct {
	addr    string
	dial    func(addr string) (net.Conn, error)
	onFrame FrameHandler

	sock   net.Conn
	buf    []byte
	closed bool
}

// NewConn creates a connection manager for addr. The socket is not opened
// until the first Send.
func NewConn(addr string, onFrame FrameHandler) *Conn {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Conn{
		addr:    addr,
		dial:    func(a string) (net.Conn, error) { return net.Dial("tcp", a) },
		onFrame: onFrame,
	}
}

// SetDialer overrides the transport dialer. Used by tests and by callers
// that tunnel the protocol over something other than plain TCP.
func (c *Conn) SetDialer(dial func(addr string) (net.Conn, error)) {
	c.dial = dial
}

// EnsureOpen returns after the connection is usable, dialing a fresh socket
// if none exists or the previous one was observed closed. Reopening resets
// the receive accumulator: buffered bytes from a dead connection are not
// valid frame data for the new one.
func (c *Conn) EnsureOpen() error {
	if c.sock != nil && !c.closed {
		return nil
	}
	sock, err := c.dial(c.addr)
	if err != nil {
		return fmt.Errorf("rpc: connect %s: %w", c.addr, err)
	}
	c.sock = sock
	c.buf = nil
	c.closed = false
	slog.Debug("connected", "addr", c.addr)
	return nil
}

// Send writes one encoded frame. A write failure is fatal to the current
// operation and is not retried; the socket is marked closed so the next
// EnsureOpen redials.
func (c *Conn) Send(frame []byte) error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	if _, err := c.sock.Write(frame); err != nil {
		c.markClosed()
		return fmt.Errorf("rpc: send: %w", err)
	}
	return nil
}

// Feed appends received bytes to the accumulator and drains every complete
// frame from it, in order. A single transport delivery may carry several
// frames or a fragment of one; incomplete trailing bytes stay buffered for
// the next delivery. Each frame is sliced off before its handler runs, so a
// handler that sends replies (or even feeds more data) cannot corrupt the
// drain position.
func (c *Conn) Feed(data []byte) (done bool, err error) {
	c.buf = append(c.buf, data...)
	for len(c.buf) >= wire.HeaderSize {
		hdr, err := wire.PeekHeader(c.buf)
		if err != nil {
			return false, err
		}
		total := wire.HeaderSize + int(hdr.Length)
		if len(c.buf) < total {
			return false, nil
		}
		frame := make([]byte, total)
		copy(frame, c.buf[:total])
		c.buf = c.buf[total:]

		txn, payload, err := wire.Decode(frame)
		if err != nil {
			return false, err
		}
		done, err := c.onFrame(txn, payload)
		if err != nil {
			return false, err
		}
		if done {
			return true, nil
		}
	}
	return false, nil
}

// Drive reads from the socket and feeds the reassembler until the frame
// handler reports completion or the transport closes. It blocks the calling
// goroutine; there is deliberately no timeout, since Zotero is expected to
// hold the connection for the whole exchange.
func (c *Conn) Drive() error {
	if err := c.EnsureOpen(); err != nil {
		return err
	}
	chunk := make([]byte, 4096)
	for {
		n, err := c.sock.Read(chunk)
		if n > 0 {
			finished, ferr := c.Feed(chunk[:n])
			if ferr != nil {
				return ferr
			}
			if finished {
				return nil
			}
		}
		if err != nil {
			c.markClosed()
			return fmt.Errorf("rpc: connection closed: %w", err)
		}
	}
}

// Closed reports whether the transport has been observed closed.
func (c *Conn) Closed() bool {
	return c.sock == nil || c.closed
}

// Close tears the connection down.
func (c *Conn) Close() error {
	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.markClosed()
	return err
}

func (c *Conn) markClosed() {
	c.closed = true
	c.buf = nil
}
