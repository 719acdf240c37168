package rpc

import (
	"encoding/json"
	"fmt"
	"io"
	"net"

	"github.com/data-race/LLMEmpoweredCommandPredictor-sub000/internal/bufpool"
)

// Codec wraps a single duplex connection with a streaming JSON decoder
// for reads and a pooled-buffer encoder for writes, framing each
// Request/Response as one self-delimiting JSON value, the same
// decoder/encoder-over-net.Conn pattern the neru IPC client uses,
// generalized to a long-lived connection reused across many calls
// instead of one command per connection. Writes marshal into a pooled
// buffer and hit the wire with a single Write call, the same
// buffer-reuse discipline applied here to JSON-RPC framing instead of
// DNS wire packets.
type Codec struct {
	conn net.Conn
	dec  *json.Decoder
}

// NewCodec attaches a Codec to an already-established connection.
func NewCodec(conn net.Conn) *Codec {
	dec := json.NewDecoder(conn)
	dec.DisallowUnknownFields()
	return &Codec{
		conn: conn,
		dec:  dec,
	}
}

// WriteRequest encodes req as the next frame on the connection.
func (c *Codec) WriteRequest(req Request) error {
	return c.writeFrame(req)
}

func (c *Codec) writeFrame(v any) error {
	buf := bufpool.Get()
	defer bufpool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if _, err := c.conn.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", ErrPeerDisconnected, err)
	}
	return nil
}

// ReadRequest decodes the next frame as a Request. io.EOF and closed
// connections are normalized to ErrPeerDisconnected; any other decode
// failure is ErrMalformedFrame.
func (c *Codec) ReadRequest() (Request, error) {
	var req Request
	if err := c.dec.Decode(&req); err != nil {
		return Request{}, wrapReadError(err)
	}
	return req, nil
}

// WriteResponse encodes resp as the next frame on the connection.
func (c *Codec) WriteResponse(resp Response) error {
	return c.writeFrame(resp)
}

// ReadResponse decodes the next frame as a Response.
func (c *Codec) ReadResponse() (Response, error) {
	var resp Response
	if err := c.dec.Decode(&resp); err != nil {
		return Response{}, wrapReadError(err)
	}
	return resp, nil
}

// Close closes the underlying connection.
func (c *Codec) Close() error {
	return c.conn.Close()
}

func wrapReadError(err error) error {
	if err == io.EOF {
		return ErrPeerDisconnected
	}
	if ne, ok := err.(net.Error); ok {
		if ne.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrPeerDisconnected, err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
}
