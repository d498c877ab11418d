package listener

import (
	"bytes"
	"io"
)

// crlfConn translates line endings between the console (\n) and the wire
// (\r\n out, \r\n or bare \r in).
type crlfConn struct {
	rw io.ReadWriter
}

func newCRLFConn(rw io.ReadWriter) io.ReadWriter {
	return &crlfConn{rw: rw}
}

func (c *crlfConn) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)
	if n > 0 {
		data := bytes.ReplaceAll(p[:n], []byte("\r\n"), []byte("\n"))
		data = bytes.ReplaceAll(data, []byte("\r"), []byte("\n"))
		n = copy(p, data)
	}
	return n, err
}

func (c *crlfConn) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	_, err := c.rw.Write(converted)
	// Report the caller's length, not the expanded one.
	return len(p), err
}
