package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// commandChunk is the read size used for client command frames, matching
// the original server's one-recv-per-command convention: a client command
// is short enough to always arrive in a single read.
const commandChunk = 1024

// bufferPool recycles the scratch buffer Encode uses to avoid an
// allocation on every outgoing frame.
var bufferPool = sync.Pool{
	New: func() any { return &bytes.Buffer{} },
}

// ErrEmbeddedNewline is returned by ReadCommand when a single read
// contains more than one line. It is a format error, not a dead
// connection: callers should reject the command to the offending seat
// and let it retry, not tear the session down.
var ErrEmbeddedNewline = fmt.Errorf("protocol: command contains embedded newline")

// Encode serializes a Message as a single JSON line, newline-terminated,
// ready to be written directly to a connection.
func Encode(msg Message) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	enc := json.NewEncoder(buf)
	if err := enc.Encode(msg); err != nil {
		return nil, fmt.Errorf("protocol: encode frame: %w", err)
	}

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// CommandReader reads raw, plain-text client commands off a connection:
// no JSON wrapper, one command per read, matching the wire format of §6.
// It is not safe for concurrent use; each session owns exactly one.
type CommandReader struct {
	r   io.Reader
	buf []byte
}

// NewCommandReader wraps r for command-at-a-time reading.
func NewCommandReader(r io.Reader) *CommandReader {
	return &CommandReader{r: r, buf: make([]byte, commandChunk)}
}

// ReadCommand blocks for the next chunk and returns it as trimmed text. A
// command containing an embedded newline is rejected as malformed rather
// than silently split, per the supplemented intake behavior in SPEC_FULL.
func (c *CommandReader) ReadCommand() (string, error) {
	n, err := c.r.Read(c.buf)
	if n == 0 && err != nil {
		return "", err
	}
	raw := string(c.buf[:n])
	if strings.Contains(strings.TrimRight(raw, "\r\n"), "\n") {
		return "", ErrEmbeddedNewline
	}
	return strings.TrimSpace(raw), nil
}

// DecodeUpdate re-decodes a Message's Data field into an Update, for
// callers that received a frame generically and now know its shape.
func DecodeUpdate(msg Message) (Update, error) {
	raw, err := json.Marshal(msg.Data)
	if err != nil {
		return Update{}, err
	}
	var update Update
	if err := json.Unmarshal(raw, &update); err != nil {
		return Update{}, err
	}
	return update, nil
}
