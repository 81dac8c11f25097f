// Package ipc feeds arena snapshots from a running server to local
// spectators over a Unix domain socket (TCP localhost on Windows).
package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultSocketPath is the Unix socket path for IPC
	DefaultSocketPath = "/tmp/apex-arena.sock"

	// DefaultTCPAddr is used instead of a socket on Windows
	DefaultTCPAddr = "127.0.0.1:7471"

	// Message types
	MsgTypeSnapshot byte = 0x01
	MsgTypeConfig   byte = 0x04

	// Protocol version for compatibility checking
	ProtocolVersion uint16 = 2

	// Connection settings
	MaxMessageSize = 1024 * 1024 // 1MB max message
	WriteTimeout   = 50 * time.Millisecond
	ReadTimeout    = 2 * time.Second // No snapshot for this long means the server is gone
	ReconnectDelay = 500 * time.Millisecond
)

// ConfigMessage describes the arena, sent once to each new spectator
type ConfigMessage struct {
	ArenaWidth  float64
	ArenaHeight float64
	TickRate    int
}

// Header is the message header for framing
type Header struct {
	Version  uint16
	Type     byte
	Reserved byte
	Length   uint32
}

const HeaderSize = 8 // 2 + 1 + 1 + 4

// WriteMessage writes a framed, gob-encoded message
func WriteMessage(w io.Writer, msgType byte, data interface{}) error {
	buf := getBuffer()
	defer putBuffer(buf)

	if data != nil {
		if err := gob.NewEncoder(buf).Encode(data); err != nil {
			return errors.Wrap(err, "gob encode")
		}
	}

	if buf.Len() > MaxMessageSize {
		return errors.Errorf("message too large: %d > %d", buf.Len(), MaxMessageSize)
	}

	headerBuf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(headerBuf[0:2], ProtocolVersion)
	headerBuf[2] = msgType
	binary.LittleEndian.PutUint32(headerBuf[4:8], uint32(buf.Len()))

	if _, err := w.Write(headerBuf); err != nil {
		return errors.Wrap(err, "write header")
	}
	if buf.Len() > 0 {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return errors.Wrap(err, "write body")
		}
	}
	return nil
}

// ReadMessage reads one framed message
func ReadMessage(r io.Reader) (byte, []byte, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return 0, nil, errors.Wrap(err, "read header")
	}

	header := Header{
		Version: binary.LittleEndian.Uint16(headerBuf[0:2]),
		Type:    headerBuf[2],
		Length:  binary.LittleEndian.Uint32(headerBuf[4:8]),
	}

	if header.Version != ProtocolVersion {
		return 0, nil, errors.Errorf("version mismatch: got %d, want %d", header.Version, ProtocolVersion)
	}
	if header.Length > MaxMessageSize {
		return 0, nil, errors.Errorf("message too large: %d > %d", header.Length, MaxMessageSize)
	}

	var body []byte
	if header.Length > 0 {
		body = make([]byte, header.Length)
		if _, err := io.ReadFull(r, body); err != nil {
			return 0, nil, errors.Wrap(err, "read body")
		}
	}
	return header.Type, body, nil
}

// Decode gob-decodes a message body into v
func Decode(data []byte, v interface{}) error {
	return errors.Wrap(gob.NewDecoder(bytes.NewReader(data)).Decode(v), "gob decode")
}

// CleanupSocket removes the socket file if it exists
func CleanupSocket(path string) error {
	if _, err := os.Stat(path); err == nil {
		return os.Remove(path)
	}
	return nil
}

// CreateListener opens the platform listener
func CreateListener(path string) (net.Listener, error) {
	return CreatePlatformListener(path)
}

// Buffer pool for encoding
var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	bufferPool.Put(buf)
}
