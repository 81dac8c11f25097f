//go:build windows
// +build windows

package ipc

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// CreatePlatformListener creates a TCP listener on localhost (Windows)
// Windows doesn't support Unix domain sockets reliably, so we use TCP localhost.
// TCP on localhost is still very fast (sub-millisecond latency).
func CreatePlatformListener(socketPath string) (net.Listener, error) {
	// Ignore socketPath on Windows, use TCP localhost instead
	listener, err := net.Listen("tcp", DefaultTCPAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen tcp %s", DefaultTCPAddr)
	}

	return listener, nil
}

// ConnectPlatform connects to the IPC server via TCP (Windows)
func ConnectPlatform(socketPath string) (net.Conn, error) {
	// Ignore socketPath on Windows, use TCP localhost instead
	conn, err := net.DialTimeout("tcp", DefaultTCPAddr, time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "dial tcp")
	}
	return conn, nil
}

// GetPlatformAddress returns the address string for logging
func GetPlatformAddress(socketPath string) string {
	return DefaultTCPAddr + " (TCP localhost - Windows mode)"
}
