//go:build !windows
// +build !windows

package ipc

import (
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
)

// CreatePlatformListener creates a Unix domain socket listener (Linux/macOS)
// Unix sockets have lower latency than TCP for local IPC
func CreatePlatformListener(socketPath string) (net.Listener, error) {
	// Clean up existing socket
	if err := CleanupSocket(socketPath); err != nil {
		return nil, errors.Wrap(err, "cleanup socket")
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, errors.Wrap(err, "listen unix")
	}

	// Owner only: spectators run as the same user
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, errors.Wrap(err, "chmod socket")
	}

	return listener, nil
}

// ConnectPlatform connects to the IPC socket (Unix domain socket on Linux/macOS)
func ConnectPlatform(socketPath string) (net.Conn, error) {
	conn, err := net.DialTimeout("unix", socketPath, time.Second)
	if err != nil {
		return nil, errors.Wrap(err, "dial unix")
	}
	return conn, nil
}

// GetPlatformAddress returns the address string for logging
func GetPlatformAddress(socketPath string) string {
	return socketPath
}
