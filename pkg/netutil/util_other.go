//go:build !linux

package netutil

import "net"

// TCPAlive is a stub for non-Linux platforms. TCP_INFO is Linux-specific,
// so elsewhere the connection is assumed alive and a dead peer is detected
// on first use instead.
func TCPAlive(conn net.Conn) bool {
	return conn != nil
}
