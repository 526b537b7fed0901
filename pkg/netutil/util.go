//go:build linux

package netutil

import (
	"net"
	"syscall"
	"unsafe"
)

// tcpInfo is a subset of the linux tcp_info struct (from linux/tcp.h).
// Only the State field is queried.
type tcpInfo struct {
	State uint8
}

// TCP states from linux/tcp.h
const (
	tcpEstablished = 1
)

// TCPAlive queries the kernel's TCP state via getsockopt(TCP_INFO) and
// reports whether conn is in ESTABLISHED state. Unlike a peek-based check
// this detects half-closed (CLOSE_WAIT) connections, so a dead server is
// noticed before the next exchange is written into the void.
func TCPAlive(conn net.Conn) bool {
	if conn == nil {
		return false
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return false
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return false
	}

	var alive bool
	controlErr := rawConn.Control(func(fd uintptr) {
		var info tcpInfo
		infoLen := uint32(unsafe.Sizeof(info))

		_, _, errno := syscall.Syscall6(
			syscall.SYS_GETSOCKOPT,
			fd,
			syscall.SOL_TCP,
			syscall.TCP_INFO,
			uintptr(unsafe.Pointer(&info)),
			uintptr(unsafe.Pointer(&infoLen)),
			0,
		)

		if errno != 0 {
			alive = false
			return
		}

		alive = info.State == tcpEstablished
	})

	if controlErr != nil {
		return false
	}
	return alive
}
