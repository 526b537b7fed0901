package proto

import (
	"encoding/binary"

	"github.com/sqlpipe/mywire/pkg/mywireerror"
)

// ReadLenEncInt reads a length-encoded integer from b.
// It returns the value, whether the 0xfb NULL marker was read instead,
// and how many bytes were consumed. n == 0 signals a truncated buffer.
func ReadLenEncInt(b []byte) (value uint64, isNull bool, n int) {
	if len(b) == 0 {
		return 0, false, 0
	}
	switch {
	case b[0] < 0xfb:
		return uint64(b[0]), false, 1
	case b[0] == 0xfb:
		return 0, true, 1
	case b[0] == 0xfc:
		if len(b) < 3 {
			return 0, false, 0
		}
		return uint64(binary.LittleEndian.Uint16(b[1:3])), false, 3
	case b[0] == 0xfd:
		if len(b) < 4 {
			return 0, false, 0
		}
		return uint64(b[1]) | uint64(b[2])<<8 | uint64(b[3])<<16, false, 4
	default: // 0xfe
		if len(b) < 9 {
			return 0, false, 0
		}
		return binary.LittleEndian.Uint64(b[1:9]), false, 9
	}
}

// AppendLenEncInt appends v to dst in length-encoded form.
func AppendLenEncInt(dst []byte, v uint64) []byte {
	switch {
	case v < 0xfb:
		return append(dst, byte(v))
	case v < 1<<16:
		return append(dst, 0xfc, byte(v), byte(v>>8))
	case v < 1<<24:
		return append(dst, 0xfd, byte(v), byte(v>>8), byte(v>>16))
	default:
		return append(dst, 0xfe,
			byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
			byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
	}
}

// ReadLenEncBytes reads a length-encoded byte string from b.
// A nil slice with isNull set represents the 0xfb NULL marker.
func ReadLenEncBytes(b []byte) (s []byte, isNull bool, n int, err error) {
	size, isNull, n := ReadLenEncInt(b)
	if n == 0 {
		return nil, false, 0, mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "truncated length-encoded string")
	}
	if isNull {
		return nil, true, n, nil
	}
	if uint64(len(b)-n) < size {
		return nil, false, 0, mywireerror.New(mywireerror.MYWIRE_PROTOCOL_ERROR, "length-encoded string overruns packet")
	}
	return b[n : n+int(size)], false, n + int(size), nil
}

// AppendLenEncBytes appends s to dst as a length-encoded byte string.
func AppendLenEncBytes(dst []byte, s []byte) []byte {
	dst = AppendLenEncInt(dst, uint64(len(s)))
	return append(dst, s...)
}

// readNullTermString reads a NUL-terminated string from b.
func readNullTermString(b []byte) (s string, n int) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), i + 1
		}
	}
	return string(b), len(b)
}
