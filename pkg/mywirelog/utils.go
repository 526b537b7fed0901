package mywirelog

import (
	"reflect"
)

// GetPointer does the same thing as fmt.Sprintf("%p", &v) but fast.
// Used to tag log lines with a stable per-connection identifier.
func GetPointer(value any) uint {
	ptr := reflect.ValueOf(value).Pointer()
	uintPtr := uintptr(ptr)
	return uint(uintPtr)
}
