// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment required for AVX-512 (64 bytes).
const Alignment = 64

// AllocAligned allocates a zeroed byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	// Over-allocate so the start can be shifted up to Alignment-1 bytes.
	buf := make([]byte, size+Alignment)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// AllocAlignedFloat32 allocates a zeroed float32 slice of the given length with 64-byte alignment.
func AllocAlignedFloat32(n int) []float32 {
	return AllocAlignedOf[float32](n)
}

// AllocAlignedOf allocates a zeroed slice of n elements of T with 64-byte alignment.
//
// T must not contain pointers: the backing array is a []byte, which the
// garbage collector does not scan.
func AllocAlignedOf[T any](n int) []T {
	if n <= 0 {
		return nil
	}

	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return make([]T, n)
	}

	byteSlice := AllocAligned(n * size)
	ptr := unsafe.Pointer(&byteSlice[0]) //nolint:gosec // unsafe is required for memory alignment
	return unsafe.Slice((*T)(ptr), n)    //nolint:gosec // unsafe is required for memory alignment
}

// SizeOf returns the number of bytes AllocAlignedOf[T](n) reserves,
// including the alignment slack.
func SizeOf[T any](n int) int64 {
	if n <= 0 {
		return 0
	}
	var zero T
	return int64(n)*int64(unsafe.Sizeof(zero)) + Alignment
}
