// Package strings provides pooled string building utilities for spawnpool.
// Error formatting and log message assembly sit on every reported lifecycle
// violation, so the formatting path reuses builders instead of allocating.
package strings

import (
	"fmt"
	"sync"
	"unsafe"
)

// BytesToString converts byte slice to string without allocation.
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts string to byte slice without allocation.
// WARNING: The returned byte slice shares memory with the string.
// Do not modify the returned slice.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Builder provides efficient string building over a reusable byte buffer.
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{
		buf: make([]byte, 0, capacity),
	}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string using zero-copy conversion.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Len returns the length of the built string.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

var builderPool = &sync.Pool{
	New: func() interface{} {
		return NewBuilder(256)
	},
}

// GetBuilder retrieves a pooled builder, reset and ready for use.
func GetBuilder() *Builder {
	builder := builderPool.Get().(*Builder)
	builder.Reset()
	return builder
}

// PutBuilder returns a builder to the pool.
func PutBuilder(builder *Builder) {
	if builder == nil {
		return
	}
	builder.Reset()
	builderPool.Put(builder)
}

// Clone creates a copy of a string (useful when you need to own the memory).
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, s)
	return BytesToString(b)
}

// Concat efficiently concatenates strings using a pooled builder.
func Concat(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	builder := GetBuilder()
	defer PutBuilder(builder)

	for _, s := range parts {
		builder.WriteString(s)
	}

	return Clone(builder.String())
}

// Sprintf provides a pooled alternative to fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	builder := GetBuilder()
	defer PutBuilder(builder)

	fmt.Fprintf(builder, format, args...)

	return Clone(builder.String())
}

// Join joins strings using a delimiter with a single allocation.
func Join(parts []string, delimiter string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	builder := GetBuilder()
	defer PutBuilder(builder)

	for i, s := range parts {
		if i > 0 {
			builder.WriteString(delimiter)
		}
		builder.WriteString(s)
	}

	return Clone(builder.String())
}
