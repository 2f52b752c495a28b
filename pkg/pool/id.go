package pool

import "sync/atomic"

// idCounter provides atomic unique ID generation
var idCounter uint64

// GenerateID generates a unique ID with the specified prefix.
// The ID format is "prefix-number" where number is an atomic counter, so
// IDs are unique for the lifetime of the process. This function is safe
// for concurrent use.
//
// Example:
//
//	id := pool.GenerateID("tpl")  // Returns "tpl-1", "tpl-2", etc.
func GenerateID(prefix string) string {
	id := atomic.AddUint64(&idCounter, 1)

	buf := make([]byte, 0, len(prefix)+21)
	buf = append(buf, prefix...)
	buf = append(buf, '-')
	buf = appendUint64(buf, id)

	return string(buf)
}

// appendUint64 efficiently appends uint64 to byte slice
func appendUint64(buf []byte, n uint64) []byte {
	if n == 0 {
		return append(buf, '0')
	}

	temp := n
	digits := 0
	for temp > 0 {
		temp /= 10
		digits++
	}

	start := len(buf)
	buf = buf[:start+digits]

	for i := digits - 1; i >= 0; i-- {
		buf[start+i] = byte('0' + n%10)
		n /= 10
	}

	return buf
}
