package strings

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBytesToString(t *testing.T) {
	assert.Equal(t, "hello", BytesToString([]byte("hello")))
	assert.Equal(t, "", BytesToString(nil))
	assert.Equal(t, "", BytesToString([]byte{}))
}

func TestStringToBytes(t *testing.T) {
	assert.Equal(t, []byte("hello"), StringToBytes("hello"))
	assert.Nil(t, StringToBytes(""))
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(8)
	b.WriteString("spawn")
	assert.NoError(t, b.WriteByte('-'))

	n, err := b.Write([]byte("pool"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, "spawn-pool", b.String())
	assert.Equal(t, 10, b.Len())

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, "", b.String())
}

func TestBuilderFprintf(t *testing.T) {
	b := NewBuilder(16)
	fmt.Fprintf(b, "%s=%d", "count", 42)
	assert.Equal(t, "count=42", b.String())
}

func TestPooledBuilderIsReset(t *testing.T) {
	b := GetBuilder()
	b.WriteString("leftover")
	PutBuilder(b)

	b = GetBuilder()
	assert.Equal(t, 0, b.Len(), "pooled builders come back empty")
	PutBuilder(b)

	PutBuilder(nil) // tolerated
}

func TestClone(t *testing.T) {
	src := []byte("mutable")
	s := BytesToString(src)
	cloned := Clone(s)

	src[0] = 'X'
	assert.Equal(t, "mutable", cloned, "clone owns its memory")
	assert.Equal(t, "", Clone(""))
}

func TestConcat(t *testing.T) {
	assert.Equal(t, "", Concat())
	assert.Equal(t, "one", Concat("one"))
	assert.Equal(t, "a/b/c", Concat("a", "/b", "/c"))
}

func TestSprintf(t *testing.T) {
	assert.Equal(t, "plain", Sprintf("plain"))
	assert.Equal(t, "invalid_state: despawn of inst-3",
		Sprintf("%s: despawn of %s", "invalid_state", "inst-3"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join(nil, ","))
	assert.Equal(t, "one", Join([]string{"one"}, ","))
	assert.Equal(t, "a,b,c", Join([]string{"a", "b", "c"}, ","))
}
