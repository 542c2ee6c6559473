package bf

import (
	"bufio"
	"io"
)

// ByteSink receives one byte per output instruction. Flush is called after
// every byte so output is observable as it is produced.
type ByteSink interface {
	WriteByte(c byte) error
	Flush() error
}

// ByteSource provides one byte per input instruction and io.EOF once the
// input is exhausted.
type ByteSource interface {
	ReadByte() (byte, error)
}

// NewByteSink adapts w for output. Writers that already implement ByteSink
// are used as is; a nil writer discards output.
func NewByteSink(w io.Writer) ByteSink {
	if w == nil {
		return bufio.NewWriter(io.Discard)
	}
	if sink, ok := w.(ByteSink); ok {
		return sink
	}
	return bufio.NewWriter(w)
}

// NewByteSource adapts r for input. A nil reader behaves as empty input.
func NewByteSource(r io.Reader) ByteSource {
	if r == nil {
		return emptySource{}
	}
	if src, ok := r.(ByteSource); ok {
		return src
	}
	return bufio.NewReader(r)
}

type emptySource struct{}

func (emptySource) ReadByte() (byte, error) {
	return 0, io.EOF
}
