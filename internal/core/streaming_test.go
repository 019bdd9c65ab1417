package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{"file with BOM", append([]byte{0xEF, 0xBB, 0xBF}, "name,role"...), "name,role"},
		{"file without BOM", []byte("name,role"), "name,role"},
		{"empty file", []byte{}, ""},
		{"only BOM", []byte{0xEF, 0xBB, 0xBF}, ""},
		{"partial BOM kept", []byte{0xEF, 0xBB, 'a', 'b', 'c'}, string([]byte{0xEF, 0xBB, 'a', 'b', 'c'})},
		{"shorter than BOM", []byte("a"), "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(SkipBOM(bytes.NewReader(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
		replaced int64
	}{
		{"valid ASCII", []byte("hello,world"), "hello,world", 0},
		{"valid multibyte", []byte("Zoë,Müller"), "Zoë,Müller", 0},
		{"invalid byte replaced", []byte{'h', 'e', 0x80, 'l', 'o'}, "he\uFFFDlo", 1},
		{"truncated rune at end", []byte{'o', 'k', 0xC3}, "ok\uFFFD", 1},
		{"latin1 byte", []byte{'J', 'o', 's', 0xE9}, "Jos\uFFFD", 1},
		{"two bad bytes", []byte{0xFF, ',', 0xFE}, "\uFFFD,\uFFFD", 2},
		{"empty input", []byte{}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewUTF8Sanitizer(bytes.NewReader(tt.input))
			result, err := io.ReadAll(s)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
			assert.Equal(t, tt.replaced, s.Replaced())
		})
	}
}

func TestUTF8Sanitizer_RuneSplitAcrossReads(t *testing.T) {
	input := "名前,役割\nJané,Dev\n"

	// OneByteReader forces every multi-byte rune to arrive in pieces.
	result, err := io.ReadAll(NewUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input))))
	require.NoError(t, err)
	assert.Equal(t, input, string(result))
}

func TestUTF8Sanitizer_SmallBuffer(t *testing.T) {
	s := NewUTF8Sanitizer(bytes.NewReader([]byte{0xE9}))

	_, err := s.Read(make([]byte, 2))
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	buf := make([]byte, 3)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "\uFFFD", string(buf[:n]))
}

func TestUTF8Sanitizer_PropagatesError(t *testing.T) {
	boom := io.ErrClosedPipe
	_, err := io.ReadAll(NewUTF8Sanitizer(iotest.ErrReader(boom)))
	assert.ErrorIs(t, err, boom)
}

func TestCountingReader(t *testing.T) {
	input := strings.Repeat("x", 1000)
	reader := NewCountingReader(strings.NewReader(input))

	buf := make([]byte, 100)
	total := 0
	for {
		n, err := reader.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, len(input), total)
	assert.Equal(t, int64(len(input)), reader.BytesRead())
}

func TestWrapForStreaming(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, 'h', 'e', 0x80, 'l', 'o')

	reader, counter := WrapForStreaming(bytes.NewReader(input))
	result, err := io.ReadAll(reader)
	require.NoError(t, err)

	assert.Equal(t, "he\uFFFDlo", string(result))
	assert.Equal(t, int64(1), reader.Replaced())
	// Raw bytes are counted, BOM included.
	assert.Equal(t, int64(len(input)), counter.BytesRead())
}
