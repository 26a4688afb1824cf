package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compress(c Compressor, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(c Compressor, data []byte) ([]byte, error) {
	r, err := c.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func TestRoundTripAllAlgorithms(t *testing.T) {
	original := bytes.Repeat([]byte("Id;Value;IsActive;Name;Date\n1;0.5000;true;item_1;2024-01-01\n"), 50)

	for _, algo := range Algorithms {
		for _, level := range []Level{Fastest, Default, Better, Best} {
			t.Run(string(algo)+"/"+level.String(), func(t *testing.T) {
				comp, err := NewCompressor(&Config{Algorithm: algo, Level: level})
				require.NoError(t, err)
				assert.Equal(t, algo, comp.Algorithm())
				assert.Equal(t, level, comp.Level())

				compressed, err := compress(comp, original)
				require.NoError(t, err)
				if algo != None {
					assert.Less(t, len(compressed), len(original))
				}

				decompressed, err := decompress(comp, compressed)
				require.NoError(t, err)
				assert.Equal(t, original, decompressed)
			})
		}
	}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in   string
		want Algorithm
		ok   bool
	}{
		{"", None, true},
		{"none", None, true},
		{"ZSTD", Zstd, true},
		{"lz4", LZ4, true},
		{"brotli", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCompressorDefaultsAndErrors(t *testing.T) {
	comp, err := NewCompressor(nil)
	require.NoError(t, err)
	assert.Equal(t, Snappy, comp.Algorithm())

	_, err = NewCompressor(&Config{Algorithm: "rar"})
	assert.Error(t, err)
}

func TestCorruptInputFails(t *testing.T) {
	comp, err := NewCompressor(&Config{Algorithm: Gzip})
	require.NoError(t, err)
	_, err = decompress(comp, []byte("definitely not gzip"))
	assert.Error(t, err)
}
