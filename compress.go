package bootimg

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// NewDecoder wraps r in a reader that decompresses format f.
func NewDecoder(f Format, r io.Reader) (io.Reader, error) {
	switch f {
	case GZIP:
		return gzip.NewReader(r)
	case XZ:
		return xz.NewReader(r)
	case LZMA:
		return lzma.NewReader(r)
	case BZIP2:
		return bzip2.NewReader(r, nil)
	case LZ4, LZ4_LEGACY:
		return lz4.NewReader(r), nil
	default:
		return nil, fmt.Errorf("%s: unsupported compression format", f)
	}
}

// Decompress returns the decompressed contents of data.
func Decompress(f Format, data []byte) ([]byte, error) {
	decoder, err := NewDecoder(f, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", f, err)
	}
	return out, nil
}
