package bootimg_test

import (
	"bootimg"
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func newHeader(pageSize uint32, cmdline string) *bootimg.Header {
	hdr := &bootimg.Header{
		KernelAddr:  0x10008000,
		RamdiskAddr: 0x11000000,
		SecondAddr:  0x10f00000,
		TagsAddr:    0x10000100,
		PageSize:    pageSize,
		Reserved:    0xdeadbeef,
		Cmdline:     make([]byte, bootimg.BOOT_CMDLINE_SIZE),
	}
	copy(hdr.Magic[:], bootimg.BOOT_MAGIC)
	copy(hdr.Name[:], "testboard")
	copy(hdr.Cmdline, cmdline)
	return hdr
}

// buildImage lays out hdr and the sections the way a packer would.
func buildImage(t *testing.T, hdr *bootimg.Header, kernel, ramdisk, second, dt []byte) []byte {
	t.Helper()
	hdr.KernelSize = uint32(len(kernel))
	hdr.RamdiskSize = uint32(len(ramdisk))
	hdr.SecondSize = uint32(len(second))
	hdr.DtSize = uint32(len(dt))
	hdr.Id = bootimg.ComputeID(kernel, ramdisk, second, dt)

	pad := func(b []byte) []byte {
		return append(b, make([]byte, bootimg.PadSize(uint64(len(b)), uint64(hdr.PageSize)))...)
	}
	img := pad(hdr.Encode())
	for _, s := range [][]byte{kernel, ramdisk, second, dt} {
		img = append(img, pad(append([]byte(nil), s...))...)
	}
	return img
}

func TestHeaderSize(t *testing.T) {
	t.Log("Test header size")

	hdr := newHeader(2048, "")
	require.Equal(t, 1632, bootimg.HeaderSize)
	require.Len(t, hdr.Encode(), 1632)
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Log("Test decode(encode(h)) == h")

	hdr := newHeader(4096, "console=ttyS0")
	hdr.KernelSize = 5000
	hdr.RamdiskSize = 123456
	hdr.SecondSize = 7
	hdr.DtSize = 42
	hdr.Id = bootimg.ComputeID([]byte("k"), []byte("r"), nil, nil)
	// An embedded NUL followed by more data must survive.
	copy(hdr.Cmdline[600:], "extra\x00tail")

	got, err := bootimg.Decode(hdr.Encode())
	require.NoError(t, err)
	require.Equal(t, hdr, got)
}

func TestHeaderFieldOffsets(t *testing.T) {
	t.Log("Test little endian field placement")

	hdr := newHeader(2048, "")
	hdr.KernelSize = 0x01020304
	hdr.DtSize = 0x0a0b0c0d
	raw := hdr.Encode()

	require.Equal(t, []byte(bootimg.BOOT_MAGIC), raw[:8])
	tests := map[int]uint32{
		8:  0x01020304,
		12: hdr.KernelAddr,
		32: hdr.TagsAddr,
		36: 2048,
		40: 0x0a0b0c0d,
		44: 0xdeadbeef,
	}
	for off, want := range tests {
		if got := binary.LittleEndian.Uint32(raw[off:]); got != want {
			t.Fatalf("Field at %d, Except: 0x%x, But: 0x%x", off, want, got)
		}
	}
	require.Equal(t, []byte("testboard"), raw[48:57])
}

func TestHeaderCmdlineSplit(t *testing.T) {
	t.Log("Test the command line is split around the id field")

	cmdline := bytes.Repeat([]byte{'a'}, bootimg.BOOT_ARGS_SIZE)
	cmdline = append(cmdline, []byte("bcd")...)
	hdr := newHeader(2048, "")
	copy(hdr.Cmdline, cmdline)
	hdr.Id[0] = 0xff
	raw := hdr.Encode()

	require.Equal(t, cmdline[:512], raw[64:576])
	require.Equal(t, byte(0xff), raw[576])
	require.Equal(t, []byte("bcd"), raw[608:611])
	require.Equal(t, make([]byte, 1024-3), raw[611:])
}

func TestHeaderEncodeResizesCmdline(t *testing.T) {
	hdr := newHeader(2048, "")

	hdr.Cmdline = []byte("short")
	got, err := bootimg.Decode(hdr.Encode())
	require.NoError(t, err)
	require.Len(t, got.Cmdline, bootimg.BOOT_CMDLINE_SIZE)
	require.Equal(t, "short", got.ActiveCmdline())

	hdr.Cmdline = bytes.Repeat([]byte{'x'}, bootimg.BOOT_CMDLINE_SIZE+10)
	raw := hdr.Encode()
	require.Len(t, raw, bootimg.HeaderSize)
	got, err = bootimg.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{'x'}, bootimg.BOOT_CMDLINE_SIZE), got.Cmdline)
}

func TestDecodeShortInput(t *testing.T) {
	t.Log("Test decoding less than a header fails")

	for _, n := range []int{0, 8, bootimg.HeaderSize - 1} {
		_, err := bootimg.Decode(make([]byte, n))
		var ferr *bootimg.FormatError
		if !errors.As(err, &ferr) {
			t.Fatalf("Decode(%d bytes), Except: FormatError, But: %v", n, err)
		}
	}
}

func TestDecodeDoesNotAlias(t *testing.T) {
	raw := newHeader(2048, "console=ttyS0").Encode()
	hdr, err := bootimg.Decode(raw)
	require.NoError(t, err)

	raw[64] = 'X'
	require.Equal(t, "console=ttyS0", hdr.ActiveCmdline())
}

func TestValidatePageSize(t *testing.T) {
	t.Log("Test page size validation")

	tests := map[uint32]bool{
		0:     false,
		1024:  false,
		2048:  true,
		3000:  false,
		4096:  true,
		16384: true,
	}
	for ps, ok := range tests {
		err := newHeader(ps, "").Validate()
		if ok {
			require.NoError(t, err, "page size %d", ps)
		} else {
			var ferr *bootimg.FormatError
			require.ErrorAs(t, err, &ferr, "page size %d", ps)
		}
	}
}
