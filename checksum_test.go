package bootimg_test

import (
	"bootimg"
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeID(t *testing.T) {
	t.Log("Test id matches sha1 over data and LE lengths")

	kernel := []byte("kernel-data")
	ramdisk := []byte("ramdisk")
	second := []byte{}
	dt := []byte("dtb!")

	var stream []byte
	for _, b := range [][]byte{kernel, ramdisk, second, dt} {
		stream = append(stream, b...)
		stream = append(stream, byte(len(b)), byte(len(b)>>8), byte(len(b)>>16), byte(len(b)>>24))
	}
	sum := sha1.Sum(stream)

	id := bootimg.ComputeID(kernel, ramdisk, second, dt)
	require.Equal(t, sum[:], id[:20])
	require.Equal(t, make([]byte, 12), id[20:])
	require.Equal(t, id, bootimg.ComputeID(kernel, ramdisk, second, dt))
}

func TestComputeIDEmptyDt(t *testing.T) {
	t.Log("Test an empty device tree contributes nothing")

	kernel, ramdisk := []byte("k"), []byte("r")
	var stream []byte
	stream = append(stream, 'k', 1, 0, 0, 0, 'r', 1, 0, 0, 0, 0, 0, 0, 0)
	sum := sha1.Sum(stream)

	id := bootimg.ComputeID(kernel, ramdisk, nil, nil)
	require.Equal(t, sum[:], id[:20])
	require.Equal(t, id, bootimg.ComputeID(kernel, ramdisk, []byte{}, []byte{}))
}

func TestComputeIDSensitivity(t *testing.T) {
	base := bootimg.ComputeID([]byte("AB"), []byte("C"), nil, []byte("D"))

	tests := map[string][4][]byte{
		"boundary": {[]byte("A"), []byte("BC"), nil, []byte("D")},
		"kernel":   {[]byte("AX"), []byte("C"), nil, []byte("D")},
		"second":   {[]byte("AB"), []byte("C"), []byte("S"), []byte("D")},
		"dt":       {[]byte("AB"), []byte("C"), nil, []byte("E")},
		"no dt":    {[]byte("AB"), []byte("C"), nil, nil},
	}
	for name, in := range tests {
		if bootimg.ComputeID(in[0], in[1], in[2], in[3]) == base {
			t.Fatalf("%s: id did not change", name)
		}
	}
}
