package bootimg_test

import (
	"bootimg"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageCount(t *testing.T) {
	t.Log("Test page count")

	tests := []struct {
		size, page, pages uint64
	}{
		{0, 2048, 0},
		{1, 2048, 1},
		{2048, 2048, 1},
		{2049, 2048, 2},
		{5000, 2048, 3},
		{1 << 33, 4096, 1 << 21},
	}
	for _, tt := range tests {
		if ret := bootimg.PageCount(tt.size, tt.page); ret != tt.pages {
			t.Fatalf("PageCount(%d, %d), Except: %d, But: %d", tt.size, tt.page, tt.pages, ret)
		}
	}
}

func TestPadSize(t *testing.T) {
	require.Equal(t, uint64(0), bootimg.PadSize(0, 2048))
	require.Equal(t, uint64(2048-1632), bootimg.PadSize(1632, 2048))
	require.Equal(t, uint64(0), bootimg.PadSize(4096, 2048))
	require.Equal(t, uint64(2047), bootimg.PadSize(4097, 2048))
}

func TestLayout(t *testing.T) {
	t.Log("Test kernel_size=5000 with page_size=2048")

	hdr := newHeader(2048, "")
	hdr.KernelSize = 5000
	hdr.RamdiskSize = 2048
	hdr.SecondSize = 0
	hdr.DtSize = 10

	l := bootimg.NewLayout(hdr)
	require.Equal(t, bootimg.Region{Offset: 2048, Size: 5000}, l.Region(bootimg.KERNEL))
	require.Equal(t, bootimg.Region{Offset: 8192, Size: 2048}, l.Region(bootimg.RAMDISK))
	require.Equal(t, bootimg.Region{Offset: 10240, Size: 0}, l.Region(bootimg.SECOND))
	require.Equal(t, bootimg.Region{Offset: 10240, Size: 10}, l.Region(bootimg.DT))
	require.Equal(t, uint64(12288), l.End())

	// Same input, same answer.
	require.Equal(t, l, bootimg.NewLayout(hdr))
}

func TestLayoutOrdered(t *testing.T) {
	t.Log("Test sections are page aligned and never overlap")

	sizes := [][4]uint32{
		{1, 1, 1, 1},
		{0, 0, 0, 0},
		{4096, 0, 4097, 0},
		{123456, 654321, 0, 99},
	}
	for _, ps := range []uint32{2048, 4096, 16384} {
		for _, sz := range sizes {
			hdr := newHeader(ps, "")
			hdr.KernelSize, hdr.RamdiskSize, hdr.SecondSize, hdr.DtSize = sz[0], sz[1], sz[2], sz[3]
			l := bootimg.NewLayout(hdr)

			prevEnd := uint64(ps)
			for _, s := range bootimg.Sections {
				r := l.Region(s)
				require.Zero(t, r.Offset%uint64(ps), "%s offset not aligned", s)
				require.GreaterOrEqual(t, r.Offset, prevEnd, "%s overlaps", s)
				prevEnd = r.End()
			}
		}
	}
}
