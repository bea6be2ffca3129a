package bootimg

// Region is a byte range inside the image.
type Region struct {
	Offset uint64
	Size   uint64
}

func (r Region) End() uint64 {
	return r.Offset + r.Size
}

// Layout holds the page aligned position of every section.
type Layout struct {
	PageSize uint64
	Regions  [len(Sections)]Region
}

// PageCount returns how many pages size bytes occupy. An empty section
// occupies no pages.
func PageCount(size, pageSize uint64) uint64 {
	if pageSize == 0 {
		return 0
	}
	return (size + pageSize - 1) / pageSize
}

func align_to(v, a uint64) uint64 {
	return PageCount(v, a) * a
}

// PadSize returns the number of zero bytes needed after n bytes to reach
// the next page boundary.
func PadSize(n, pageSize uint64) uint64 {
	return align_to(n, pageSize) - n
}

// NewLayout computes section offsets from the header. The header always
// takes exactly one page, the sections follow back to back in Sections order.
func NewLayout(h *Header) Layout {
	l := Layout{PageSize: uint64(h.PageSize)}
	off := l.PageSize
	for _, s := range Sections {
		size := uint64(h.Size(s))
		l.Regions[s] = Region{Offset: off, Size: size}
		off += PageCount(size, l.PageSize) * l.PageSize
	}
	return l
}

func (l Layout) Region(s Section) Region {
	return l.Regions[s]
}

// End returns the offset right after the last page of the last section.
func (l Layout) End() uint64 {
	last := l.Regions[DT]
	return last.Offset + align_to(last.Size, l.PageSize)
}
