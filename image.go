package bootimg

import (
	"fmt"
	"io"
)

// Image is a decoded boot image backed by the raw bytes it was read from.
type Image struct {
	Hdr    *Header
	Layout Layout

	data []byte
}

// Open decodes the header of data and checks that every section lies
// inside it.
func Open(data []byte) (*Image, error) {
	hdr, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := hdr.Validate(); err != nil {
		return nil, err
	}

	img := &Image{
		Hdr:    hdr,
		Layout: NewLayout(hdr),
		data:   data,
	}
	for _, s := range Sections {
		r := img.Layout.Region(s)
		if r.Size > 0 && r.End() > uint64(len(data)) {
			return nil, badImage("%s [0x%x, 0x%x) is past the end of the %d byte image", s, r.Offset, r.End(), len(data))
		}
	}
	return img, nil
}

// Section returns a copy of the bytes of s.
func (img *Image) Section(s Section) []byte {
	buf, _ := Original(img.data, img.Layout.Region(s)).Resolve()
	return buf
}

// SinkFunc returns the destination for a section.
type SinkFunc func(s Section) (io.WriteCloser, error)

// A sink implementing aborter is aborted instead of closed when a write
// fails.
type aborter interface {
	Abort()
}

// Extract writes every non-empty section to the sink returned for it.
// Empty sections never reach the sink.
func (img *Image) Extract(sink SinkFunc) error {
	for _, s := range Sections {
		r := img.Layout.Region(s)
		if r.Size == 0 {
			continue
		}
		if err := dump(img.data[r.Offset:r.End()], s, sink); err != nil {
			return err
		}
	}
	return nil
}

func dump(buf []byte, s Section, sink SinkFunc) error {
	w, err := sink(s)
	if err != nil {
		return fmt.Errorf("create %s output: %w", s, err)
	}
	if _, err := w.Write(buf); err != nil {
		if a, ok := w.(aborter); ok {
			a.Abort()
		} else {
			w.Close()
		}
		return fmt.Errorf("write %s: %w", s, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s output: %w", s, err)
	}
	return nil
}

func writePadding(w io.Writer, n, pageSize uint64) error {
	pad := PadSize(n, pageSize)
	if pad == 0 {
		return nil
	}
	_, err := w.Write(make([]byte, pad))
	return err
}

func writeHeader(w io.Writer, hdr *Header) error {
	raw := hdr.Encode()
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writePadding(w, uint64(len(raw)), uint64(hdr.PageSize)); err != nil {
		return fmt.Errorf("write header padding: %w", err)
	}
	return nil
}

// writePaddedSection writes buf followed by zeros up to the next page.
// An empty buffer writes nothing at all.
func writePaddedSection(w io.Writer, buf []byte, s Section, pageSize uint64) error {
	if len(buf) == 0 {
		return nil
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", s, err)
	}
	if err := writePadding(w, uint64(len(buf)), pageSize); err != nil {
		return fmt.Errorf("write %s padding: %w", s, err)
	}
	return nil
}

// AppendCmdline appends token to the command line of the image in data and
// writes the result to w. Everything after the first page is copied
// unchanged. The returned flag is false when the token did not fit and the
// command line was kept as is.
func AppendCmdline(data []byte, token string, w io.Writer) (*Header, bool, error) {
	hdr, err := Decode(data)
	if err != nil {
		return nil, false, err
	}
	if err := hdr.Validate(); err != nil {
		return nil, false, err
	}
	if uint64(len(data)) < uint64(hdr.PageSize) {
		return nil, false, badImage("%d bytes is shorter than one %d byte page", len(data), hdr.PageSize)
	}

	appended := hdr.AppendCmdline(token)
	if err := writeHeader(w, hdr); err != nil {
		return nil, false, err
	}
	if _, err := w.Write(data[hdr.PageSize:]); err != nil {
		return nil, false, fmt.Errorf("write sections: %w", err)
	}
	return hdr, appended, nil
}

// SectionSource is where the new contents of a section come from: either a
// caller supplied buffer or a range of the original image.
type SectionSource struct {
	external bool
	buf      []byte

	src    []byte
	region Region
}

// External uses buf in full.
func External(buf []byte) SectionSource {
	return SectionSource{external: true, buf: buf}
}

// Original reads region from src.
func Original(src []byte, region Region) SectionSource {
	return SectionSource{src: src, region: region}
}

// Resolve returns a buffer owned by the caller.
func (s SectionSource) Resolve() ([]byte, error) {
	if s.external {
		return append([]byte(nil), s.buf...), nil
	}
	if s.region.Size == 0 {
		return []byte{}, nil
	}
	if s.region.End() > uint64(len(s.src)) {
		return nil, badImage("range [0x%x, 0x%x) is past the end of the %d byte image", s.region.Offset, s.region.End(), len(s.src))
	}
	return append([]byte(nil), s.src[s.region.Offset:s.region.End()]...), nil
}

// Replacements maps a section to its new contents. Sections not present
// keep their original bytes.
type Replacements map[Section][]byte

// Replace rebuilds the image in data with the given sections swapped in,
// recomputes sizes and the image id, and writes the new image to w.
// Only the sections that are kept need to lie inside data.
func Replace(data []byte, repl Replacements, w io.Writer) (*Header, error) {
	hdr, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if err := hdr.Validate(); err != nil {
		return nil, err
	}
	layout := NewLayout(hdr)

	var sources [len(Sections)]SectionSource
	for _, s := range Sections {
		if buf, ok := repl[s]; ok {
			sources[s] = External(buf)
		} else {
			sources[s] = Original(data, layout.Region(s))
		}
	}

	var bufs [len(Sections)][]byte
	for _, s := range Sections {
		buf, err := sources[s].Resolve()
		if err != nil {
			return nil, err
		}
		if uint64(len(buf)) > 0xffffffff {
			return nil, fmt.Errorf("%s is too large: %d bytes", s, len(buf))
		}
		bufs[s] = buf
		hdr.setSize(s, uint32(len(buf)))
	}
	hdr.Id = ComputeID(bufs[KERNEL], bufs[RAMDISK], bufs[SECOND], bufs[DT])

	if err := writeHeader(w, hdr); err != nil {
		return nil, err
	}
	for _, s := range Sections {
		if err := writePaddedSection(w, bufs[s], s, uint64(hdr.PageSize)); err != nil {
			return nil, err
		}
	}
	return hdr, nil
}
