package bootimg

import (
	"encoding/binary"
	"fmt"
)

const BOOT_MAGIC_SIZE = 8
const BOOT_NAME_SIZE = 16
const BOOT_ID_SIZE = 32
const BOOT_ARGS_SIZE = 512
const BOOT_EXTRA_ARGS_SIZE = 1024

// Logical command line: prefix and extra regions glued together.
const BOOT_CMDLINE_SIZE = BOOT_ARGS_SIZE + BOOT_EXTRA_ARGS_SIZE

/*
 * The header is followed by the sections, each starting on a page boundary:
 *
 * +-----------------+
 * | boot header     | 1 page
 * +-----------------+
 * | kernel          | n pages
 * +-----------------+
 * | ramdisk         | m pages
 * +-----------------+
 * | second stage    | o pages
 * +-----------------+
 * | device tree     | p pages
 * +-----------------+
 *
 * n = (kernel_size + page_size - 1) / page_size
 * m = (ramdisk_size + page_size - 1) / page_size
 * o = (second_size + page_size - 1) / page_size
 * p = (dt_size + page_size - 1) / page_size
 */

// Byte offsets of every header field.
const (
	offMagic        = 0
	offKernelSize   = 8
	offKernelAddr   = 12
	offRamdiskSize  = 16
	offRamdiskAddr  = 20
	offSecondSize   = 24
	offSecondAddr   = 28
	offTagsAddr     = 32
	offPageSize     = 36
	offDtSize       = 40
	offReserved     = 44
	offName         = 48
	offCmdline      = 64
	offId           = offCmdline + BOOT_ARGS_SIZE
	offExtraCmdline = offId + BOOT_ID_SIZE

	HeaderSize = offExtraCmdline + BOOT_EXTRA_ARGS_SIZE // 8 + 40 + 16 + 512 + 32 + 1024 = 1632
)

type Header struct {
	Magic       [BOOT_MAGIC_SIZE]byte
	KernelSize  uint32 // size in bytes
	KernelAddr  uint32 // physical load addr
	RamdiskSize uint32 // size in bytes
	RamdiskAddr uint32 // physical load addr
	SecondSize  uint32 // size in bytes
	SecondAddr  uint32 // physical load addr
	TagsAddr    uint32
	PageSize    uint32
	DtSize      uint32 // 0 when there is no device tree
	Reserved    uint32
	Name        [BOOT_NAME_SIZE]byte

	// Cmdline holds both command line regions as one BOOT_CMDLINE_SIZE
	// buffer. The id field sits between them on disk.
	Cmdline []byte

	Id [BOOT_ID_SIZE]byte
}

// wordFields maps each 32-bit header field to its offset.
var wordFields = [...]struct {
	off   int
	field func(h *Header) *uint32
}{
	{offKernelSize, func(h *Header) *uint32 { return &h.KernelSize }},
	{offKernelAddr, func(h *Header) *uint32 { return &h.KernelAddr }},
	{offRamdiskSize, func(h *Header) *uint32 { return &h.RamdiskSize }},
	{offRamdiskAddr, func(h *Header) *uint32 { return &h.RamdiskAddr }},
	{offSecondSize, func(h *Header) *uint32 { return &h.SecondSize }},
	{offSecondAddr, func(h *Header) *uint32 { return &h.SecondAddr }},
	{offTagsAddr, func(h *Header) *uint32 { return &h.TagsAddr }},
	{offPageSize, func(h *Header) *uint32 { return &h.PageSize }},
	{offDtSize, func(h *Header) *uint32 { return &h.DtSize }},
	{offReserved, func(h *Header) *uint32 { return &h.Reserved }},
}

// FormatError reports input that cannot be a boot image.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid boot image: " + e.Reason
}

func badImage(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// Decode parses the header at the start of data. The returned header does
// not share memory with data.
func Decode(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, badImage("%d bytes is shorter than the %d byte header", len(data), HeaderSize)
	}

	h := &Header{}
	copy(h.Magic[:], data[offMagic:])
	for _, f := range wordFields {
		*f.field(h) = binary.LittleEndian.Uint32(data[f.off:])
	}
	copy(h.Name[:], data[offName:])
	copy(h.Id[:], data[offId:])

	h.Cmdline = make([]byte, 0, BOOT_CMDLINE_SIZE)
	h.Cmdline = append(h.Cmdline, data[offCmdline:offCmdline+BOOT_ARGS_SIZE]...)
	h.Cmdline = append(h.Cmdline, data[offExtraCmdline:offExtraCmdline+BOOT_EXTRA_ARGS_SIZE]...)
	return h, nil
}

// Encode serializes the header into exactly HeaderSize bytes. A command line
// longer than BOOT_CMDLINE_SIZE is truncated, a shorter one is NUL padded.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[offMagic:], h.Magic[:])
	for _, f := range wordFields {
		binary.LittleEndian.PutUint32(buf[f.off:], *f.field(h))
	}
	copy(buf[offName:], h.Name[:])
	copy(buf[offId:], h.Id[:])

	cmdline := h.Cmdline
	if len(cmdline) > BOOT_CMDLINE_SIZE {
		cmdline = cmdline[:BOOT_CMDLINE_SIZE]
	}
	prefix := min(len(cmdline), BOOT_ARGS_SIZE)
	copy(buf[offCmdline:offCmdline+BOOT_ARGS_SIZE], cmdline[:prefix])
	copy(buf[offExtraCmdline:], cmdline[prefix:])
	return buf
}

// Validate checks the fields the section layout depends on.
func (h *Header) Validate() error {
	ps := h.PageSize
	if ps == 0 || ps&(ps-1) != 0 {
		return badImage("page size %d is not a power of two", ps)
	}
	if ps < HeaderSize {
		return badImage("page size %d cannot hold the %d byte header", ps, HeaderSize)
	}
	return nil
}

// Size returns the size recorded in the header for s.
func (h *Header) Size(s Section) uint32 {
	switch s {
	case KERNEL:
		return h.KernelSize
	case RAMDISK:
		return h.RamdiskSize
	case SECOND:
		return h.SecondSize
	case DT:
		return h.DtSize
	}
	return 0
}

func (h *Header) setSize(s Section, size uint32) {
	switch s {
	case KERNEL:
		h.KernelSize = size
	case RAMDISK:
		h.RamdiskSize = size
	case SECOND:
		h.SecondSize = size
	case DT:
		h.DtSize = size
	}
}
