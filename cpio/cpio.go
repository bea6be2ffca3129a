package cpio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
)

// Define this to avoid missing in different platform
const (
	S_IFIFO  = 0010000
	S_IFCHR  = 0020000
	S_IFDIR  = 0040000
	S_IFBLK  = 0060000
	S_IFREG  = 0100000
	S_IFLNK  = 0120000
	S_IFSOCK = 0140000
	S_IFMT   = 0170000
)

const (
	newcMagic = "070701"
	crcMagic  = "070702"
	trailer   = "TRAILER!!!"

	// magic + 13 fields of 8 hex digits
	headerSize = 6 + 13*8
)

var ErrBadMagic = errors.New("invalid cpio magic")

type Entry struct {
	Name      string
	Mode      uint32
	Uid       uint32
	Gid       uint32
	RDevMajor uint32
	RDevMinor uint32
	Data      []byte
}

func (e *Entry) IsDir() bool {
	return e.Mode&S_IFMT == S_IFDIR
}

// FileMode converts the raw cpio mode into an os.FileMode.
func (e *Entry) FileMode() os.FileMode {
	mode := os.FileMode(e.Mode & 0o777)
	switch e.Mode & S_IFMT {
	case S_IFDIR:
		mode |= os.ModeDir
	case S_IFLNK:
		mode |= os.ModeSymlink
	case S_IFBLK:
		mode |= os.ModeDevice
	case S_IFCHR:
		mode |= os.ModeDevice | os.ModeCharDevice
	case S_IFIFO:
		mode |= os.ModeNamedPipe
	case S_IFSOCK:
		mode |= os.ModeSocket
	}
	return mode
}

func x8u(x []byte) (uint32, error) {
	if len(x) != 8 {
		return 0, errors.New("bad cpio header")
	}
	ret, err := strconv.ParseUint(string(x), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad cpio header field %q: %w", x, err)
	}
	return uint32(ret), nil
}

func align_4(x uint64) uint64 {
	return (x + 3) &^ 3
}

func norm_path(p string) string {
	return strings.TrimLeft(path.Clean(p), "/")
}

// Parse reads the entries of a newc archive. Several archives concatenated
// back to back are read as one; "." and ".." are skipped.
func Parse(data []byte) ([]*Entry, error) {
	var entries []*Entry
	pos := uint64(0)
	end := uint64(len(data))

	for pos < end {
		if end-pos < headerSize {
			return nil, fmt.Errorf("truncated cpio header at 0x%x", pos)
		}
		hdr := data[pos : pos+headerSize]
		magic := hdr[:6]
		if !bytes.Equal(magic, []byte(newcMagic)) && !bytes.Equal(magic, []byte(crcMagic)) {
			return nil, fmt.Errorf("%w at 0x%x", ErrBadMagic, pos)
		}

		var fields [13]uint32
		for i := range fields {
			v, err := x8u(hdr[6+i*8 : 6+(i+1)*8])
			if err != nil {
				return nil, err
			}
			fields[i] = v
		}
		mode, uid, gid := fields[1], fields[2], fields[3]
		fileSize := uint64(fields[6])
		rdevMajor, rdevMinor := fields[9], fields[10]
		nameSize := uint64(fields[11])

		pos += headerSize
		if end-pos < nameSize {
			return nil, fmt.Errorf("truncated cpio name at 0x%x", pos)
		}
		name := strings.TrimRight(string(data[pos:pos+nameSize]), "\x00")
		pos = align_4(pos + nameSize)

		if name == trailer {
			// Skip the zero padding up to the next archive, if any.
			next := bytes.Index(data[min(pos, end):], []byte("0707"))
			if next == -1 {
				break
			}
			pos += uint64(next)
			continue
		}

		if pos > end || end-pos < fileSize {
			return nil, fmt.Errorf("truncated cpio data for %q", name)
		}
		body := data[pos : pos+fileSize]
		pos = align_4(pos + fileSize)

		if name == "." || name == ".." {
			continue
		}
		entries = append(entries, &Entry{
			Name:      norm_path(name),
			Mode:      mode,
			Uid:       uid,
			Gid:       gid,
			RDevMajor: rdevMajor,
			RDevMinor: rdevMinor,
			Data:      body,
		})
	}
	return entries, nil
}
