package bootimg

import "bytes"

type Format int

const (
	UNKNOWN Format = iota
	/* Boot formats */
	AOSP
	CHROMEOS
	/* Compression formats */
	GZIP
	XZ
	LZMA
	BZIP2
	LZ4
	LZ4_LEGACY
	/* Unsupported compression */
	LZOP
	/* Misc */
	MTK
	DTB
	ZIMAGE
)

const (
	BOOT_MAGIC     = "ANDROID!"
	CHROMEOS_MAGIC = "CHROMEOS"
	GZIP1_MAGIC    = "\x1f\x8b"
	GZIP2_MAGIC    = "\x1f\x9e"
	LZOP_MAGIC     = "\x89LZO"
	XZ_MAGIC       = "\xfd7zXZ"
	BZIP_MAGIC     = "BZh"
	LZ4_LEG_MAGIC  = "\x02\x21\x4c\x18"
	LZ41_MAGIC     = "\x03\x21\x4c\x18"
	LZ42_MAGIC     = "\x04\x22\x4d\x18"
	MTK_MAGIC      = "\x88\x16\x88\x58"
	DTB_MAGIC      = "\xd0\x0d\xfe\xed"
	ZIMAGE_MAGIC   = "\x18\x28\x6f\x01"
)

// Compressed reports whether Decompress can handle the format.
func (f Format) Compressed() bool {
	return f >= GZIP && f < LZOP
}

// DetectFormat guesses the content of buf from its leading magic bytes.
func DetectFormat(buf []byte) Format {
	match := func(p string) bool {
		return bytes.HasPrefix(buf, []byte(p))
	}

	switch {
	case match(CHROMEOS_MAGIC):
		return CHROMEOS
	case match(BOOT_MAGIC):
		return AOSP
	case match(GZIP1_MAGIC) || match(GZIP2_MAGIC):
		return GZIP
	case match(LZOP_MAGIC):
		return LZOP
	case match(XZ_MAGIC):
		return XZ
	case len(buf) >= 13 && match("\x5d\x00\x00") && (buf[12] == 0xff || buf[12] == 0x00):
		return LZMA
	case match(BZIP_MAGIC):
		return BZIP2
	case match(LZ41_MAGIC) || match(LZ42_MAGIC):
		return LZ4
	case match(LZ4_LEG_MAGIC):
		return LZ4_LEGACY
	case match(MTK_MAGIC):
		return MTK
	case match(DTB_MAGIC):
		return DTB
	case len(buf) >= 0x24+len(ZIMAGE_MAGIC) && bytes.Equal(buf[0x24:0x24+len(ZIMAGE_MAGIC)], []byte(ZIMAGE_MAGIC)):
		return ZIMAGE
	default:
		return UNKNOWN
	}
}

func (f Format) String() string {
	switch f {
	case AOSP:
		return "aosp"
	case CHROMEOS:
		return "chromeos"
	case GZIP:
		return "gzip"
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case BZIP2:
		return "bzip2"
	case LZ4:
		return "lz4"
	case LZ4_LEGACY:
		return "lz4_legacy"
	case LZOP:
		return "lzop"
	case MTK:
		return "mtk"
	case DTB:
		return "dtb"
	case ZIMAGE:
		return "zimage"
	default:
		return "raw"
	}
}

// Name2Fmt maps a name printed by Format.String back to the format.
func Name2Fmt(name string) Format {
	switch name {
	case "gzip":
		return GZIP
	case "xz":
		return XZ
	case "lzma":
		return LZMA
	case "bzip2":
		return BZIP2
	case "lz4":
		return LZ4
	case "lz4_legacy":
		return LZ4_LEGACY
	default:
		return UNKNOWN
	}
}
