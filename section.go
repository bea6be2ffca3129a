package bootimg

const (
	KERNEL_FILE  = "kernel"
	RAMDISK_FILE = "ramdisk"
	SECOND_FILE  = "second"
	DT_FILE      = "dt"
	NEW_BOOT     = "new-boot.img"
)

// Section identifies one of the payloads stored after the header.
type Section int

const (
	KERNEL Section = iota
	RAMDISK
	SECOND
	DT
)

// Sections lists every section in on-disk order.
var Sections = [...]Section{KERNEL, RAMDISK, SECOND, DT}

func (s Section) String() string {
	switch s {
	case KERNEL:
		return "kernel"
	case RAMDISK:
		return "ramdisk"
	case SECOND:
		return "second"
	case DT:
		return "dt"
	default:
		return "unknown"
	}
}

// FileName is the default file a section is extracted to.
func (s Section) FileName() string {
	switch s {
	case KERNEL:
		return KERNEL_FILE
	case RAMDISK:
		return RAMDISK_FILE
	case SECOND:
		return SECOND_FILE
	case DT:
		return DT_FILE
	default:
		return ""
	}
}
