package bootimg

import "bytes"

// ActiveCmdline returns the command line up to the first NUL byte.
func (h *Header) ActiveCmdline() string {
	return string(activeCmdline(h.Cmdline))
}

func activeCmdline(cmdline []byte) []byte {
	if i := bytes.IndexByte(cmdline, 0); i >= 0 {
		return cmdline[:i]
	}
	return cmdline
}

// AppendCmdline appends token to the command line, separated by a space.
// When the result would not fit in BOOT_CMDLINE_SIZE bytes the header is left
// untouched and false is returned. An empty token leaves the header untouched
// and reports true, since there was nothing to drop.
func (h *Header) AppendCmdline(token string) bool {
	if token == "" {
		return true
	}

	active := activeCmdline(h.Cmdline)
	if len(active)+1+len(token) > BOOT_CMDLINE_SIZE {
		return false
	}

	cmdline := make([]byte, BOOT_CMDLINE_SIZE)
	n := copy(cmdline, active)
	n += copy(cmdline[n:], " ")
	copy(cmdline[n:], token)
	h.Cmdline = cmdline
	return true
}
