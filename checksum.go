package bootimg

import (
	"crypto/sha1"
	"encoding/binary"
	"hash"
)

func updateShaWithBuf(sha hash.Hash, buf []byte) {
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(buf)))
	sha.Write(buf)
	sha.Write(size[:])
}

// ComputeID returns the image id for the given section contents: a SHA-1
// over each buffer followed by its length, zero padded to BOOT_ID_SIZE.
// An empty device tree is left out of the digest entirely.
func ComputeID(kernel, ramdisk, second, dt []byte) [BOOT_ID_SIZE]byte {
	sha := sha1.New()
	updateShaWithBuf(sha, kernel)
	updateShaWithBuf(sha, ramdisk)
	updateShaWithBuf(sha, second)
	if len(dt) > 0 {
		updateShaWithBuf(sha, dt)
	}

	var id [BOOT_ID_SIZE]byte
	copy(id[:], sha.Sum(nil))
	return id
}
