package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bootimg"
	"bootimg/cpio"
)

var infoCmd = &cobra.Command{
	Use:   "info IMAGE",
	Short: "Print the header and section layout of a boot image",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var infoFlag = struct {
	Ramdisk bool
}{}

func init() {
	infoCmd.Flags().BoolVarP(&infoFlag.Ramdisk, "ramdisk", "r", false, "List the entries of the ramdisk")
}

func runInfo(cmd *cobra.Command, args []string) error {
	m, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	img, err := bootimg.Open(m.Data)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	printHeader(w, img.Hdr)
	fmt.Fprintln(w)
	printLayout(w, img)

	if infoFlag.Ramdisk {
		fmt.Fprintln(w)
		return printRamdisk(w, img.Section(bootimg.RAMDISK))
	}
	return nil
}

func cstr(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

func printHeader(w io.Writer, hdr *bootimg.Header) {
	fmt.Fprintf(w, "%-16s[%s]\n", "MAGIC", cstr(hdr.Magic[:]))
	fmt.Fprintf(w, "%-16s[%d] (%s)\n", "KERNEL_SZ", hdr.KernelSize, humanize.IBytes(uint64(hdr.KernelSize)))
	fmt.Fprintf(w, "%-16s[0x%08x]\n", "KERNEL_ADDR", hdr.KernelAddr)
	fmt.Fprintf(w, "%-16s[%d] (%s)\n", "RAMDISK_SZ", hdr.RamdiskSize, humanize.IBytes(uint64(hdr.RamdiskSize)))
	fmt.Fprintf(w, "%-16s[0x%08x]\n", "RAMDISK_ADDR", hdr.RamdiskAddr)
	fmt.Fprintf(w, "%-16s[%d] (%s)\n", "SECOND_SZ", hdr.SecondSize, humanize.IBytes(uint64(hdr.SecondSize)))
	fmt.Fprintf(w, "%-16s[0x%08x]\n", "SECOND_ADDR", hdr.SecondAddr)
	fmt.Fprintf(w, "%-16s[0x%08x]\n", "TAGS_ADDR", hdr.TagsAddr)
	fmt.Fprintf(w, "%-16s[%d]\n", "PAGESIZE", hdr.PageSize)
	fmt.Fprintf(w, "%-16s[%d] (%s)\n", "DT_SZ", hdr.DtSize, humanize.IBytes(uint64(hdr.DtSize)))
	fmt.Fprintf(w, "%-16s[0x%08x]\n", "RESERVED", hdr.Reserved)
	fmt.Fprintf(w, "%-16s[%s]\n", "NAME", cstr(hdr.Name[:]))
	fmt.Fprintf(w, "%-16s[%s]\n", "CMDLINE", hdr.ActiveCmdline())
	fmt.Fprintf(w, "%-16s[%s]\n", "ID", hex.EncodeToString(hdr.Id[:]))
}

func printLayout(w io.Writer, img *bootimg.Image) {
	fmt.Fprintf(w, "%-10s %-12s %-12s %-10s %s\n", "SECTION", "OFFSET", "SIZE", "PAGES", "FORMAT")
	for _, s := range bootimg.Sections {
		r := img.Layout.Region(s)
		format := "-"
		if r.Size > 0 {
			format = bootimg.DetectFormat(img.Section(s)).String()
		}
		fmt.Fprintf(w, "%-10s 0x%-10x %-12d %-10d %s\n", s, r.Offset, r.Size, bootimg.PageCount(r.Size, img.Layout.PageSize), format)
	}
	fmt.Fprintf(w, "%-10s 0x%-10x\n", "end", img.Layout.End())
}

func printRamdisk(w io.Writer, ramdisk []byte) error {
	if len(ramdisk) == 0 {
		fmt.Fprintln(w, "ramdisk is empty")
		return nil
	}
	if f := bootimg.DetectFormat(ramdisk); f.Compressed() {
		out, err := bootimg.Decompress(f, ramdisk)
		if err != nil {
			return err
		}
		logger.Debug().Stringer("format", f).Str("size", humanize.IBytes(uint64(len(out)))).Msg("Decompressed ramdisk")
		ramdisk = out
	}

	entries, err := cpio.Parse(ramdisk)
	if err != nil {
		return fmt.Errorf("parse ramdisk: %w", err)
	}
	for _, e := range entries {
		size := humanize.IBytes(uint64(len(e.Data)))
		if e.IsDir() {
			size = "-"
		}
		fmt.Fprintf(w, "%s %5d %5d %10s %s\n", e.FileMode(), e.Uid, e.Gid, size, e.Name)
	}
	return nil
}
