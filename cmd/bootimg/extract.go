package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bootimg"
)

var extractCmd = &cobra.Command{
	Use:   "extract IMAGE",
	Short: "Split a boot image into kernel, ramdisk, second and dt files",
	Long: `Split a boot image into its sections. Sections that are empty in the
image (usually second and dt) produce no file.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var extractFlag = struct {
	Out           [len(bootimg.Sections)]string
	Decompress    bool
	RamdiskFormat string
}{}

func init() {
	for _, s := range bootimg.Sections {
		extractCmd.Flags().StringVar(&extractFlag.Out[s], s.String(), s.FileName(), "Output path of the "+s.String())
	}
	extractCmd.Flags().BoolVarP(&extractFlag.Decompress, "decompress", "d", false, "Decompress the kernel and ramdisk when their format is known")
	extractCmd.Flags().StringVar(&extractFlag.RamdiskFormat, "ramdisk-format", "", "Decompress the ramdisk as this format (gzip, xz, lzma, bzip2, lz4, lz4_legacy) instead of detecting it")
}

func runExtract(_ *cobra.Command, args []string) error {
	ramdiskFormat := bootimg.UNKNOWN
	if name := extractFlag.RamdiskFormat; name != "" {
		if ramdiskFormat = bootimg.Name2Fmt(name); !ramdiskFormat.Compressed() {
			return fmt.Errorf("unsupported ramdisk format %q", name)
		}
	}

	m, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	img, err := bootimg.Open(m.Data)
	if err != nil {
		return err
	}

	return img.Extract(func(s bootimg.Section) (io.WriteCloser, error) {
		path := extractFlag.Out[s]
		size := img.Hdr.Size(s)
		logger.Info().Str("section", s.String()).Str("size", humanize.IBytes(uint64(size))).Str("path", path).Msg("Extracting")

		f, err := createAtomic(path)
		if err != nil {
			return nil, err
		}
		switch {
		case s == bootimg.RAMDISK && ramdiskFormat != bootimg.UNKNOWN:
			return &decompressWriter{atomicFile: f, section: s, format: ramdiskFormat}, nil
		case extractFlag.Decompress && (s == bootimg.KERNEL || s == bootimg.RAMDISK):
			return &decompressWriter{atomicFile: f, section: s}, nil
		}
		return f, nil
	})
}

// decompressWriter collects a section and writes it out decompressed on
// Close. Without a forced format, data in an unknown format is written as is.
type decompressWriter struct {
	*atomicFile
	section bootimg.Section
	format  bootimg.Format
	buf     bytes.Buffer
}

func (w *decompressWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *decompressWriter) Close() error {
	data := w.buf.Bytes()
	f := w.format
	if f == bootimg.UNKNOWN {
		f = bootimg.DetectFormat(data)
	}
	if f.Compressed() {
		out, err := bootimg.Decompress(f, data)
		if err != nil {
			w.Abort()
			return fmt.Errorf("%s: %w", w.section, err)
		}
		logger.Info().Str("section", w.section.String()).Stringer("format", f).Str("size", humanize.IBytes(uint64(len(out)))).Msg("Decompressed")
		data = out
	}
	if _, err := w.atomicFile.Write(data); err != nil {
		w.Abort()
		return err
	}
	return w.atomicFile.Close()
}
