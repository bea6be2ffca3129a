package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"bootimg"
)

var replaceCmd = &cobra.Command{
	Use:   "replace IMAGE",
	Short: "Replace sections of a boot image and recompute its id",
	Long: `Rebuild a boot image, taking each section from the given file or, when
no file is given, from the original image. Sizes and the image id are
recomputed from the resulting sections.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplace,
}

var replaceFlag = struct {
	In     [len(bootimg.Sections)]string
	Output string
}{}

func init() {
	for _, s := range bootimg.Sections {
		replaceCmd.Flags().StringVar(&replaceFlag.In[s], s.String(), "", "Replacement "+s.String()+" file")
	}
	replaceCmd.Flags().StringVarP(&replaceFlag.Output, "output", "o", bootimg.NEW_BOOT, "Path of the rebuilt image")
}

func runReplace(_ *cobra.Command, args []string) error {
	m, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	repl := bootimg.Replacements{}
	for _, s := range bootimg.Sections {
		path := replaceFlag.In[s]
		if path == "" {
			continue
		}
		buf, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", s, err)
		}
		logger.Debug().Str("section", s.String()).Str("path", path).Str("size", humanize.IBytes(uint64(len(buf)))).Msg("Loaded replacement")
		repl[s] = buf
	}

	old, err := bootimg.Decode(m.Data)
	if err != nil {
		return err
	}

	out, err := createAtomic(replaceFlag.Output)
	if err != nil {
		return err
	}
	defer out.Abort()

	hdr, err := bootimg.Replace(m.Data, repl, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	for _, s := range bootimg.Sections {
		logger.Debug().Str("section", s.String()).Str("size", humanize.IBytes(uint64(hdr.Size(s)))).Msg("Packed")
	}
	logger.Info().
		Hex("id", hdr.Id[:20]).
		Bool("id_changed", !bytes.Equal(old.Id[:], hdr.Id[:])).
		Str("path", replaceFlag.Output).
		Msg("Wrote image")
	return nil
}
