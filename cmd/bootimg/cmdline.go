package main

import (
	"github.com/spf13/cobra"

	"bootimg"
)

var appendCmdlineCmd = &cobra.Command{
	Use:   "append-cmdline IMAGE",
	Short: "Append an argument to the kernel command line",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppendCmdline,
}

var appendFlag = struct {
	Cmd    string
	Output string
}{}

func init() {
	appendCmdlineCmd.Flags().StringVar(&appendFlag.Cmd, "cmd", "", "Argument to append to the command line")
	appendCmdlineCmd.Flags().StringVarP(&appendFlag.Output, "output", "o", bootimg.NEW_BOOT, "Path of the patched image")
	_ = appendCmdlineCmd.MarkFlagRequired("cmd")
}

func runAppendCmdline(_ *cobra.Command, args []string) error {
	m, err := openImage(args[0])
	if err != nil {
		return err
	}
	defer m.Close()

	out, err := createAtomic(appendFlag.Output)
	if err != nil {
		return err
	}
	defer out.Abort()

	hdr, appended, err := bootimg.AppendCmdline(m.Data, appendFlag.Cmd, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if !appended {
		logger.Warn().Str("cmd", appendFlag.Cmd).Int("capacity", bootimg.BOOT_CMDLINE_SIZE).Msg("Command line is full, argument dropped")
	}
	logger.Info().Str("cmdline", hdr.ActiveCmdline()).Str("path", appendFlag.Output).Msg("Wrote image")
	return nil
}
