package dotsync

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotsync/internal/version"
	"github.com/arthur-debert/dotsync/pkg/archive"
	"github.com/arthur-debert/dotsync/pkg/config"
	"github.com/arthur-debert/dotsync/pkg/filesystem"
	"github.com/arthur-debert/dotsync/pkg/markdown"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/arthur-debert/dotsync/pkg/types"
)

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "render FILE",
		Short:   MsgRenderShort,
		GroupID: "misc",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := markdown.ForTerminal(a.noColor || os.Getenv("NO_COLOR") != "")
			out, err := r.RenderFile(args[0])
			if err != nil {
				return fmt.Errorf(MsgErrRender, args[0], err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func newExtractCmd(a *app) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:     "extract ARCHIVE DIR",
		Short:   MsgExtractShort,
		GroupID: "misc",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dir := args[0], args[1]

			payload := types.PayloadType(kind)
			if payload == "" {
				detected, ok := archive.DetectType(filepath.Base(src))
				if !ok {
					return fmt.Errorf(MsgUnknownPayload, src)
				}
				payload = detected
			}

			out, err := a.renderer(cmd)
			if err != nil {
				return err
			}
			if a.dryRun {
				return out.RenderMessage("Info", fmt.Sprintf("would extract %s (%s) into %s", src, payload, dir))
			}

			if err := archive.ExtractFile(cmd.Context(), src, payload, dir); err != nil {
				return fmt.Errorf(MsgErrExtract, src, err)
			}
			return out.RenderMessage("Success", fmt.Sprintf("Extracted %s into %s", src, dir))
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "", MsgFlagType)

	return cmd
}

func newGenConfigCmd(a *app) *cobra.Command {
	var (
		format string
		write  bool
	)

	cmd := &cobra.Command{
		Use:     "gen-config",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := config.GenerateConfigContent(format)
			if err != nil {
				return fmt.Errorf(MsgErrGenConfig, err)
			}

			if !write {
				_, err = cmd.OutOrStdout().Write(content)
				return err
			}

			p, err := paths.New("")
			if err != nil {
				return fmt.Errorf(MsgErrInitPaths, err)
			}
			ext := config.FormatYAML
			if format == config.FormatTOML {
				ext = config.FormatTOML
			}
			target := filepath.Join(p.ConfigDir(), config.ConfigBaseName+"."+ext)

			fsys := filesystem.NewOS()
			if filesystem.Exists(fsys, target) {
				return fmt.Errorf(MsgConfigFileExists, target)
			}
			if a.dryRun {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "would write %s\n", target)
				return err
			}
			if err := fsys.MkdirAll(p.ConfigDir(), 0755); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			if err := fsys.WriteFile(target, content, 0644); err != nil {
				return fmt.Errorf(MsgErrWriteConfig, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), MsgConfigWritten+"\n", target)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", config.FormatYAML, MsgFlagFormat)
	cmd.Flags().BoolVarP(&write, "write", "w", false, MsgFlagWrite)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}
