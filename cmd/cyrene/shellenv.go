package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/damillora/cyrene/internal/shell"
)

func newEnvCmd(o *rootOptions) *cobra.Command {
	var setup, dryRun bool

	cmd := &cobra.Command{
		Use:   "env [bash|zsh|fish]",
		Short: "Print shell code that puts linked binaries on PATH",
		Long: `Print shell code that adds cyrene's exe dir to PATH. Add this to your shell
config:

  eval "$(cyrene env bash)"    # bash, zsh
  cyrene env fish | source     # fish

--setup adds that line to the rc file of the shell for you.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sh shell.Type
			if len(args) == 1 {
				sh = shell.Parse(args[0])
				if err := shell.Validate(sh); err != nil {
					return err
				}
			} else {
				d, err := shell.Detect(cmd.Context())
				if err != nil {
					return err
				}
				sh = d.Shell
			}

			e, err := o.open(cmd)
			if err != nil {
				return err
			}

			if setup {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				res, err := shell.Setup(sh, home, dryRun)
				if err != nil {
					return err
				}
				switch {
				case res.AlreadyPresent:
					e.ui.Notice("%s already runs cyrene env", res.RCFile)
				case res.Added:
					e.ui.Notice("added %q to %s", res.Command, res.RCFile)
				default:
					e.ui.Notice("would add %q to %s", res.Command, res.RCFile)
				}
				return nil
			}

			snippet, err := shell.Snippet(sh, e.dirs)
			if err != nil {
				return err
			}
			e.ui.Printf("%s", snippet)
			return nil
		},
	}
	cmd.ValidArgs = []string{"bash", "zsh", "fish"}
	cmd.Flags().BoolVar(&setup, "setup", false, "Add the activation line to your shell's rc file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "With --setup, only show what would change")
	return cmd
}
