package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/damillora/cyrene/internal/logging"
)

type rootOptions struct {
	verbosity int
	yes       bool

	env *env
}

// NewRootCmd builds the cyrene command tree.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:   "cyrene",
		Short: "Install and switch between versions of command-line tools",
		Long: `cyrene installs tools described by Lua plugin scripts, keeps any number of
versions side by side, and links one version of each onto PATH.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(o.verbosity, cmd.ErrOrStderr())
			log.Debug().Str("command", cmd.Name()).Msg("command started")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if o.env != nil {
				o.env.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().CountVarP(&o.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	root.PersistentFlags().BoolVarP(&o.yes, "yes", "y", false, "Do not ask for confirmation")

	root.AddCommand(
		newInstallCmd(o),
		newUpgradeCmd(o),
		newUninstallCmd(o),
		newLinkCmd(o),
		newUnlinkCmd(o),
		newLoadCmd(o),
		newListCmd(o),
		newVersionsCmd(o),
		newRefreshCmd(o),
		newEnvCmd(o),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "cyrene %s\n", Version)
			},
		},
	)
	return root
}

// open builds the runtime environment on first use.
func (o *rootOptions) open(cmd *cobra.Command) (*env, error) {
	if o.env != nil {
		return o.env, nil
	}
	e, err := newEnv(cmd.Context(), envOptions{
		out:       cmd.OutOrStdout(),
		err:       cmd.ErrOrStderr(),
		assumeYes: o.yes,
	})
	if err != nil {
		return nil, err
	}
	o.env = e
	return e, nil
}
