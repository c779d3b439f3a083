package main

import (
	"errors"

	"github.com/spf13/cobra"
)

func newLinkCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "link <app> <version>",
		Short: "Link an installed version onto PATH",
		Long: `Link the newest installed version of an app matching <version> (an exact
version or a range) and record it in the lockfile.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			p, err := e.svc.PlanLink(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return e.run(cmd.Context(), p)
		},
	}
}

func newUnlinkCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <app>",
		Short: "Remove an app's links and lockfile entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			p, err := e.svc.PlanUnlink(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return e.run(cmd.Context(), p)
		},
	}
}

func newLoadCmd(o *rootOptions) *cobra.Command {
	var useDefault bool

	cmd := &cobra.Command{
		Use:   "load [<path> | --default]",
		Short: "Switch to a project lockfile",
		Long: `Make the lockfile at <path> the active one, installing and linking every
version it lists. --default switches back to the user's own lockfile.

Every entry is checked against upstream before anything changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case useDefault && len(args) > 0:
				return errors.New("pass either a lockfile path or --default, not both")
			case useDefault:
			case len(args) == 1:
				path = args[0]
			default:
				return errors.New("a lockfile path or --default is required")
			}

			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			p, err := e.svc.PlanLoad(cmd.Context(), path)
			if err != nil {
				return err
			}
			return e.run(cmd.Context(), p)
		},
	}
	cmd.Flags().BoolVar(&useDefault, "default", false, "Switch back to the default lockfile")
	return cmd
}
