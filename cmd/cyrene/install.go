package main

import (
	"github.com/spf13/cobra"
)

func newInstallCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "install <app>[@<requirement>]...",
		Short: "Install apps",
		Long: `Install apps. A requirement is an exact version, a semver range such as
"^1.2" or ">=1.0, <2.0", or empty for the latest version.

An app installed for the first time is linked and recorded in the lockfile.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			p, err := e.svc.PlanInstall(cmd.Context(), args)
			if err != nil {
				return err
			}
			return e.run(cmd.Context(), p)
		},
	}
}

func newUpgradeCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade [<app>[@<requirement>]...]",
		Short: "Upgrade apps within their release line",
		Long: `Upgrade apps to the newest version compatible with the current one.
With no arguments every app in the lockfile is upgraded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			p, err := e.svc.PlanUpgrade(cmd.Context(), args)
			if err != nil {
				return err
			}
			return e.run(cmd.Context(), p)
		},
	}
}

func newUninstallCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <app>[@<version>]...",
		Short: "Remove installed versions",
		Long:  `Remove one version of an app, or every version when none is given.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			p, err := e.svc.PlanUninstall(cmd.Context(), args)
			if err != nil {
				return err
			}
			return e.run(cmd.Context(), p)
		},
	}
}
