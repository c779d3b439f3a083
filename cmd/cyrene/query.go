package main

import (
	"github.com/spf13/cobra"
)

func newListCmd(o *rootOptions) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			entries, err := e.svc.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				e.ui.Notice("no apps installed")
				return nil
			}

			header := []string{"App", "Version", "Linked"}
			if long {
				header = append(header, "Path")
			}
			rows := make([][]string, 0, len(entries))
			for _, en := range entries {
				row := []string{e.ui.App(en.App), e.ui.Version(en.Version), mark(en.Linked)}
				if long {
					row = append(row, e.ui.Path(en.Path))
				}
				rows = append(rows, row)
			}
			return e.ui.Table(header, rows)
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show install paths")
	return cmd
}

func newVersionsCmd(o *rootOptions) *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "versions <app>",
		Short: "List versions available upstream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			infos, err := e.svc.Versions(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !long {
				for _, in := range infos {
					e.ui.Println(in.Version)
				}
				return nil
			}
			rows := make([][]string, 0, len(infos))
			for _, in := range infos {
				rows = append(rows, []string{e.ui.Version(in.Version), mark(in.Installed), mark(in.Linked)})
			}
			return e.ui.Table([]string{"Version", "Installed", "Linked"}, rows)
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, "Show installed and linked columns")
	return cmd
}

func newRefreshCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [<app>...]",
		Short: "Refresh the version cache",
		Long:  `Ask each plugin for its upstream versions again. With no arguments every plugin is refreshed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := o.open(cmd)
			if err != nil {
				return err
			}
			refreshed, err := e.svc.Refresh(cmd.Context(), args)
			for _, r := range refreshed {
				e.ui.Printf("%s: %d versions\n", e.ui.App(r.App), r.Count)
			}
			return err
		},
	}
}

func mark(b bool) string {
	if b {
		return "*"
	}
	return ""
}
