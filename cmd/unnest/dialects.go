package main

import (
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/oxhq/unnest/providers"
	"github.com/oxhq/unnest/providers/catalog"
)

var dialectsCmd = newDialectsCmd()

func newDialectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List supported dialects and their indexing strategies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			providers.DefaultRegistry()

			infos := catalog.Dialects()
			sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Dialect", "Aliases", "Extensions", "Strategy"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			for _, info := range infos {
				table.Append([]string{
					info.ID,
					strings.Join(info.Aliases, ","),
					strings.Join(info.Extensions, ","),
					info.Strategy,
				})
			}
			table.Render()
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(dialectsCmd)
}
