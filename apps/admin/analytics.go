package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (cli *commandLine) analyticsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Print the events report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := cli.statsSvc.Compute(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "computing analytics")
			}
			return cli.print(rep, printYAML(rep))
		},
	}
}
