package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/campuslink/campuslink/core/event"
)

func (cli *commandLine) favoritesCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Inspect and edit a user's favorite events",
	}
	cmd.PersistentFlags().StringVar(&email, "email", "", "the user's email")
	_ = cmd.MarkPersistentFlagRequired("email")

	printKeys := func(keys []string) error {
		return cli.print(keys, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, strings.Join(keys, "\n"))
			return err
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the favorite keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := cli.favSvc.Get(cmd.Context(), cli.principal(email))
			if err != nil {
				return errors.Wrap(err, "getting favorites")
			}
			return printKeys(keys)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [KEY...]",
		Short: "Replace the favorite keys, none clears them",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := cli.favSvc.Set(cmd.Context(), cli.principal(email), args)
			if err != nil {
				return errors.Wrap(err, "setting favorites")
			}
			return printKeys(keys)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve",
		Short: "Print the favorite events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := cli.favSvc.ResolveFor(cmd.Context(), cli.principal(email))
			if err != nil {
				return errors.Wrap(err, "resolving favorites")
			}
			return cli.print(events, func(w io.Writer) error {
				return printEvents(w, events)
			})
		},
	})

	return cmd
}

func printEvents(w io.Writer, events []event.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tDATE\tORGANIZED BY")
	for _, e := range events {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Name, e.Category, e.Date, e.OrganizedBy)
	}
	return tw.Flush()
}
