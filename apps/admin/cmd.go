package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
)

const cliSubject = "campuslink-admin"

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")

	validFormats = []string{"text", "json"}
)

type commandLine struct {
	evtSvc   *event.Service
	favSvc   *favorite.Service
	statsSvc *analytics.Service
	dir      *core.Directory
	out      io.Writer

	format string
}

func (cli *commandLine) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "campuslink-admin",
		Short:         "Campuslink administration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.resolveFormat()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errHelp
		},
	}
	cmd.SetOut(cli.out)
	cmd.SetErr(cli.out)
	cmd.PersistentFlags().StringVar(&cli.format, "format", "", "output format (json|text), text on a terminal and json otherwise")

	cmd.AddCommand(cli.seedCommand())
	cmd.AddCommand(cli.favoritesCommand())
	cmd.AddCommand(cli.analyticsCommand())
	return cmd
}

func (cli *commandLine) run(args []string) error {
	cmd := cli.rootCommand()
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func (cli *commandLine) resolveFormat() error {
	if cli.format == "" {
		if isTerminalFunc(int(os.Stdout.Fd())) {
			cli.format = "text"
		} else {
			cli.format = "json"
		}
		return nil
	}
	for _, f := range validFormats {
		if f == cli.format {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be one of %v", cli.format, validFormats)
}

// print writes v as indented JSON, or through text in text format.
func (cli *commandLine) print(v interface{}, text func(w io.Writer) error) error {
	if cli.format == "json" {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(cli.out)
}

// printYAML is the text rendering of structured values.
func printYAML(v interface{}) func(w io.Writer) error {
	return func(w io.Writer) error {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
}

func (cli *commandLine) principal(email string) core.Principal {
	return cli.dir.Principal(cliSubject, email)
}
