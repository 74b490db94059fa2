package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

type (
	seedFile struct {
		Events []seedEvent `yaml:"events"`
		// Favorites lists event names per user email.
		Favorites map[string][]string `yaml:"favorites"`
	}

	seedEvent struct {
		Name        string `yaml:"name"`
		Category    string `yaml:"category"`
		About       string `yaml:"about"`
		InstaID     string `yaml:"instaId"`
		Date        string `yaml:"date"`
		Email       string `yaml:"email"`
		OrganizedBy string `yaml:"organizedBy"`
		AdminEmail  string `yaml:"adminEmail"`
	}

	seedResult struct {
		Created   []string `json:"created"`
		Skipped   []string `json:"skipped"`
		Favorites int      `json:"favorites"`
	}
)

func (cli *commandLine) seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load events and favorites from a YAML file",
		Long: `Load events and favorites from a YAML file.

Events whose name is taken are skipped, so seeding twice is harmless.
Favorites are listed by event name and stored with the configured join field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "opening seed file")
			}
			defer func() { _ = f.Close() }()

			res, err := cli.seed(cmd.Context(), f)
			if err != nil {
				return err
			}
			return cli.print(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d events created, %d skipped, %d favorite lists set\n",
					len(res.Created), len(res.Skipped), res.Favorites)
				return err
			})
		},
	}
}

func (cli *commandLine) seed(ctx context.Context, r io.Reader) (seedResult, error) {
	var data seedFile
	if err := yaml.NewDecoder(r).Decode(&data); err != nil && err != io.EOF {
		return seedResult{}, errors.Wrap(err, "decoding seed file")
	}

	res := seedResult{Created: []string{}, Skipped: []string{}}
	for _, se := range data.Events {
		ne := event.NewEvent{
			Name:        se.Name,
			Category:    se.Category,
			About:       se.About,
			InstaID:     se.InstaID,
			Date:        se.Date,
			Email:       se.Email,
			OrganizedBy: se.OrganizedBy,
		}
		_, err := cli.evtSvc.Create(ctx, cli.principal(se.AdminEmail), ne, nil)
		if err != nil {
			if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && vErr.Err == event.ErrNameExists {
				res.Skipped = append(res.Skipped, se.Name)
				continue
			}
			return res, errors.Wrapf(err, "creating event %q", se.Name)
		}
		res.Created = append(res.Created, se.Name)
	}

	if len(data.Favorites) == 0 {
		return res, nil
	}
	events, err := cli.evtSvc.Query(ctx, event.QueryFilter{})
	if err != nil {
		return res, errors.Wrap(err, "querying events")
	}
	keys := make(map[string]string, len(events))
	for _, e := range events {
		keys[e.Name] = e.Key(cli.favSvc.JoinField())
	}
	for email, names := range data.Favorites {
		favs := make([]string, 0, len(names))
		for _, name := range names {
			key, ok := keys[core.CleanString(name)]
			if !ok {
				return res, errors.Errorf("favorites of %s: unknown event %q", email, name)
			}
			favs = append(favs, key)
		}
		if _, err = cli.favSvc.Set(ctx, cli.principal(email), favs); err != nil {
			return res, errors.Wrapf(err, "setting favorites of %s", email)
		}
		res.Favorites++
	}
	return res, nil
}
