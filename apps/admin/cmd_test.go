package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
	blobstore "github.com/campuslink/campuslink/storage/blob"
	inmemdb "github.com/campuslink/campuslink/storage/database/inmem"
)

const seedYAML = `
events:
  - name: Hackathon
    category: Tech
    about: 24h of code
    instaId: hack
    date: "2025-03-01"
    email: club@campus.edu
    organizedBy: Coding Club
    adminEmail: club@campus.edu
  - name: Dance Night
    category: Culture
    about: Let's dance
    instaId: dance
    date: "2025-03-02"
    email: dance@campus.edu
    organizedBy: Dance Club
    adminEmail: dance@campus.edu
favorites:
  ada@campus.edu: [Dance Night, Hackathon]
`

var (
	db      *inmemdb.DB
	evtRepo event.Repository
)

func setup(t *testing.T, joinField string) (*commandLine, *bytes.Buffer) {
	// set up DB & repos
	db = inmemdb.Open()
	evtRepo = inmemdb.NewEventRepository(db)

	logger := core.NewNopLogger()
	validate := core.NewValidator(core.NewTranslator())
	conf := core.FavoritesConfig{BatchSize: core.MaxInQueryValues, Concurrency: 1, JoinField: joinField}

	// start CLI
	out := new(bytes.Buffer)
	return &commandLine{
		evtSvc:   event.NewService(evtRepo, blobstore.NewMemoryStore(core.StorageConfig{}), validate, logger),
		favSvc:   favorite.NewService(inmemdb.NewFavoriteRepository(db), evtRepo, conf, logger),
		statsSvc: analytics.NewService(evtRepo),
		dir:      core.NewDirectory(core.IdentityConfig{}),
		out:      out,
	}, out
}

func writeSeed(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_errors(t *testing.T) {
	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErrStr: `unknown command "lol" for "campuslink-admin"`},
		{name: "invalid format", args: []string{"analytics", "--format", "xml"}, wantErrStr: `invalid format "xml": must be one of [text json]`},
		{name: "seed: no file", args: []string{"seed"}, wantErrStr: "accepts 1 arg(s), received 0"},
		{name: "seed: missing file", args: []string{"seed", "/does/not/exist.yaml"}, wantErrStr: "opening seed file"},
		{name: "seed: invalid yaml", args: []string{"seed", "{{invalid"}, wantErrStr: "decoding seed file", extra: "events: [\n"},
		{name: "favorites: no email", args: []string{"favorites", "get"}, wantErrStr: `required flag(s) "email" not set`},
		{name: "favorites: no identity", args: []string{"favorites", "get", "--email", " "}, wantErr: core.ErrMissingIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cli, _ := setup(t, "id")
			args := append([]string{"admin", "--format", "json"}, tt.args...)
			if content, ok := tt.extra.(string); ok {
				args[len(args)-1] = writeSeed(t, content)
			}

			err := cli.run(args)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			}
			if tt.wantErrStr != "" {
				assert.Contains(t, err.Error(), tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli, out := setup(t, "id")
	path := writeSeed(t, seedYAML)

	require.NoError(t, cli.run([]string{"admin", "--format", "json", "seed", path}))
	var res seedResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, seedResult{Created: []string{"Hackathon", "Dance Night"}, Skipped: []string{}, Favorites: 1}, res)

	// seeding again skips the existing events
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "--format", "json", "seed", path}))
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, seedResult{Created: []string{}, Skipped: []string{"Hackathon", "Dance Night"}, Favorites: 1}, res)

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "--format", "json", "favorites", "resolve", "--email", "Ada@Campus.edu"}))
	var events []event.Event
	require.NoError(t, json.Unmarshal(out.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, "Dance Night", events[0].Name)
	assert.Equal(t, "Hackathon", events[1].Name)
}

func Test_commandLine_seedUnknownFavorite(t *testing.T) {
	cli, _ := setup(t, "id")
	path := writeSeed(t, "favorites:\n  ada@campus.edu: [Nope]\n")

	err := cli.run([]string{"admin", "seed", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown event "Nope"`)
}

func Test_commandLine_favorites(t *testing.T) {
	for _, joinField := range []string{"id", "name"} {
		t.Run(joinField, func(t *testing.T) {
			cli, out := setup(t, joinField)
			require.NoError(t, cli.run([]string{"admin", "seed", writeSeed(t, seedYAML)}))

			run := func(args ...string) string {
				out.Reset()
				require.NoError(t, cli.run(append([]string{"admin", "--format", "text"}, args...)))
				return out.String()
			}

			got := run("favorites", "get", "--email", "ada@campus.edu")
			if joinField == "name" {
				assert.Equal(t, "Dance Night\nHackathon\n", got)
			} else {
				assert.Len(t, strings.Fields(got), 2)
			}

			got = run("favorites", "resolve", "--email", "ada@campus.edu")
			lines := strings.Split(strings.TrimSpace(got), "\n")
			require.Len(t, lines, 3)
			assert.True(t, strings.HasPrefix(lines[0], "ID"))
			assert.Contains(t, lines[1], "Dance Night")
			assert.Contains(t, lines[2], "Hackathon")

			assert.Equal(t, "\n", run("favorites", "set", "--email", "ada@campus.edu"))
			assert.Equal(t, "\n", run("favorites", "get", "--email", "ada@campus.edu"))
			assert.Equal(t, "ID  NAME  CATEGORY  DATE  ORGANIZED BY\n", run("favorites", "resolve", "--email", "ada@campus.edu"))
		})
	}
}

func Test_commandLine_analytics(t *testing.T) {
	cli, out := setup(t, "id")
	require.NoError(t, cli.run([]string{"admin", "seed", writeSeed(t, seedYAML)}))

	t.Run("json", func(t *testing.T) {
		out.Reset()
		require.NoError(t, cli.run([]string{"admin", "--format", "json", "analytics"}))
		var rep analytics.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
		assert.Equal(t, 2, rep.TotalEvents)
		assert.Equal(t, map[string]int{"Tech": 1, "Culture": 1}, rep.CategoryBreakdown)
	})

	t.Run("text on a terminal", func(t *testing.T) {
		isTerminalFunc = func(int) bool { return true }
		defer func() { isTerminalFunc = term.IsTerminal }()

		out.Reset()
		cli.format = ""
		require.NoError(t, cli.run([]string{"admin", "analytics"}))
		assert.Contains(t, out.String(), "totalEvents: 2\n")
		assert.Contains(t, out.String(), "categoryBreakdown:\n")
	})
}
