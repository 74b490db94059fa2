package main

import (
	"context"
	"fmt"
	"os"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
	logsvc "github.com/campuslink/campuslink/services/logger"
	blobstore "github.com/campuslink/campuslink/storage/blob"
	"github.com/campuslink/campuslink/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewComponentLogger("ADMIN", conf)

	// set up DB
	repos, err := database.Open(context.Background(), conf.Database, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}

	// start CLI
	validate := core.NewValidator(core.NewTranslator())
	cli := commandLine{
		evtSvc:   event.NewService(repos.Events, blobstore.NewMemoryStore(conf.Storage), validate, logger),
		favSvc:   favorite.NewService(repos.Favorites, repos.Events, conf.Favorites, logger),
		statsSvc: analytics.NewService(repos.Events),
		dir:      core.NewDirectory(conf.Identity),
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = repos.Close()
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		os.Exit(1)
	}
}
