package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	echoapi "github.com/campuslink/campuslink/apps/api/echo"
	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/analytics"
	"github.com/campuslink/campuslink/core/application"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/core/favorite"
	emailsvc "github.com/campuslink/campuslink/services/email"
	logsvc "github.com/campuslink/campuslink/services/logger"
	blobstore "github.com/campuslink/campuslink/storage/blob"
	"github.com/campuslink/campuslink/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	logger := logsvc.NewComponentLogger("API", conf)
	dbLogger := logsvc.NewComponentLogger("DB", conf)

	// set up DB
	repos, err := database.Open(ctx, conf.Database, dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()
	dbLogger.Info(fmt.Sprintf("Using %q database", conf.Database.Engine))

	// set up blob storage
	var blobs core.BlobStore
	if conf.Storage.Bucket != "" {
		if blobs, err = blobstore.NewS3Store(ctx, conf.Storage); err != nil {
			logger.Fatal(fmt.Sprintf("setting up blob storage: %v", err), err)
		}
	} else {
		logger.Warn("No storage bucket configured: images are kept in memory")
		blobs = blobstore.NewMemoryStore(conf.Storage)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)

	evtSvc := event.NewService(repos.Events, blobs, validate, logger)
	favSvc := favorite.NewService(repos.Favorites, repos.Events, conf.Favorites, logger)
	appSvc := application.NewService(repos.Applications, repos.Events, mailSvc, validate, logger)
	statsSvc := analytics.NewService(repos.Events)

	jwtKey, err := echoapi.ParseJWTKey(conf.Identity.JWTPublicKey)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up identity: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("database").Set(conf.Database.Engine)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         logger,
			JWTKey:         jwtKey,
			Directory:      core.NewDirectory(conf.Identity),
			EventSvc:       evtSvc,
			FavoriteSvc:    favSvc,
			ApplicationSvc: appSvc,
			AnalyticsSvc:   statsSvc,
			Translator:     translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
