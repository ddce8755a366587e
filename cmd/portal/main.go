package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/careplanhq/portal-client/apiclient"
	"github.com/careplanhq/portal-client/guard"
	"github.com/careplanhq/portal-client/internal/config"
	"github.com/careplanhq/portal-client/plans"
	"github.com/careplanhq/portal-client/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	_ = godotenv.Load()

	c := config.New()
	logger := newLogger(c)
	app, err := newApp(c, logger)
	if err != nil {
		return err
	}
	return newRootCommand(app).Execute()
}

func newLogger(c config.Config) zerolog.Logger {
	if c.GetEnv() == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.InfoLevel)
}

// app holds the wired session core: one store, one API choke point, the guard
// watching the store, and the resource services on top.
type app struct {
	cfg    config.Config
	logger zerolog.Logger
	store  *session.Store
	api    *apiclient.Client
	plans  *plans.Service
	guard  *guard.Guard
}

func newApp(c config.Config, logger zerolog.Logger) (*app, error) {
	store := session.NewStore(
		session.WithStorage(session.NewFileStorage(c.GetDataFolder())),
		session.WithLogger(logger),
	)

	api, err := apiclient.New(c, store, apiclient.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("newApp: %w", err)
	}
	store.SetProfileFetcher(api)

	planService, err := plans.NewService(api, plans.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("newApp: %w", err)
	}

	g := guard.New(routeLogin, guard.WithLogger(logger))
	g.Watch(store, func(loginPath string) {
		fmt.Fprintln(os.Stderr, "Session ended. Run 'portal login' to sign in again.")
	})

	return &app{
		cfg:    c,
		logger: logger,
		store:  store,
		api:    api,
		plans:  planService,
		guard:  g,
	}, nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
