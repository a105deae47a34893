package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oiime/logrusbun"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/mentormatch/mentormatch/config"
	"github.com/mentormatch/mentormatch/pkg/embeddings"
	"github.com/mentormatch/mentormatch/pkg/matcher"
	"github.com/mentormatch/mentormatch/pkg/models"
	"github.com/mentormatch/mentormatch/pkg/server"
	"github.com/mentormatch/mentormatch/pkg/store/postgres"
)

const (
	ErrStoreTypeNotSet   = "store.type must be set"
	ErrPostgresDSNNotSet = "store.postgres.dsn must be set"
	StoreTypePostgres    = "postgres"
)

// run is the entrypoint for the mentormatch server
func run() {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatalf("Error configuring MentorMatch: %s", err)
	}

	handleCLIOptions()

	log.Infof("Starting mentormatch server version %s", config.VersionString)

	config.SetLogLevel(cfg)
	appState := NewAppState(cfg)

	srv := server.Create(appState)

	log.Infof("Listening on: %s", srv.Addr)
	err = srv.ListenAndServe()
	if err != nil {
		log.Fatal(err)
	}
}

// NewAppState creates an AppState struct from the config file / ENV,
// initializes the match store, and creates the embedding client
func NewAppState(cfg *config.Config) *models.AppState {
	if _, err := matcher.ParseStrategy(cfg.Matching.Strategy); err != nil {
		log.Fatal(err)
	}

	embeddingClient, err := embeddings.NewEmbeddingClient(cfg)
	if err != nil {
		log.Fatal(err)
	}

	appState := &models.AppState{
		EmbeddingClient: embeddingClient,
		Config:          cfg,
	}

	initializeMatchStore(appState)
	setupSignalHandler(appState)

	return appState
}

// handleCLIOptions handles CLI options that don't require the server to run
func handleCLIOptions() {
	if showVersion {
		fmt.Println(config.VersionString)
		os.Exit(0)
	}
}

// initializeMatchStore initializes the match store based on the config file / ENV
func initializeMatchStore(appState *models.AppState) {
	if appState.Config.Store.Type == "" {
		log.Fatal(ErrStoreTypeNotSet)
	}

	switch appState.Config.Store.Type {
	case StoreTypePostgres:
		if appState.Config.Store.Postgres.DSN == "" {
			log.Fatal(ErrPostgresDSNNotSet)
		}
		db, err := postgres.NewPostgresConn(appState)
		if err != nil {
			log.Fatal(err)
		}
		if appState.Config.Log.Level == "debug" {
			pgDebugLogging(db)
		}
		matchStore, err := postgres.NewPostgresMatchStore(appState, db)
		if err != nil {
			log.Fatal(err)
		}
		appState.MatchStore = matchStore
	default:
		log.Fatal(
			fmt.Sprintf(
				"store.type (%s) is not supported",
				appState.Config.Store.Type,
			),
		)
	}

	log.Info("Using match store: ", appState.Config.Store.Type)
}

func pgDebugLogging(db *bun.DB) {
	db.AddQueryHook(logrusbun.NewQueryHook(logrusbun.QueryHookOptions{
		LogSlow:         time.Second,
		Logger:          log,
		QueryLevel:      logrus.DebugLevel,
		ErrorLevel:      logrus.ErrorLevel,
		SlowLevel:       logrus.WarnLevel,
		MessageTemplate: "{{.Operation}}[{{.Duration}}]: {{.Query}}",
		ErrorTemplate:   "{{.Operation}}[{{.Duration}}]: {{.Query}}: {{.Error}}",
	}))
}

// setupSignalHandler sets up a signal handler to close the MatchStore connection on termination
func setupSignalHandler(appState *models.AppState) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		if err := appState.MatchStore.Close(); err != nil {
			log.Errorf("Error closing MatchStore connection: %v", err)
		}
		os.Exit(0)
	}()
}
