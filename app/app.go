package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cellnetwork/celld/infrastructure/config"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/cellnetwork/celld/infrastructure/os/signal"
	"github.com/cellnetwork/celld/util/panics"
	"github.com/cellnetwork/celld/version"
)

const databaseDirectoryName = "chain"

type celldApp struct {
	cfg *config.Config
}

// StartApp starts the celld app, and blocks until it finishes running
func StartApp() error {
	// Get a channel that will be closed when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as the RPC server.
	interrupt := signal.InterruptListener()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer logger.BackendLog.Close()
	defer panics.HandlePanic(log, "MAIN", nil)

	app := &celldApp{cfg: cfg}
	return app.main(interrupt)
}

func (app *celldApp) main(interrupt <-chan struct{}) error {
	logger.InitLog(app.cfg.LogFile(), app.cfg.ErrLogFile())

	// Show version at startup.
	log.Infof("Version %s", version.Version())
	log.Infof("Network %s", app.cfg.NetParams().Name)

	db, err := app.openDB()
	if err != nil {
		log.Errorf("Loading database failed: %+v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down the database...")
		err := db.Close()
		if err != nil {
			log.Errorf("Failed to close the database: %s", err)
		}
	}()

	componentManager, err := NewComponentManager(app.cfg, db)
	if err != nil {
		log.Errorf("Unable to start celld: %+v", err)
		return err
	}
	defer func() {
		log.Infof("Gracefully shutting down celld...")
		componentManager.Stop()
		log.Infof("Celld shutdown complete")
	}()

	componentManager.Start()

	// Wait until the interrupt signal is received from an OS signal or
	// shutdown is requested through one of the subsystems such as the RPC
	// server.
	<-interrupt
	return nil
}

func (app *celldApp) openDB() (*ldb.LevelDB, error) {
	var db *ldb.LevelDB
	var err error
	if app.cfg.InMemory {
		log.Infof("Keeping the chain in memory")
		db, err = ldb.NewInMemoryLevelDB()
	} else {
		dbPath := filepath.Join(app.cfg.AppDir, databaseDirectoryName)
		log.Infof("Loading database from '%s'", dbPath)
		db, err = ldb.NewLevelDB(dbPath)
	}
	if err != nil {
		return nil, err
	}

	err = checkDatabaseVersion(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
