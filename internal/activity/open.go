package activity

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/database"
)

const defaultSQLitePath = "data/vocabot.db"

// Open returns the backend selected by cfg.Driver
func Open(cfg config.StorageConfig, log zerolog.Logger) (Store, error) {
	clock := clockwork.NewRealClock()
	switch cfg.Driver {
	case "", "file":
		return OpenFile(cfg.Path, clock, log)
	case database.DriverSQLite:
		path := cfg.Path
		if path == "" || path == config.DefaultTrackingFile {
			path = defaultSQLitePath
		}
		db, err := database.Connect(database.DriverSQLite, path)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, clock, log), nil
	case database.DriverPostgres:
		db, err := database.Connect(database.DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db, clock, log), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
