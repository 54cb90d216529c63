package app

import (
	"strconv"

	"github.com/cellnetwork/celld/infrastructure/db/database"
	"github.com/cellnetwork/celld/infrastructure/db/database/ldb"
	"github.com/pkg/errors"
)

const currentDatabaseVersion = 1

var databaseVersionKey = database.MakeBucket().Key([]byte("database-version"))

// checkDatabaseVersion stamps a new database with currentDatabaseVersion
// and refuses one written by another version.
func checkDatabaseVersion(db *ldb.LevelDB) error {
	versionBytes, err := db.Get(databaseVersionKey)
	if database.IsNotFoundError(err) {
		return db.Put(databaseVersionKey, []byte(strconv.Itoa(currentDatabaseVersion)))
	}
	if err != nil {
		return err
	}

	databaseVersion, err := strconv.Atoi(string(versionBytes))
	if err != nil {
		return errors.Wrapf(err, "malformed database version %q", versionBytes)
	}
	if databaseVersion != currentDatabaseVersion {
		return errors.Errorf("invalid database version %d. Expected version: %d",
			databaseVersion, currentDatabaseVersion)
	}
	return nil
}
