package store_test

import (
	"testing"

	"github.com/erazemk/assettrack/internal/db"
	"github.com/erazemk/assettrack/internal/store"
	"github.com/erazemk/assettrack/internal/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return store.NewSQLite(db.NewTestDB(t))
	})
}
