package storage_test

import (
	"github.com/RameshMYatnalli/new-claimsat/internal/claims"
	"github.com/RameshMYatnalli/new-claimsat/internal/disaster"
	"github.com/RameshMYatnalli/new-claimsat/internal/reunify"
	"github.com/RameshMYatnalli/new-claimsat/internal/storage"
)

var (
	_ storage.Storage = (*storage.SQLiteStorage)(nil)
	_ storage.Storage = (*storage.MongoStorage)(nil)

	_ claims.Store   = storage.Storage(nil)
	_ disaster.Store = storage.Storage(nil)
	_ reunify.Store  = storage.Storage(nil)
)
