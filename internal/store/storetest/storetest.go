// Package storetest opens throwaway in-memory databases for repository tests.
package storetest

import (
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns an in-memory SQLite database migrated for the given models.
// The pool is pinned to one connection so every query sees the same database.
func Open(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(models) > 0 {
		require.NoError(t, db.AutoMigrate(models...))
	}
	return db
}

// Write is one UPDATE or DELETE statement seen by a WriteLog.
type Write struct {
	Op    string
	Table string
	Vars  []interface{}
}

// WriteLog records the row writes issued through a database, in order.
type WriteLog struct {
	mu     sync.Mutex
	writes []Write
}

// RecordWrites registers gorm callbacks on db that log every successful UPDATE and DELETE.
func RecordWrites(t testing.TB, db *gorm.DB) *WriteLog {
	t.Helper()
	log := &WriteLog{}
	record := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			if tx.Error != nil {
				return
			}
			log.mu.Lock()
			defer log.mu.Unlock()
			log.writes = append(log.writes, Write{
				Op:    op,
				Table: tx.Statement.Table,
				Vars:  append([]interface{}(nil), tx.Statement.Vars...),
			})
		}
	}
	require.NoError(t, db.Callback().Update().After("gorm:update").Register("storetest:record_update", record("UPDATE")))
	require.NoError(t, db.Callback().Delete().After("gorm:delete").Register("storetest:record_delete", record("DELETE")))
	return log
}

func (l *WriteLog) Writes() []Write {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Write(nil), l.writes...)
}

// Statements returns "OP table" for every recorded write.
func (l *WriteLog) Statements() []string {
	writes := l.Writes()
	out := make([]string, len(writes))
	for i, w := range writes {
		out[i] = w.Op + " " + w.Table
	}
	return out
}

func (l *WriteLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writes = nil
}
