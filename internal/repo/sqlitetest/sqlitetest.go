// Package sqlitetest opens an in-memory sqlite database carrying the subset of
// the chirpy schema the repositories touch. Only tests import it.
package sqlitetest

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS "User" (
  "id" TEXT PRIMARY KEY,
  "name" TEXT,
  "username" TEXT,
  "email" TEXT,
  "avatar" TEXT,
  "createdAt" DATETIME,
  "updatedAt" DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS "Project" (
  "id" TEXT PRIMARY KEY,
  "name" TEXT NOT NULL,
  "domain" TEXT,
  "userId" TEXT,
  "createdAt" DATETIME,
  "updatedAt" DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS "Page" (
  "id" TEXT PRIMARY KEY,
  "url" TEXT NOT NULL,
  "title" TEXT,
  "projectId" TEXT NOT NULL,
  "createdAt" DATETIME,
  "updatedAt" DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS "Comment" (
  "id" TEXT PRIMARY KEY,
  "pageId" TEXT NOT NULL,
  "userId" TEXT NOT NULL,
  "parentId" TEXT,
  "content" TEXT NOT NULL,
  "createdAt" DATETIME,
  "updatedAt" DATETIME,
  "deletedAt" DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS "NotificationMessage" (
  "id" TEXT PRIMARY KEY,
  "type" TEXT NOT NULL,
  "recipientId" TEXT NOT NULL,
  "triggeredById" TEXT NOT NULL,
  "url" TEXT NOT NULL,
  "content" TEXT,
  "read" INTEGER NOT NULL DEFAULT 0,
  "deletedAt" DATETIME,
  "createdAt" DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS "NotificationSubscription" (
  "id" TEXT PRIMARY KEY,
  "userId" TEXT NOT NULL,
  "endpoint" TEXT NOT NULL UNIQUE,
  "p256dh" TEXT NOT NULL,
  "auth" TEXT NOT NULL,
  "createdAt" DATETIME
);`,
}

// Open returns a connection private to t with every table created.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
