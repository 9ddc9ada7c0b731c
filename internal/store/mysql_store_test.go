package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/evyataryagoni/ipscope/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// setupMockDB creates a mock database for testing
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return db, mock, sqlDB
}

var responseColumns = []string{"ip", "city", "region", "country", "loc", "org", "postal", "timezone", "updated_at"}

// TestMySQLStore_FindByIP_Success tests a cache hit
func TestMySQLStore_FindByIP_Success(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db, now: time.Now}

	rows := sqlmock.NewRows(responseColumns).
		AddRow("8.8.8.8", "Mountain View", "California", "US", "37.4056,-122.0775", "AS15169 Google LLC", "94043", "America/Los_Angeles", time.Now())

	// GORM adds LIMIT 1 to First() queries
	mock.ExpectQuery("SELECT \\* FROM `geo_responses` WHERE ip = \\? .*").
		WithArgs("8.8.8.8", 1).
		WillReturnRows(rows)

	resp, err := store.FindByIP(context.Background(), "8.8.8.8")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.IP != "8.8.8.8" {
		t.Errorf("expected IP '8.8.8.8', got '%s'", resp.IP)
	}
	if resp.Org != "AS15169 Google LLC" {
		t.Errorf("expected org 'AS15169 Google LLC', got '%s'", resp.Org)
	}
	if resp.Loc != "37.4056,-122.0775" {
		t.Errorf("expected loc, got '%s'", resp.Loc)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_FindByIP_WithTTL tests the freshness filter
func TestMySQLStore_FindByIP_WithTTL(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := &MySQLStore{db: db, ttl: time.Hour, now: func() time.Time { return now }}

	rows := sqlmock.NewRows(responseColumns).
		AddRow("1.1.1.1", "Brisbane", "Queensland", "AU", "", "", "", "", now)

	mock.ExpectQuery("SELECT \\* FROM `geo_responses` WHERE ip = \\? AND updated_at > \\? .*").
		WithArgs("1.1.1.1", sqlmock.AnyArg(), 1).
		WillReturnRows(rows)

	resp, err := store.FindByIP(context.Background(), "1.1.1.1")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.City != "Brisbane" {
		t.Errorf("expected city 'Brisbane', got '%s'", resp.City)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_FindByIP_NotFound tests a cache miss
func TestMySQLStore_FindByIP_NotFound(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db, now: time.Now}

	mock.ExpectQuery("SELECT \\* FROM `geo_responses` WHERE ip = \\? .*").
		WithArgs("192.0.2.1", 1).
		WillReturnRows(sqlmock.NewRows(responseColumns))

	resp, err := store.FindByIP(context.Background(), "192.0.2.1")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if resp != nil {
		t.Error("expected nil response")
	}
}

// TestMySQLStore_FindByIP_DatabaseError tests query failures
func TestMySQLStore_FindByIP_DatabaseError(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db, now: time.Now}

	mock.ExpectQuery("SELECT \\* FROM `geo_responses` WHERE ip = \\? .*").
		WithArgs("8.8.8.8", 1).
		WillReturnError(sql.ErrConnDone)

	_, err := store.FindByIP(context.Background(), "8.8.8.8")

	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected database error, got %v", err)
	}
	if !errors.Is(err, sql.ErrConnDone) {
		t.Errorf("expected wrapped sql.ErrConnDone, got %v", err)
	}
}

// TestMySQLStore_Save tests the upsert
func TestMySQLStore_Save(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db, now: time.Now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `geo_responses`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Save(context.Background(), &models.GeoResponse{
		IP:      "9.9.9.9",
		City:    "Berkeley",
		Country: "US",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

// TestMySQLStore_Save_Error tests a failed insert
func TestMySQLStore_Save_Error(t *testing.T) {
	db, mock, sqlDB := setupMockDB(t)
	defer sqlDB.Close()

	store := &MySQLStore{db: db, now: time.Now}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `geo_responses`").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if err := store.Save(context.Background(), &models.GeoResponse{IP: "9.9.9.9"}); err == nil {
		t.Error("expected save error, got nil")
	}
}

// TestMySQLStore_Save_WithoutIP tests rejecting unusable payloads
func TestMySQLStore_Save_WithoutIP(t *testing.T) {
	store := &MySQLStore{now: time.Now}

	if err := store.Save(context.Background(), &models.GeoResponse{}); err == nil {
		t.Error("expected error for payload without IP")
	}
}

// TestMySQLStore_Close tests closing the connection
func TestMySQLStore_Close(t *testing.T) {
	db, mock, _ := setupMockDB(t)
	store := &MySQLStore{db: db}

	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestMySQLStore_Close_NilDB tests closing an unconnected store
func TestMySQLStore_Close_NilDB(t *testing.T) {
	store := &MySQLStore{}
	if err := store.Close(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// TestGeoResponseModel_TableName tests the table name override
func TestGeoResponseModel_TableName(t *testing.T) {
	if name := (GeoResponseModel{}).TableName(); name != "geo_responses" {
		t.Errorf("expected table name 'geo_responses', got '%s'", name)
	}
}
