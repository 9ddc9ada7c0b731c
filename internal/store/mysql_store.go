package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evyataryagoni/ipscope/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GeoResponseModel is the GORM model for the geo_responses table
type GeoResponseModel struct {
	IP        string    `gorm:"column:ip;primaryKey;size:45"`
	City      string    `gorm:"column:city"`
	Region    string    `gorm:"column:region"`
	Country   string    `gorm:"column:country;size:2"`
	Loc       string    `gorm:"column:loc;size:64"`
	Org       string    `gorm:"column:org"`
	Postal    string    `gorm:"column:postal;size:32"`
	Timezone  string    `gorm:"column:timezone;size:64"`
	UpdatedAt time.Time `gorm:"column:updated_at;index"`
}

// TableName overrides GORM's pluralized default
func (GeoResponseModel) TableName() string {
	return "geo_responses"
}

func (m *GeoResponseModel) toResponse() *models.GeoResponse {
	return &models.GeoResponse{
		IP:       m.IP,
		City:     m.City,
		Region:   m.Region,
		Country:  m.Country,
		Loc:      m.Loc,
		Org:      m.Org,
		Postal:   m.Postal,
		Timezone: m.Timezone,
	}
}

// MySQLStore caches payloads in MySQL through GORM
// Rows older than ttl are treated as misses (zero = never stale).
type MySQLStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

// NewMySQLStore connects, configures the pool and migrates the table
//
// DSN format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLStore(dsn string, ttl time.Duration) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL with GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	if err := db.AutoMigrate(&GeoResponseModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate geo_responses: %w", err)
	}

	return &MySQLStore{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *MySQLStore) FindByIP(ctx context.Context, ip string) (*models.GeoResponse, error) {
	var record GeoResponseModel

	query := s.db.WithContext(ctx).Where("ip = ?", ip)
	if s.ttl > 0 {
		query = query.Where("updated_at > ?", s.now().Add(-s.ttl))
	}

	if err := query.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return record.toResponse(), nil
}

// Save upserts the payload and refreshes its timestamp
func (s *MySQLStore) Save(ctx context.Context, resp *models.GeoResponse) error {
	if resp == nil || resp.IP == "" {
		return errNoAddress
	}

	row := GeoResponseModel{
		IP:        resp.IP,
		City:      resp.City,
		Region:    resp.Region,
		Country:   resp.Country,
		Loc:       resp.Loc,
		Org:       resp.Org,
		Postal:    resp.Postal,
		Timezone:  resp.Timezone,
		UpdatedAt: s.now(),
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *MySQLStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
