package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/countrydir/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CountryRecord is the GORM model for a mirrored countries table.
// List columns are stored ';'-separated, as in the CSV fixture.
type CountryRecord struct {
	Name       string `gorm:"column:name;primaryKey"`
	Flag       string `gorm:"column:flag"`
	Region     string `gorm:"column:region"`
	Subregion  string `gorm:"column:subregion"`
	Capital    string `gorm:"column:capital"`
	Population int64  `gorm:"column:population"`
	TLD        string `gorm:"column:tld"`
	Currencies string `gorm:"column:currencies"`
	Languages  string `gorm:"column:languages"`
}

// TableName overrides GORM's pluralized default ("country_records")
func (CountryRecord) TableName() string {
	return "countries"
}

func (r CountryRecord) toModel() models.Country {
	return models.Country{
		Name:            r.Name,
		FlagImageURL:    r.Flag,
		Region:          r.Region,
		Subregion:       r.Subregion,
		Capital:         r.Capital,
		Population:      r.Population,
		TopLevelDomains: splitList(r.TLD),
		CurrencyCodes:   splitList(r.Currencies),
		LanguageNames:   splitList(r.Languages),
	}
}

// likeEscaper escapes LIKE wildcards in user input.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// MySQLSource implements Source over a MySQL table using GORM
type MySQLSource struct {
	db *gorm.DB
}

// NewMySQLSource connects to MySQL
//
// DSN format: user:password@tcp(host:port)/dbname?parseTime=true
func NewMySQLSource(dsn string) (*MySQLSource, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(mysql.Open(dsn), config)
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

	return &MySQLSource{db: db}, nil
}

// ListAll runs SELECT * FROM countries ORDER BY name
func (s *MySQLSource) ListAll(ctx context.Context) ([]models.Country, error) {
	return s.find(s.db.WithContext(ctx))
}

// FindByName runs a case-insensitive LIKE on the name column
func (s *MySQLSource) FindByName(ctx context.Context, query string) ([]models.Country, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	return s.find(s.db.WithContext(ctx).Where("LOWER(name) LIKE ?", pattern))
}

// FindByFullName matches the primary key exactly
func (s *MySQLSource) FindByFullName(ctx context.Context, name string) ([]models.Country, error) {
	return s.find(s.db.WithContext(ctx).Where("name = ?", name))
}

// ListByRegion matches the region column by prefix
func (s *MySQLSource) ListByRegion(ctx context.Context, region models.Region) ([]models.Country, error) {
	pattern := likeEscaper.Replace(strings.ToLower(string(region))) + "%"
	return s.find(s.db.WithContext(ctx).Where("LOWER(region) LIKE ?", pattern))
}

func (s *MySQLSource) find(tx *gorm.DB) ([]models.Country, error) {
	var records []CountryRecord
	if err := tx.Order("name").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: database query failed: %w", ErrUnavailable, err)
	}

	countries := make([]models.Country, len(records))
	for i, r := range records {
		countries[i] = r.toModel()
	}
	return countries, nil
}

// Close closes the database connection
func (s *MySQLSource) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
