package database

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrUnsupportedDriver is returned for an unknown Config.Type.
var ErrUnsupportedDriver = errors.New("unsupported database type")

// Config holds database configuration
type Config struct {
	Type     string // "mysql", "postgres" or "sqlite"
	Host     string
	Port     int
	User     string
	Password string
	Database string // database name, or the file path for sqlite
	SSLMode  string // For PostgreSQL
}

// ForTarget returns a copy of c pointed at target: the host for server
// databases, the file for sqlite.
func (c Config) ForTarget(target string) Config {
	if c.Type == "sqlite" {
		c.Database = target
	} else {
		c.Host = target
	}
	return c
}

// String describes the connection without credentials.
func (c Config) String() string {
	if c.Type == "sqlite" {
		return "sqlite:" + c.Database
	}
	return fmt.Sprintf("%s://%s/%s", c.Type, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)
}

// QueryResult represents a query result set
type QueryResult struct {
	Columns []string
	Rows    [][]string
}

func mysqlDSN(config Config) string {
	cfg := mysqldriver.NewConfig()
	cfg.User = config.User
	cfg.Passwd = config.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	cfg.DBName = config.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func dialector(config Config) (gorm.Dialector, error) {
	switch config.Type {
	case "mysql":
		return mysql.Open(mysqlDSN(config)), nil

	case "postgres":
		sslMode := config.SSLMode
		if sslMode == "" {
			sslMode = "disable" // Default SSL mode
		}
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
			config.Host, config.User, config.Password, config.Database, config.Port, sslMode)
		return postgres.Open(dsn), nil

	case "sqlite":
		if config.Database == "" {
			return nil, errors.New("sqlite needs a database file")
		}
		return sqlite.Open(config.Database), nil

	default:
		return nil, fmt.Errorf("%w: %s (supported types: mysql, postgres, sqlite)", ErrUnsupportedDriver, config.Type)
	}
}

// Connect establishes a connection to the database using GORM. A nil log
// discards GORM's warnings.
func Connect(config Config, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dial, err := dialector(config)
	if err != nil {
		return nil, err
	}

	// Route GORM's logger through zap
	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("error opening database connection: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error accessing underlying SQL DB: %w", err)
	}

	if config.Type == "sqlite" {
		// one writer at a time
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Minute * 3)
	}

	// Check if connection is working
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}

// ExecuteRawQuery executes the given SQL query and returns the result
func ExecuteRawQuery(db *gorm.DB, query string) (*QueryResult, error) {
	// Execute raw query
	rows, err := db.Raw(query).Rows()
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	// Get column names
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error getting column names: %w", err)
	}

	result := &QueryResult{
		Columns: columns,
		Rows:    [][]string{},
	}

	columnCount := len(columns)
	values := make([]interface{}, columnCount)
	valuePtrs := make([]interface{}, columnCount)

	for rows.Next() {
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		rowStrings := make([]string, columnCount)
		for i, val := range values {
			switch v := val.(type) {
			case nil:
				rowStrings[i] = "NULL"
			case []byte:
				rowStrings[i] = string(v)
			default:
				rowStrings[i] = fmt.Sprintf("%v", v)
			}
		}

		result.Rows = append(result.Rows, rowStrings)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading rows: %w", err)
	}

	return result, nil
}

// Close safely closes the database connection
func Close(db *gorm.DB) error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("error accessing SQL DB: %w", err)
		}
		return sqlDB.Close()
	}
	return nil
}
