package config

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"

	"github.com/go-sql-driver/mysql"
)

// DSN renders the go-sql-driver connection string for c.
func (c DatabaseConfig) DSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, c.Port)
	mc.DBName = c.Name
	mc.ParseTime = true
	mc.Timeout = c.Timeout
	return mc.FormatDSN()
}

// InitDatabase opens and pings the configured database.
func InitDatabase(ctx context.Context, cfg *AppConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
	defer cancel()

	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to database",
		"host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Name)

	return db, nil
}
