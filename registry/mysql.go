package registry

import (
	"context"

	"github.com/go-sql-driver/mysql"

	"github.com/syssam/sqlstmt/dialect"
	"github.com/syssam/sqlstmt/dialect/sql"
)

// DSN returns the go-sql-driver data source name for cfg. Host may carry a
// port ("db:3307"); without one the driver default is used.
func DSN(cfg ConnectionConfig) string {
	mc := mysql.NewConfig()
	mc.Net = "tcp"
	mc.Addr = cfg.Host
	mc.DBName = cfg.Database
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Collation = "utf8mb4_general_ci"
	return mc.FormatDSN()
}

// MySQLOpener returns an Opener that connects to MySQL, verifies the
// connection with a ping and wraps it in a StatsDriver configured with opts.
func MySQLOpener(opts ...sql.StatsOption) Opener {
	return func(ctx context.Context, _ string, cfg ConnectionConfig) (dialect.Driver, error) {
		drv, err := sql.OpenWithStats(ctx, dialect.MySQL, DSN(cfg), opts...)
		if err != nil {
			return nil, err
		}
		return drv, nil
	}
}
