// Package managers holds the infrastructure the account actions run on: the connection pool,
// password hashing, the session cookie and outgoing mail.
package managers

import (
	"context"
	"time"

	"github.com/jxiaof/next16-demo/internal/interfaces"
	log "github.com/sirupsen/logrus"
)

// DatabaseMgr exposes the shared connection pool.
type DatabaseMgr interface {
	GetPool() interfaces.PgxPoolIface
	Healthy(ctx context.Context) bool
}

// DatabaseManager owns the pgx pool used by every store.
type DatabaseManager struct {
	Pool interfaces.PgxPoolIface
}

func (dbMgr *DatabaseManager) GetPool() interfaces.PgxPoolIface {
	return dbMgr.Pool
}

// Healthy pings the database with a short deadline.
func (dbMgr *DatabaseManager) Healthy(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := dbMgr.Pool.Ping(pingCtx); err != nil {
		log.Warn("Database ping failed: ", err)
		return false
	}
	return true
}

func NewDatabaseManager(pool interfaces.PgxPoolIface) DatabaseMgr {
	log.Info("Initializing database manager")
	return &DatabaseManager{Pool: pool}
}
