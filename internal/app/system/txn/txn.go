// Package txn runs multi-document MongoDB operations atomically where the
// server supports it.
//
// Every hierarchy mutation that touches more than one document (insert plus
// parent children push, reparent, cascading delete) goes through Run so the
// parent pointer and the children cache move together. On deployments
// without transaction support (standalone MongoDB, some DocumentDB
// configurations) Run degrades to plain execution rather than failing, which
// preserves the original best-effort behavior as the floor.
//
//	err := txn.Run(ctx, db, log, func(ctx context.Context) error {
//	    // operations here share one transaction when available
//	    return nil
//	})
package txn

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func receives a context that is a mongo.SessionContext when a transaction
// is active, or the original context on fallback. Use it for every database
// call inside the closure.
type Func func(ctx context.Context) error

// Run executes fn inside a MongoDB transaction if the deployment supports
// one, and falls back to running fn without a transaction otherwise. The
// logger may be nil to suppress fallback warnings.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		if log != nil {
			log.Warn("failed to start session, running without transaction", zap.Error(err))
		}
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil {
		if IsNotSupported(err) {
			if log != nil {
				log.Warn("transactions not supported, running without transaction", zap.Error(err))
			}
			return fn(ctx)
		}
		return err
	}
	return nil
}

// IsNotSupported reports whether err indicates the deployment cannot run
// multi-document transactions (error code 20 "Transaction numbers are only
// allowed on a replica set member or mongos", 51 IllegalOperation, or 263).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	if cmdErr, ok := err.(mongo.CommandError); ok {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Message matching catches DocumentDB variants that report different
	// codes. Require two keyword hits to avoid false positives.
	errStr := strings.ToLower(err.Error())
	matchCount := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(errStr, kw) {
			matchCount++
		}
	}
	return matchCount >= 2
}
