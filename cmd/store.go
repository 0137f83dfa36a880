package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/brand-scope/internal/store"
)

// initStore opens the configured backend. Callers own Migrate and Close.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		st, err := store.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		zap.L().Debug("using sqlite store", zap.String("path", cfg.Store.SQLitePath))
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
		})
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		return st, nil
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// openMigratedStore opens the store and brings its schema up to date.
func openMigratedStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
