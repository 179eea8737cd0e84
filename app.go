package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/regland/regland/logger"
	"github.com/regland/regland/pkg/cache"
	"github.com/regland/regland/pkg/config"
	regdb "github.com/regland/regland/pkg/db"
	"github.com/regland/regland/pkg/expression"
	"github.com/regland/regland/pkg/handler"
	"github.com/regland/regland/pkg/middle"
	"github.com/regland/regland/pkg/model"
	"github.com/regland/regland/pkg/region"
)

// app holds everything the server owns.
type app struct {
	db        *regdb.RegDB
	api       *handler.APIContext
	responses *cache.TTL[middle.CachedResponse]
}

func openDB(c *config.Config) (*regdb.RegDB, error) {
	db, err := regdb.Open(c.Database.Path, regdb.Options{
		ReadOnly:     c.Database.ReadOnly,
		MaxOpenConns: c.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Open database on", zap.String("DB_LOC", c.Database.Path), zap.Bool("read_only", c.Database.ReadOnly))
	return db, nil
}

func expressionSource(c *config.Config, db *regdb.RegDB) expression.Source {
	if c.Expression.Source == config.ExpressionSourceDB {
		return expression.DBSource{DB: db.ORM}
	}
	return expression.FileSource{Path: c.Expression.Path}
}

// newApp wires the store, caches and services over an open database.
func newApp(c *config.Config, db *regdb.RegDB) *app {
	store := model.NewStore(db, c.Query.Limits())
	expr := expression.NewCache(expressionSource(c, db), cache.NewTTL[*expression.Table](1, c.Expression.TTL))
	regions := region.NewService(store, expr, cache.NewTTL[*region.CombinedData](c.Cache.Size, c.Cache.TTL))

	return &app{
		db: db,
		api: &handler.APIContext{
			Store:      store,
			Regions:    regions,
			Expression: expr,
			Version:    VERSION,
		},
		responses: cache.NewTTL[middle.CachedResponse](c.Cache.Size, c.Cache.TTL),
	}
}

func (a *app) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
