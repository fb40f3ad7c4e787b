package main

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/footycards/attax-backend/internal/battle"
	"github.com/footycards/attax-backend/internal/catalog"
	"github.com/footycards/attax-backend/internal/config"
	"github.com/footycards/attax-backend/internal/engine"
	"github.com/footycards/attax-backend/internal/httpapi"
	"github.com/footycards/attax-backend/internal/hub"
	"github.com/footycards/attax-backend/internal/ledger"
	"github.com/footycards/attax-backend/internal/pack"
	"github.com/footycards/attax-backend/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal("load card catalog", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Int("cards", cat.Size()))

	var sessions store.SessionStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		sessions = store.NewRedis(client, time.Duration(cfg.SessionTTLHours)*time.Hour)
		logger.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = store.NewMemory()
		logger.Info("using in-memory session store")
	}

	var accounts ledger.AccountLedger
	if cfg.DatabaseURL != "" {
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			logger.Fatal("connect postgres", zap.Error(err))
		}
		accounts, err = ledger.NewGorm(db, pack.StartingPoints)
		if err != nil {
			logger.Fatal("init ledger", zap.Error(err))
		}
		logger.Info("using postgres account ledger")
	} else {
		accounts = ledger.NewMemory(pack.StartingPoints)
		logger.Info("using in-memory account ledger")
	}

	rng, err := pack.NewRNG()
	if err != nil {
		logger.Fatal("seed rng", zap.Error(err))
	}

	ctx := context.Background()
	h := hub.NewHub(ctx)

	eng := engine.New(cat)
	battleSvc := battle.NewService(eng, sessions, battle.NewMemoryDirectory(), accounts, h, logger)
	packSvc := pack.NewService(pack.NewGenerator(cat, rng, logger), accounts, logger)

	handler := httpapi.SetupRoutes(battleSvc, packSvc, accounts, h, logger)

	logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, handler); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
