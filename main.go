package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gameforum/controller"
	"gameforum/dao/database"
	"gameforum/dao/es"
	"gameforum/dao/redis"
	"gameforum/dao/storage"
	"gameforum/logger"
	"gameforum/logic"
	"gameforum/pkg/assistant"
	"gameforum/pkg/cache"
	"gameforum/pkg/jwt"
	"gameforum/pkg/mq"
	"gameforum/pkg/snowflake"
	"gameforum/pkg/tracing"
	"gameforum/routers"
	"gameforum/settings"

	"go.uber.org/zap"
)

// @title gameforum API
// @version 1.0
// @description Gaming forum backend.
// @BasePath /api/v1
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
func main() {
	var confFile string
	flag.StringVar(&confFile, "conf", "./config.yaml", "path to the config file")
	flag.Parse()

	if err := settings.Init(confFile); err != nil {
		fmt.Printf("init settings failed, err:%v\n", err)
		return
	}
	cfg := settings.Conf
	if err := snowflake.Init(cfg.Snowflake.StartTime, cfg.Snowflake.MachineID); err != nil {
		fmt.Printf("init snowflake failed, err:%v\n", err)
		return
	}
	if err := logger.Init(cfg.Log, cfg.App.Mode); err != nil {
		fmt.Printf("init logger failed, err:%v\n", err)
		return
	}
	defer zap.L().Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := tracing.Init(rootCtx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		zap.L().Fatal("init tracing failed", zap.Error(err))
	}

	// Core dependencies must come up; everything below them degrades.
	gdb, err := database.Open(cfg.Database)
	if err != nil {
		zap.L().Fatal("init database failed", zap.Error(err))
	}
	defer database.Close(gdb)

	stats, err := database.NewStatsRepository(gdb, cfg.Database.Driver)
	if err != nil {
		zap.L().Fatal("init stats repository failed", zap.Error(err))
	}

	rdb, err := redis.Dial(cfg.Redis)
	if err != nil {
		zap.L().Fatal("init redis failed", zap.Error(err))
	}
	defer rdb.Close()

	blobs, err := storage.New(cfg.Storage)
	if err != nil {
		zap.L().Fatal("init storage failed", zap.Error(err))
	}

	if err = controller.InitTrans(cfg.App.Locale); err != nil {
		zap.L().Fatal("init validator trans failed", zap.Error(err))
	}

	db := database.NewClient(gdb)
	deps := logic.Deps{
		DB:      db,
		Stats:   stats,
		Redis:   rdb,
		Codec:   jwt.NewCodec(cfg.JWT.Secret, cfg.JWT.Issuer),
		Blobs:   blobs,
		Events:  mq.Nop{},
		JWT:     cfg.JWT,
		Forum:   cfg.Forum,
		Storage: cfg.Storage,
		Cache:   cfg.Cache,
	}

	if cfg.Cache != nil && cfg.Cache.CapacityMB > 0 {
		l1, err := cache.NewBigCache(cfg.Cache.CapacityMB, cfg.Cache.L1TTL)
		if err != nil {
			zap.L().Fatal("init bigcache failed", zap.Error(err))
		}
		defer l1.Close()
		deps.L1 = l1
	}

	var index *es.ThreadIndex
	if cfg.Elasticsearch != nil && cfg.Elasticsearch.Enabled {
		index, err = es.New(cfg.Elasticsearch)
		if err == nil {
			err = index.EnsureIndex(rootCtx)
		}
		if err != nil {
			zap.L().Warn("elasticsearch unavailable, search falls back to SQL", zap.Error(err))
			index = nil
		} else {
			deps.Search = index
		}
	}

	// Thread events feed the search index: through RabbitMQ when it is
	// configured, in process otherwise.
	if index != nil {
		indexer := logic.NewIndexer(db, index)
		deps.Events = mq.Direct{Handler: indexer.Handle}
		if cfg.RabbitMQ != nil && cfg.RabbitMQ.Enabled {
			broker, err := mq.Dial(cfg.RabbitMQ)
			if err != nil {
				zap.L().Warn("rabbitmq unavailable, indexing in process", zap.Error(err))
			} else {
				defer broker.Close()
				deps.Events = broker
				go func() {
					if err := broker.Consume(rootCtx, indexer.Handle); err != nil {
						zap.L().Error("search indexer stopped", zap.Error(err))
					}
				}()
			}
		}
	}

	if cfg.Assistant != nil && cfg.Assistant.Enabled {
		adv, err := assistant.NewOpenAI(rootCtx, cfg.Assistant)
		if err != nil {
			zap.L().Warn("moderation assistant disabled", zap.Error(err))
		} else {
			deps.Advice = adv
		}
	}

	svc := logic.New(deps)
	r := routers.SetupRouter(cfg, svc, blobs.FileSystem())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: r,
	}
	go func() {
		zap.L().Info("server is running", zap.Int("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutdown server ...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		zap.L().Warn("flush traces failed", zap.Error(err))
	}
	zap.L().Info("server exiting")
}
