package main

import (
	"context"
	"fmt"

	"github.com/kalagasite/internal/config"
	"github.com/kalagasite/internal/db"
	"github.com/kalagasite/internal/logging"
	"github.com/kalagasite/internal/media"
	"github.com/kalagasite/internal/store"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app 持有各子命令共享的运行时资源
type app struct {
	cfg     config.AppConfig
	log     *zap.Logger
	users   *gorm.DB
	store   store.Store
	closers []func(context.Context) error
}

func newApp(ctx context.Context, cfg config.AppConfig) (*app, error) {
	log, err := logging.New(cfg.LogLevel, cfg.GinMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &app{cfg: cfg, log: log}

	// 管理员账号始终保存在 sqlite 中
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	a.users = gdb
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, func(context.Context) error { return sqlDB.Close() })
	}

	st, err := a.openStore(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	a.store = st
	return a, nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch a.cfg.StoreDriver {
	case config.StoreMongo:
		if a.cfg.Mongo.URI == "" {
			return nil, fmt.Errorf("STORE_DRIVER=mongo requires MONGODB_URI")
		}
		client, err := store.ConnectMongo(ctx, a.cfg.Mongo.URI, a.cfg.Mongo.Timeout)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		st = store.NewMongoStore(client.Database(a.cfg.Mongo.Database))
	case config.StoreMemory:
		a.log.Warn("using in-memory content store; edits are lost on restart")
		st = store.NewMemoryStore()
	default:
		st = store.NewGormStore(a.users)
	}
	a.log.Info("content store ready", zap.String("driver", a.cfg.StoreDriver))

	if a.cfg.Redis.Addr == "" {
		return st, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	if err := client.Ping(ctx).Err(); err != nil {
		// 缓存不可用时仍可读写，CachedStore 会直接穿透到底层存储
		a.log.Warn("redis unreachable at startup", zap.String("addr", a.cfg.Redis.Addr), zap.Error(err))
	}
	return store.NewCachedStore(st, client, a.cfg.Redis.TTL, a.log), nil
}

func (a *app) uploader(ctx context.Context) (media.Uploader, error) {
	if a.cfg.Minio.Endpoint == "" {
		return media.NewLocalUploader(a.cfg.UploadDir, a.cfg.UploadURLPath), nil
	}
	return media.NewMinioUploader(ctx, media.MinioConfig{
		Endpoint:  a.cfg.Minio.Endpoint,
		AccessKey: a.cfg.Minio.AccessKey,
		SecretKey: a.cfg.Minio.SecretKey,
		Bucket:    a.cfg.Minio.Bucket,
		UseSSL:    a.cfg.Minio.UseSSL,
		PublicURL: a.cfg.Minio.PublicURL,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("close resource", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.log.Sync()
}
