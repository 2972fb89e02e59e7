package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"rifa/config"
	"rifa/gateway"
	"rifa/pkg/log"
	"rifa/service"
	"rifa/tracing"
)

func main() {
	log.Init(logrus.InfoLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("failed to load config: %w", err))
	}

	tp := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown trace provider")
		}
	}()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	supabase := gateway.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)

	err = service.New(
		cfg.HTTPAddr,
		redisClient,
		gateway.NewTablesClient(supabase),
		gateway.NewStorageClient(supabase),
		gateway.NewAuthClient(supabase),
		cfg.SupabaseJWTSecret,
		cfg.AssetsBucket,
		cfg.ArtifactBucket,
	).Run(ctx)
	if err != nil {
		panic(err)
	}
}
