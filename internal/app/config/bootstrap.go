package config

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Bootstrap struct {
	Router         *chi.Mux
	MongoDB        *mongo.Database
	Redis          *redis.Client
	Logger         *zap.Logger
	RabbitMQ       *amqp091.Connection
	Minio          *minio.Client
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
	// WorkerStop if set will be called during Shutdown to stop the maintenance scheduler
	WorkerStop func()
	// DispatcherStop drains pending notifications
	DispatcherStop func()
}

// Shutdown stops background work first, then releases connections.
func (b *Bootstrap) Shutdown(ctx context.Context, server *http.Server) error {
	if server != nil {
		if err := server.Shutdown(ctx); err != nil {
			b.Logger.Error("Bootstrap.Shutdown error shutting down HTTP server", zap.Error(err))
		}
		b.Logger.Info("Successfully stopped HTTP server")
	}

	if b.WorkerStop != nil {
		b.WorkerStop()
		b.Logger.Info("Successfully stopped maintenance worker")
	}

	if b.DispatcherStop != nil {
		b.DispatcherStop()
		b.Logger.Info("Successfully drained notification dispatcher")
	}

	if b.Redis != nil {
		if err := b.Redis.Close(); err != nil {
			return err
		}
		b.Logger.Info("Successfully closing Redis")
	}

	if b.RabbitMQ != nil {
		if err := b.RabbitMQ.Close(); err != nil {
			return err
		}
		b.Logger.Info("Successfully closing RabbitMQ")
	}

	if b.MongoDB != nil {
		if err := b.MongoDB.Client().Disconnect(ctx); err != nil {
			return err
		}
		b.Logger.Info("Successfully closing MongoDB")
	}

	b.Logger.Sync()
	return nil
}
