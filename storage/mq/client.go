package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"PartnerGo/config"
	"PartnerGo/pkg/logger"
	mqotel "PartnerGo/pkg/mq"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		// 发布/消费的追踪包装依赖指标已初始化
		if err := mqotel.InitMQMetrics(otel.Meter("partnergo-mq")); err != nil {
			logger.Logger.Warn("Failed to initialize MQ metrics", zap.Error(err))
		}

		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			return
		}

		ch, err := conn.Channel()
		if err != nil {
			connErr = err
			return
		}
		defer ch.Close()

		connErr = declareTopology(ch)
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
