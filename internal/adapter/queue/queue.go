package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/sigec-reports/pkg/config"
)

// MessageQueue defines the interface for a message queue adapter
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// NewFromConfig connects the configured provider. It returns nil for "none".
func NewFromConfig(cfg *config.Config, log *zap.Logger) (MessageQueue, error) {
	switch cfg.Queue.Provider {
	case "", "none":
		return nil, nil
	case "nats":
		return NewNATSQueue(cfg.NATS.URL, NATSOptions{
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait,
			Timeout:       cfg.NATS.Timeout,
		}, log)
	case "rabbitmq":
		return NewRabbitMQQueue(cfg.RabbitMQ.URL, log)
	default:
		return nil, fmt.Errorf("unknown queue provider %q", cfg.Queue.Provider)
	}
}
