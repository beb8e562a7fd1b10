package rabbitmq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/jdrojasm/citas-scheduler-bot/internal/config"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/in"
	"github.com/jdrojasm/citas-scheduler-bot/internal/core/ports/out"
)

// InboundMessage - входящее сообщение пользователя из шлюза мессенджера
type InboundMessage struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

// OutboundReplies - ответы бота, уходят обратно в шлюз
type OutboundReplies struct {
	UserID  string   `json:"userId"`
	Replies []string `json:"replies"`
}

// MessageListener читает входящие сообщения из очереди и публикует
// ответы в exchange ответов. Порядок сообщений одного пользователя
// обеспечивается одной очередью с одним консьюмером
type MessageListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.ConversationUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewMessageListener(useCase in.ConversationUseCase, cfg *config.Config, logger out.LoggerPort) (*MessageListener, error) {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMQ.URL,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &MessageListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger.WithModule("MessageListener"),
	}, nil
}

func (l *MessageListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	l.logger.Info("rabbitmq.queue.started", out.LogFields{
		"queue": queue.Name,
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, open := <-msgs:
				if !open {
					return
				}
				if err := l.processMessage(ctx, msg); err != nil {
					l.logger.Error("rabbitmq.message.process.failed", out.LogFields{
						"error": err.Error(),
					})
					msg.Nack(false, true) // requeue message
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	return nil
}

func (l *MessageListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	var inbound InboundMessage
	if err := json.Unmarshal(msg.Body, &inbound); err != nil {
		return err
	}

	l.logger.Debug("rabbitmq.message.received", out.LogFields{
		"userId": inbound.UserID,
	})

	replies := l.useCase.HandleMessage(ctx, inbound.UserID, inbound.Text)

	return l.publishReplies(ctx, OutboundReplies{
		UserID:  inbound.UserID,
		Replies: replies,
	})
}

func (l *MessageListener) publishReplies(ctx context.Context, outbound OutboundReplies) error {
	body, err := json.Marshal(outbound)
	if err != nil {
		return err
	}

	return l.channel.PublishWithContext(ctx,
		l.cfg.RabbitMQ.RepliesExchange,
		l.cfg.RabbitMQ.RepliesRoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (l *MessageListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}
