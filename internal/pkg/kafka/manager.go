package kafka

import (
	"Agora/internal/api/config"
	"Agora/internal/repository"
	"Agora/internal/service"
	"context"
	log "log/slog"
	"sync"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

// ConsumerManager 管理所有 Kafka 消费者
type ConsumerManager struct {
	reactionsConsumer sarama.ConsumerGroup
	reactionsHandler  sarama.ConsumerGroupHandler

	commentsConsumer sarama.ConsumerGroup
	commentsHandler  sarama.ConsumerGroupHandler
}

// NewConsumerManager 构造函数
func NewConsumerManager(
	cfg *config.Config,
	cache service.CounterCache,
	postRepo repository.PostRepo,
	commentRepo repository.CommentRepo,
) (*ConsumerManager, error) {
	saramaCfg, err := newSaramaConfig(cfg.Kafka)
	if err != nil {
		return nil, err
	}
	marker := NewRedisDirtyMarker()

	reactionsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaReactionConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create reactions consumer group")
	}

	commentsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCommentConsumer.GroupID, saramaCfg)
	if err != nil {
		_ = reactionsConsumer.Close()
		return nil, errors.Wrap(err, "create comments consumer group")
	}

	return &ConsumerManager{
		reactionsConsumer: reactionsConsumer,
		reactionsHandler:  NewReactionsHandler(cache, marker, postRepo, commentRepo),
		commentsConsumer:  commentsConsumer,
		commentsHandler:   NewCommentsHandler(cache, marker),
	}, nil
}

// Start 启动所有消费者，阻塞到 ctx 结束
func (m *ConsumerManager) Start(ctx context.Context, cfg *config.Config) error {
	var wg sync.WaitGroup
	wg.Add(2)
	go m.consume(ctx, &wg, "reactions", cfg.KafkaReactionConsumer.Topic, m.reactionsConsumer, m.reactionsHandler)
	go m.consume(ctx, &wg, "comments", cfg.KafkaCommentConsumer.Topic, m.commentsConsumer, m.commentsHandler)

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.reactionsConsumer.Close(); err != nil {
		log.Error("Failed to close reactions consumer", "err", err)
	}
	if err := m.commentsConsumer.Close(); err != nil {
		log.Error("Failed to close comments consumer", "err", err)
	}
	wg.Wait()

	return nil
}

func (m *ConsumerManager) consume(ctx context.Context, wg *sync.WaitGroup, name, topic string, group sarama.ConsumerGroup, handler sarama.ConsumerGroupHandler) {
	defer wg.Done()
	log.Info("consumer started", "name", name, "topic", topic)
	for {
		if err := group.Consume(ctx, []string{topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			log.Error("Error from consumer", "name", name, "err", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}
