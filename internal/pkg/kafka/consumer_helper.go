package kafka

import (
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	batchSize    = 32
	batchTimeout = 1 * time.Second

	maxRetryInterval = 5 * time.Second
)

// ErrSkipMessage 无法处理且重试也无意义的消息，直接跳过
var ErrSkipMessage = errors.New("skip message")

type LogicFunc func(ctx context.Context, msg *sarama.ConsumerMessage) error

// pullMessageBatch 拉取一批消息并执行业务逻辑
func pullMessageBatch(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim, logic LogicFunc) error {
	batch := make([]*sarama.ConsumerMessage, 0, batchSize)
	ticker := time.NewTicker(batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				if len(batch) > 0 {
					processBatch(session, batch, logic)
				}
				return nil
			}
			batch = append(batch, msg)
			if len(batch) >= batchSize {
				processBatch(session, batch, logic)
				// 清空缓冲区 & 重置定时器
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
				ticker.Reset(batchTimeout)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				processBatch(session, batch, logic)
				batch = make([]*sarama.ConsumerMessage, 0, batchSize)
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// processBatch 并发处理一批消息，全部成功后提交最后一条的 offset
func processBatch(session sarama.ConsumerGroupSession, messages []*sarama.ConsumerMessage, logic LogicFunc) {
	var wg sync.WaitGroup

	for _, msg := range messages {
		wg.Add(1)

		go func(m *sarama.ConsumerMessage) {
			defer wg.Done()
			retryInterval := 100 * time.Millisecond

			for {
				err := logic(session.Context(), m)
				if err == nil {
					return
				}
				if errors.Is(err, ErrSkipMessage) {
					log.Warn("skip message", "topic", m.Topic, "offset", m.Offset, "err", err)
					return
				}
				select {
				case <-session.Context().Done():
					return
				default:
				}

				log.Error("process message error", "topic", m.Topic, "offset", m.Offset, "err", err)
				time.Sleep(retryInterval)

				retryInterval *= 2
				if retryInterval > maxRetryInterval {
					retryInterval = maxRetryInterval
				}
			}
		}(msg)
	}

	wg.Wait()

	if len(messages) > 0 && session.Context().Err() == nil {
		lastMsg := messages[len(messages)-1]
		session.MarkMessage(lastMsg, "")
		session.Commit()
	}
}

// ToCanalMessage 将kafka消息转换为canal消息结构体
func ToCanalMessage(msg *sarama.ConsumerMessage, tableName string) (*CanalMessage, error) {
	var canalMsg CanalMessage
	if err := json.Unmarshal(msg.Value, &canalMsg); err != nil {
		return nil, errors.Wrapf(ErrSkipMessage, "unmarshal canal message: %v", err)
	}

	if canalMsg.Table != tableName || canalMsg.IsDDL {
		return nil, errors.Wrapf(ErrSkipMessage, "table %s not match %s", canalMsg.Table, tableName)
	}

	if len(canalMsg.Data) == 0 {
		return nil, errors.Wrap(ErrSkipMessage, "data is empty")
	}

	return &canalMsg, nil
}
