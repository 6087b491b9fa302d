package kafka

import (
	"Agora/internal/api/config"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"
)

const defaultClientID = "agora"

// newSaramaConfig 由配置构造消费者组使用的 sarama.Config。
// 自动提交关闭，offset 在一批 binlog 处理完成后手动提交。
func newSaramaConfig(kafkaCfg config.KafkaConfig) (*sarama.Config, error) {
	c := sarama.NewConfig()

	c.ClientID = defaultClientID
	if kafkaCfg.ClientID != "" {
		c.ClientID = kafkaCfg.ClientID
	}
	if kafkaCfg.Version != "" {
		version, err := sarama.ParseKafkaVersion(kafkaCfg.Version)
		if err != nil {
			return nil, errors.Wrapf(err, "parse kafka version %q", kafkaCfg.Version)
		}
		c.Version = version
	}

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	consumer := kafkaCfg.Consumer
	c.Consumer.Return.Errors = true
	switch strings.ToLower(consumer.InitialOffset) {
	case "", "newest":
		c.Consumer.Offsets.Initial = sarama.OffsetNewest
	case "oldest":
		c.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		return nil, errors.Errorf("unknown initial offset %q, want newest or oldest", consumer.InitialOffset)
	}
	c.Consumer.Offsets.AutoCommit.Enable = false

	setSeconds(&c.Consumer.Group.Session.Timeout, consumer.SessionTimeout)
	setSeconds(&c.Consumer.Group.Heartbeat.Interval, consumer.HeartbeatInterval)
	setSeconds(&c.Consumer.Group.Rebalance.Timeout, consumer.RebalanceTimeout)
	setSeconds(&c.Consumer.MaxProcessingTime, consumer.MaxProcessingTime)

	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid sarama config")
	}
	return c, nil
}

// setSeconds 未配置（<= 0）时保留 sarama 默认值
func setSeconds(dst *time.Duration, seconds int) {
	if seconds > 0 {
		*dst = time.Duration(seconds) * time.Second
	}
}
