package config

// Config 配置主体
type Config struct {
	Server                ServerConfig          `mapstructure:"server"`
	DB                    DBConfig              `mapstructure:"database"`
	Redis                 RedisConfig           `mapstructure:"redis"`
	Logger                LoggerConfig          `mapstructure:"logger"`
	JWT                   JWTConfig             `mapstructure:"jwt"`
	Cache                 CacheConfig           `mapstructure:"cache"`
	Cron                  CronConfig            `mapstructure:"cron"`
	Kafka                 KafkaConfig           `mapstructure:"kafka"`
	KafkaReactionConsumer KafkaReactionConsumer `mapstructure:"kafka_reaction_consumer"`
	KafkaCommentConsumer  KafkaCommentConsumer  `mapstructure:"kafka_comment_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"` // 为空时允许任意来源
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LoggerConfig 日志配置，Logstash 地址为空时只输出到 stdout
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Logstash string `mapstructure:"logstash"`
	Index    string `mapstructure:"index"`
	Token    string `mapstructure:"token"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	Expiration int    `mapstructure:"expiration"` // 小时
}

// CacheConfig 计数缓存
type CacheConfig struct {
	Enable     bool `mapstructure:"enable"`
	TTL        int  `mapstructure:"ttl"`         // 秒
	EvictDelay int  `mapstructure:"evict_delay"` // 毫秒，0 表示不做二次删除
}

type CronConfig struct {
	RatingAudit string `mapstructure:"rating_audit"`
}

type KafkaConfig struct {
	Enable   bool           `mapstructure:"enable"`
	Brokers  []string       `mapstructure:"brokers"`
	ClientID string         `mapstructure:"client_id"`
	Version  string         `mapstructure:"version"` // 如 "2.8.0"，为空使用 sarama 默认
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int    `mapstructure:"session_timeout"`
	HeartbeatInterval int    `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int    `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int    `mapstructure:"max_processing_time"`
	InitialOffset     string `mapstructure:"initial_offset"` // newest / oldest
}

type KafkaReactionConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaCommentConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
