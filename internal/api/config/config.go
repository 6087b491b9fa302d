package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg，环境变量 AGORA_* 可覆盖文件中的值
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	viper.SetEnvPrefix("agora")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.max_idle", 10)
	viper.SetDefault("database.max_open", 50)
	viper.SetDefault("database.max_lifetime", 30)
	viper.SetDefault("redis.pool_size", 20)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("jwt.issuer", "Agora")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("cache.enable", true)
	viper.SetDefault("cache.ttl", 300)
	viper.SetDefault("cache.evict_delay", 500)
	viper.SetDefault("cron.rating_audit", "0 */10 * * * *")
}
