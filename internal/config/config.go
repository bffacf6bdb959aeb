package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel       string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort       string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort     string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	DictionaryPath string `yaml:"dictionary-path" env:"DICTIONARY_PATH" env-default:"words.txt"`
	Redis          Redis  `yaml:"redis"`
	Game           Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	GraceSeconds     int `yaml:"grace-seconds" env-default:"30"`
	CountdownSeconds int `yaml:"countdown-seconds" env-default:"30"`
	SessionTTLHours  int `yaml:"session-ttl-hours" env-default:"24"`
	DictLookupMillis int `yaml:"dict-lookup-millis" env-default:"500"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

func (that *Game) SessionTTL() time.Duration {
	return time.Duration(that.SessionTTLHours) * time.Hour
}

func (that *Game) DictLookupTimeout() time.Duration {
	return time.Duration(that.DictLookupMillis) * time.Millisecond
}
