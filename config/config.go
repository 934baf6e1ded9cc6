package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string `mapstructure:"log_level"`
	}
	Database struct {
		// Driver is postgres, sqlite or empty to disable result archiving.
		Driver string
		DSN    string
	}
	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
	}
	JWT struct {
		Secret   string
		TTL      time.Duration
		NonceTTL time.Duration `mapstructure:"nonce_ttl"`
	}
	Match struct {
		PlayerTTL int `mapstructure:"player_ttl"` // seconds
	}
	Content struct {
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
		Timeout  time.Duration
	}
	Table struct {
		Capacity    int
		TurnTimeout time.Duration `mapstructure:"turn_timeout"`
		GracePeriod time.Duration `mapstructure:"grace_period"`
	}
	Exchange struct {
		HandSize     int `mapstructure:"hand_size"`
		MaxRounds    int `mapstructure:"max_rounds"`
		ContentCount int `mapstructure:"content_count"`
		MinQuestions int `mapstructure:"min_questions"`
		MinAnswers   int `mapstructure:"min_answers"`
	}
	Confession struct {
		Rounds       int
		CorrectBonus int `mapstructure:"correct_bonus"`
		FooledBonus  int `mapstructure:"fooled_bonus"`
	}
	Stud struct {
		SmallBlind    int `mapstructure:"small_blind"`
		BigBlind      int `mapstructure:"big_blind"`
		BettingRounds int `mapstructure:"betting_rounds"`
		HoleCards     int `mapstructure:"hole_cards"`
		Hands         int
	}
}

var C Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "")
	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", 24*time.Hour)
	v.SetDefault("jwt.nonce_ttl", 5*time.Minute)

	v.SetDefault("match.player_ttl", 300)

	v.SetDefault("content.cache_ttl", time.Hour)
	v.SetDefault("content.timeout", 5*time.Second)

	v.SetDefault("table.capacity", 8)
	v.SetDefault("table.turn_timeout", 90*time.Second)
	v.SetDefault("table.grace_period", 2*time.Minute)

	v.SetDefault("exchange.hand_size", 7)
	v.SetDefault("exchange.max_rounds", 10)
	v.SetDefault("exchange.content_count", 50)
	v.SetDefault("exchange.min_questions", 10)
	v.SetDefault("exchange.min_answers", 30)

	v.SetDefault("confession.rounds", 5)
	v.SetDefault("confession.correct_bonus", 10)
	v.SetDefault("confession.fooled_bonus", 5)

	v.SetDefault("stud.small_blind", 10)
	v.SetDefault("stud.big_blind", 20)
	v.SetDefault("stud.betting_rounds", 4)
	v.SetDefault("stud.hole_cards", 2)
	v.SetDefault("stud.hands", 1)
}

// LoadFrom reads path (if non-empty) over the defaults. Environment
// variables such as DAD_REDIS_ADDR override both.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func Load() {
	// .env 可选
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	c, err := LoadFrom("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}
	if c.JWT.Secret == "" {
		log.Fatalf("jwt.secret is empty, set it in config.yaml or DAD_JWT_SECRET")
	}
	C = c
}
