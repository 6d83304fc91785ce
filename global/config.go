package global

import (
	"os"
	"strconv"
	"time"
)

// Bus backend selection.
const (
	BusRedis = "redis"
	BusNats  = "nats"
)

type MongoConfig struct {
	Uri         string
	Database    string
	Username    string
	Password    string
	MaxPoolSize int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type NatsConfig struct {
	Url string
}

type TranslateConfig struct {
	Endpoint string
	Timeout  time.Duration
}

type AppConfig struct {
	NodeId    int64  // snowflake node, also identifies this gateway
	HTTPAddr  string
	Bus       string // redis | nats
	JWTSecret string

	PresenceTTL time.Duration

	Mongo     MongoConfig
	Redis     RedisConfig
	Nats      NatsConfig
	Translate TranslateConfig
}

var Config = AppConfig{
	NodeId:      1,
	HTTPAddr:    ":8080",
	Bus:         BusRedis,
	JWTSecret:   "dev-secret-change-me",
	PresenceTTL: 90 * time.Second,
	Mongo: MongoConfig{
		Uri:         "mongodb://localhost:27017",
		Database:    "linguachat",
		MaxPoolSize: 20,
	},
	Redis: RedisConfig{
		Addr: "127.0.0.1:6379",
	},
	Nats: NatsConfig{
		Url: "nats://127.0.0.1:4222",
	},
	Translate: TranslateConfig{
		Endpoint: "http://127.0.0.1:9000/translate",
		Timeout:  5 * time.Second,
	},
}

// Load applies environment overrides onto the defaults above.
func Load() {
	setStr(&Config.HTTPAddr, "HTTP_ADDR")
	setStr(&Config.Bus, "BUS_BACKEND")
	setStr(&Config.JWTSecret, "JWT_SECRET")
	setInt64(&Config.NodeId, "NODE_ID")

	setStr(&Config.Mongo.Uri, "MONGO_URI")
	setStr(&Config.Mongo.Database, "MONGO_DB")
	setStr(&Config.Mongo.Username, "MONGO_USER")
	setStr(&Config.Mongo.Password, "MONGO_PASSWORD")

	setStr(&Config.Redis.Addr, "REDIS_ADDR")
	setStr(&Config.Redis.Password, "REDIS_PASSWORD")

	setStr(&Config.Nats.Url, "NATS_URL")

	setStr(&Config.Translate.Endpoint, "TRANSLATE_ENDPOINT")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

// GatewayId names this node on presence keys and bus diagnostics.
func GatewayId() string {
	return "gateway_" + strconv.FormatInt(Config.NodeId, 10)
}
