package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Postgres  DBConfig
	Redis     RedisConfig
	S3        S3Config
	Publish   PublishConfig
	Kafka     KafkaConfig
	Logger    Logger
	Worker    WorkerConfig
	Tasks     TasksConfig
	Container ContainerConfig
	Upload    UploadConfig
	Formatter FormatterConfig
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type WorkerConfig struct {
	WorkerCount     int
	MaxCPUUsage     float64
	PollInterval    time.Duration
	BatchSize       int
	StuckTaskAge    time.Duration
	MonitorSchedule string
}

type TasksConfig struct {
	RetryBackoff time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	UseTLS        bool
	WakeupChannel string
}

// S3Config addresses the primary store: raw uploads and intermediate media.
type S3Config struct {
	Endpoint          string
	Region            string
	AccessKey         string
	SecretKey         string
	UploadBucket      string
	ResumableEndpoint string
	ResumableToken    string
}

// PublishConfig addresses the store holding track directories and playlist files.
type PublishConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type KafkaConfig struct {
	Brokers    []string
	UsageTopic string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

type ContainerConfig struct {
	MaxAudioTracks         int
	MaxSubtitleTracks      int
	RequireDefaultSubtitle bool
}

type UploadConfig struct {
	MaxMediaSize         int64
	MaxSubtitleSize      int64
	MediaContentTypes    []string
	SubtitleContentTypes []string
}

type FormatterConfig struct {
	Executable string
	Args       []string
	Timeout    time.Duration
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":5000")
	v.SetDefault("server.readTimeout", 10*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("postgres.pgDriver", "pgx")
	v.SetDefault("postgres.sslMode", "require")
	v.SetDefault("redis.wakeupChannel", "video_container_tasks")
	v.SetDefault("kafka.usageTopic", "storage_usage")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "json")
	v.SetDefault("worker.workerCount", 4)
	v.SetDefault("worker.maxCPUUsage", 80.0)
	v.SetDefault("worker.pollInterval", 30*time.Second)
	v.SetDefault("worker.batchSize", 50)
	v.SetDefault("worker.stuckTaskAge", 24*time.Hour)
	v.SetDefault("worker.monitorSchedule", "@every 10m")
	v.SetDefault("tasks.retryBackoff", 5*time.Minute)
	v.SetDefault("container.maxAudioTracks", 10)
	v.SetDefault("container.maxSubtitleTracks", 10)
	v.SetDefault("container.requireDefaultSubtitle", true)
	v.SetDefault("upload.maxMediaSize", int64(20)<<30)
	v.SetDefault("upload.maxSubtitleSize", int64(10)<<20)
	v.SetDefault("upload.mediaContentTypes", []string{"video/mp4", "video/quicktime", "video/x-matroska", "video/webm"})
	v.SetDefault("upload.subtitleContentTypes", []string{"text/vtt", "application/x-subrip"})
	v.SetDefault("formatter.timeout", 2*time.Hour)
}
