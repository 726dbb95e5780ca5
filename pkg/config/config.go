package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level service configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Log        LogConfig        `mapstructure:"log"`
	Minio      MinioConfig      `mapstructure:"minio"`
	Transcribe TranscribeConfig `mapstructure:"transcribe"`
	Splitter   SplitterConfig   `mapstructure:"splitter"`
	Planner    PlannerConfig    `mapstructure:"planner"`
	Worker     WorkerConfig     `mapstructure:"worker"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	Charset         string        `mapstructure:"charset"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	EnableTLS    bool          `mapstructure:"enable_tls"`
	LockTTL      time.Duration `mapstructure:"lock_ttl"`
}

type KafkaConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	BootstrapServers []string `mapstructure:"bootstrap_servers"`
	ClientID         string   `mapstructure:"client_id"`
	TranscriptTopic  string   `mapstructure:"transcript_topic"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// TranscribeConfig drives the speech-to-text client and its health gate.
type TranscribeConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"`
	RetryBaseDelay   time.Duration `mapstructure:"retry_base_delay"`
	FailureThreshold int           `mapstructure:"failure_threshold"`
	Cooldown         time.Duration `mapstructure:"cooldown"`
	MinTranscriptLen int           `mapstructure:"min_transcript_len"`
}

// SplitterConfig configures the ffmpeg/ffprobe toolkit.
type SplitterConfig struct {
	FFmpegPath  string        `mapstructure:"ffmpeg_path"`
	FFprobePath string        `mapstructure:"ffprobe_path"`
	TempDir     string        `mapstructure:"temp_dir"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// PlannerConfig bounds chunk planning and ranged downloads.
type PlannerConfig struct {
	SingleCallLimitBytes int64   `mapstructure:"single_call_limit_bytes"`
	TargetChunkBytes     int64   `mapstructure:"target_chunk_bytes"`
	MinChunkSeconds      float64 `mapstructure:"min_chunk_seconds"`
	HugeFileBytes        int64   `mapstructure:"huge_file_bytes"`
	RangeBytes           int64   `mapstructure:"range_bytes"`
}

type WorkerConfig struct {
	WorkerCount         int           `mapstructure:"worker_count"`
	QueueCapacity       int           `mapstructure:"queue_capacity"`
	PriorityQueue       bool          `mapstructure:"priority_queue"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

// Load reads the YAML config at path, applying TRANSCRIBE_* env overrides.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("kafka.client_id", "transcription-service")
	viper.SetDefault("kafka.transcript_topic", "transcripts.completed")
	viper.SetDefault("kafka.bootstrap_servers", []string{"localhost:9092"})

	viper.SetEnvPrefix("TRANSCRIBE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.normalize()

	return &config, nil
}

// normalize fills defaults for anything the file left unset.
func (c *Config) normalize() {
	if c.Server.Port == 0 {
		c.Server.Port = 8084
	}

	if c.Worker.WorkerCount <= 0 {
		c.Worker.WorkerCount = 2
	}
	if c.Worker.QueueCapacity <= 0 {
		c.Worker.QueueCapacity = c.Worker.WorkerCount * 10
	}
	if c.Worker.ShutdownGracePeriod == 0 {
		c.Worker.ShutdownGracePeriod = 10 * time.Second
	}

	if c.Splitter.FFmpegPath == "" {
		c.Splitter.FFmpegPath = "ffmpeg"
	}
	if c.Splitter.FFprobePath == "" {
		c.Splitter.FFprobePath = "ffprobe"
	}
	if c.Splitter.TempDir == "" {
		c.Splitter.TempDir = "/tmp/transcription"
	}
	if c.Splitter.Timeout == 0 {
		c.Splitter.Timeout = 15 * time.Minute
	}

	if c.Transcribe.Model == "" {
		c.Transcribe.Model = "whisper-1"
	}
	if c.Transcribe.RequestTimeout == 0 {
		c.Transcribe.RequestTimeout = 5 * time.Minute
	}
	if c.Transcribe.MaxRetries <= 0 {
		c.Transcribe.MaxRetries = 3
	}
	if c.Transcribe.RetryBaseDelay == 0 {
		c.Transcribe.RetryBaseDelay = 2 * time.Second
	}
	if c.Transcribe.FailureThreshold <= 0 {
		c.Transcribe.FailureThreshold = 5
	}
	if c.Transcribe.Cooldown == 0 {
		c.Transcribe.Cooldown = time.Minute
	}
	if c.Transcribe.MinTranscriptLen <= 0 {
		c.Transcribe.MinTranscriptLen = 20
	}

	// The speech service rejects uploads above 25MB; keep the single-call
	// cutoff and per-chunk target under that with headroom for container
	// overhead.
	if c.Planner.SingleCallLimitBytes <= 0 {
		c.Planner.SingleCallLimitBytes = 24 << 20
	}
	if c.Planner.TargetChunkBytes <= 0 {
		c.Planner.TargetChunkBytes = 20 << 20
	}
	if c.Planner.MinChunkSeconds <= 0 {
		c.Planner.MinChunkSeconds = 300
	}
	if c.Planner.HugeFileBytes <= 0 {
		c.Planner.HugeFileBytes = 512 << 20
	}
	if c.Planner.RangeBytes <= 0 {
		c.Planner.RangeBytes = 64 << 20
	}

	if c.Redis.LockTTL == 0 {
		c.Redis.LockTTL = 2 * time.Hour
	}

	if len(c.Kafka.BootstrapServers) == 0 {
		c.Kafka.BootstrapServers = []string{"localhost:9092"}
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "transcription-service"
	}
	if c.Kafka.TranscriptTopic == "" {
		c.Kafka.TranscriptTopic = "transcripts.completed"
	}
}

// GetDSN builds the MySQL connection string.
func (c *DatabaseConfig) GetDSN() string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.Database, charset)
}

// GetRedisAddr returns host:port for redis.
func (c *RedisConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
