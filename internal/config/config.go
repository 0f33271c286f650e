package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// GenerationConfig.Backend 支持的生成后端。
const (
	BackendOllama = "ollama"
	BackendArk    = "ark"
	BackendNone   = "none"
)

// StoreConfig.Driver 支持的存储驱动。
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	Generation GenerationConfig
	Lookup     LookupConfig
	Store      StoreConfig
	Corpus     CorpusConfig
	Log        LogConfig
	// TranscriptSize 限制进程内调试对话缓存的轮数。
	TranscriptSize int
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	generation, err := loadGenerationConfig()
	if err != nil {
		return nil, err
	}

	lookup, err := loadLookupConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	transcript := 5
	if override, err := parseOptionalIntEnv("TRANSCRIPT_CACHE_SIZE"); err != nil {
		return nil, err
	} else if override != nil && *override > 0 {
		transcript = *override
	}

	return &Config{
		Server:         server,
		Generation:     generation,
		Lookup:         lookup,
		Store:          store,
		Corpus:         CorpusConfig{Path: getEnvOrDefault("CORPUS_PATH", "data/documents.txt")},
		Log:            LogConfig{Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info"))},
		TranscriptSize: transcript,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":5000" 或 "127.0.0.1:5000"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// GenerationConfig 描述文本生成后端及其采样参数。
type GenerationConfig struct {
	Backend     string
	Timeout     time.Duration
	Temperature float64
	NumCtx      int
	MaxTokens   int

	OllamaURL   string
	OllamaModel string

	Ark ArkConfig
}

// ArkConfig 保存 ark 后端所需的火山方舟凭证。
type ArkConfig struct {
	APIKey    string
	AccessKey string
	SecretKey string
	Model     string
	BaseURL   string
	Region    string
}

// Enabled 表示是否提供了必需的密钥。
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c GenerationConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Ark.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	temperature := float32(c.Temperature)
	maxTokens := c.MaxTokens
	timeout := c.Timeout
	// 调用失败即视为本轮无法生成。
	retries := 0

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.Ark.BaseURL,
		Region:      c.Ark.Region,
		APIKey:      c.Ark.APIKey,
		AccessKey:   c.Ark.AccessKey,
		SecretKey:   c.Ark.SecretKey,
		Model:       c.Ark.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		Timeout:     &timeout,
		RetryTimes:  &retries,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadGenerationConfig() (GenerationConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("GENERATION_BACKEND", BackendOllama))
	switch backend {
	case BackendOllama, BackendArk, BackendNone:
	default:
		return GenerationConfig{}, fmt.Errorf("invalid GENERATION_BACKEND value %q", backend)
	}

	timeout, err := parseDurationEnv("GENERATION_TIMEOUT", 90*time.Second)
	if err != nil {
		return GenerationConfig{}, err
	}

	temperature := 0.45
	if v, err := parseOptionalFloatEnv("GENERATION_TEMPERATURE"); err != nil {
		return GenerationConfig{}, err
	} else if v != nil {
		temperature = *v
	}

	numCtx := 512
	if v, err := parseOptionalIntEnv("GENERATION_NUM_CTX"); err != nil {
		return GenerationConfig{}, err
	} else if v != nil && *v > 0 {
		numCtx = *v
	}

	maxTokens := 320
	if v, err := parseOptionalIntEnv("GENERATION_MAX_TOKENS"); err != nil {
		return GenerationConfig{}, err
	} else if v != nil && *v > 0 {
		maxTokens = *v
	}

	return GenerationConfig{
		Backend:     backend,
		Timeout:     timeout,
		Temperature: temperature,
		NumCtx:      numCtx,
		MaxTokens:   maxTokens,
		OllamaURL:   getEnvOrDefault("OLLAMA_URL", "http://127.0.0.1:11434"),
		OllamaModel: getEnvOrDefault("OLLAMA_MODEL", "phi"),
		Ark: ArkConfig{
			APIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:     strings.TrimSpace(os.Getenv("ARK_MODEL")),
			BaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
		},
	}, nil
}

// LookupConfig 描述时效性与医疗类问题使用的实时检索。
type LookupConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

func loadLookupConfig() (LookupConfig, error) {
	enabled, err := parseBoolEnv("LOOKUP_ENABLED", true)
	if err != nil {
		return LookupConfig{}, err
	}
	timeout, err := parseDurationEnv("LOOKUP_TIMEOUT", 10*time.Second)
	if err != nil {
		return LookupConfig{}, err
	}
	return LookupConfig{
		Enabled: enabled,
		URL:     getEnvOrDefault("LOOKUP_URL", "https://api.duckduckgo.com/"),
		Timeout: timeout,
	}, nil
}

// StoreConfig 选择会话存储。
type StoreConfig struct {
	Driver string
	DSN    string
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverMemory {
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value %q", driver)
	}
	return StoreConfig{
		Driver: driver,
		DSN:    getEnvOrDefault("DATABASE_URL", "file:bloomspace.db?_foreign_keys=on"),
	}, nil
}

// CorpusConfig 指向预先构建的文档文件。
type CorpusConfig struct {
	Path string
}

// LogConfig 控制 zap 日志。
type LogConfig struct {
	Level string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

// parseDurationEnv 接受 Go 时长（"30s"）或纯秒数。
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
