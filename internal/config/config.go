package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config アプリケーション全体の設定
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Supabase  SupabaseConfig  `yaml:"supabase"`
	Firestore FirestoreConfig `yaml:"firestore"`
	Kakao     KakaoConfig     `yaml:"kakao"`
	Search    SearchConfig    `yaml:"search"`
	Collect   CollectConfig   `yaml:"collect"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig 台帳キャッシュ。Addressが空ならキャッシュなし
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type SupabaseConfig struct {
	URL     string `yaml:"url"`
	AnonKey string `yaml:"anon_key"`
}

// FirestoreConfig 収集実行の保存先。ProjectIDが空ならメモリに保存する
type FirestoreConfig struct {
	ProjectID string `yaml:"project_id"`
}

type KakaoConfig struct {
	RESTAPIKey string `yaml:"rest_api_key"`
	BaseURL    string `yaml:"base_url"`
}

// SearchConfig 検索APIのスロットリングとリトライ
type SearchConfig struct {
	Throttle       time.Duration `yaml:"throttle"`
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	QPS            float64       `yaml:"qps"`
}

// CollectConfig 再帰スキャンのパラメータ
type CollectConfig struct {
	InitialRadius    int `yaml:"initial_radius"`
	MaxDepth         int `yaml:"max_depth"`
	DensityThreshold int `yaml:"density_threshold"`
	MaxPages         int `yaml:"max_pages"`
	Workers          int `yaml:"workers"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default 既定値の設定
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: "8080"},
		Redis:  RedisConfig{TTL: 24 * time.Hour},
		Kakao:  KakaoConfig{BaseURL: "https://dapi.kakao.com"},
		Search: SearchConfig{
			Throttle:       30 * time.Millisecond,
			MaxAttempts:    5,
			InitialBackoff: time.Second,
			MaxBackoff:     60 * time.Second,
		},
		Collect: CollectConfig{
			InitialRadius:    512,
			MaxDepth:         7,
			DensityThreshold: 45,
			MaxPages:         45,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load .env・設定ファイル(CONFIG_PATH)・環境変数の順に読み込んで検証する
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗 (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルの解析に失敗 (%s): %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%sが整数ではありません: %q", key, v))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%sが数値ではありません: %q", key, v))
				return
			}
			*dst = f
		}
	}
	duration := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%sが期間ではありません: %q", key, v))
				return
			}
			*dst = d
		}
	}

	str("SERVER_PORT", &c.Server.Port)
	str("DATABASE_URL", &c.Database.URL)
	str("REDIS_ADDRESS", &c.Redis.Address)
	str("REDIS_PASSWORD", &c.Redis.Password)
	integer("REDIS_DB", &c.Redis.DB)
	duration("LEDGER_CACHE_TTL", &c.Redis.TTL)
	str("SUPABASE_URL", &c.Supabase.URL)
	str("SUPABASE_ANON_KEY", &c.Supabase.AnonKey)
	str("FIRESTORE_PROJECT_ID", &c.Firestore.ProjectID)
	str("KAKAO_REST_API_KEY", &c.Kakao.RESTAPIKey)
	str("KAKAO_BASE_URL", &c.Kakao.BaseURL)
	duration("SEARCH_THROTTLE", &c.Search.Throttle)
	integer("SEARCH_MAX_ATTEMPTS", &c.Search.MaxAttempts)
	duration("SEARCH_INITIAL_BACKOFF", &c.Search.InitialBackoff)
	duration("SEARCH_MAX_BACKOFF", &c.Search.MaxBackoff)
	float("SEARCH_QPS", &c.Search.QPS)
	integer("COLLECT_INITIAL_RADIUS", &c.Collect.InitialRadius)
	integer("COLLECT_MAX_DEPTH", &c.Collect.MaxDepth)
	integer("COLLECT_DENSITY_THRESHOLD", &c.Collect.DensityThreshold)
	integer("COLLECT_MAX_PAGES", &c.Collect.MaxPages)
	integer("COLLECT_WORKERS", &c.Collect.Workers)
	str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(errs...)
}

// Validate 必須項目と範囲のチェック
func (c *Config) Validate() error {
	var errs []error
	if c.Kakao.RESTAPIKey == "" {
		errs = append(errs, errors.New("KAKAO_REST_API_KEY環境変数が設定されていません"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL環境変数が設定されていません"))
	}
	if c.Supabase.URL == "" || c.Supabase.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_URLまたはSUPABASE_ANON_KEY環境変数が設定されていません"))
	}
	if c.Search.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("SEARCH_MAX_ATTEMPTSは1以上: %d", c.Search.MaxAttempts))
	}
	if c.Search.Throttle < 0 || c.Search.InitialBackoff < 0 || c.Search.MaxBackoff < 0 {
		errs = append(errs, errors.New("検索の待機時間に負の値は指定できません"))
	}
	if c.Collect.InitialRadius < 1 {
		errs = append(errs, fmt.Errorf("COLLECT_INITIAL_RADIUSは1以上: %d", c.Collect.InitialRadius))
	}
	if c.Collect.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("COLLECT_MAX_DEPTHは1以上: %d", c.Collect.MaxDepth))
	}
	if c.Collect.DensityThreshold < 1 {
		errs = append(errs, fmt.Errorf("COLLECT_DENSITY_THRESHOLDは1以上: %d", c.Collect.DensityThreshold))
	}
	if c.Collect.MaxPages < 1 {
		errs = append(errs, fmt.Errorf("COLLECT_MAX_PAGESは1以上: %d", c.Collect.MaxPages))
	}
	if c.Collect.Workers < 0 {
		errs = append(errs, fmt.Errorf("COLLECT_WORKERSに負の値は指定できません: %d", c.Collect.Workers))
	}
	return errors.Join(errs...)
}
