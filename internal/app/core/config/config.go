// Package config 載入 core 服務的 yaml 設定
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-mem-bank/pkg/logger"
)

// LedgerEngine 使用哪種帳本實作
type LedgerEngine string

const (
	LedgerEngineMutex LedgerEngine = "mutex"
	LedgerEngineLMAX  LedgerEngine = "lmax"
)

// log 輸出位置
const (
	LogOutputStdout = "stdout"
	LogOutputStderr = "stderr"
)

// JournalOutput journal 寫到哪裡
type JournalOutput string

const (
	JournalOutputNone   JournalOutput = "none"
	JournalOutputStdout JournalOutput = "stdout"
	JournalOutputStderr JournalOutput = "stderr"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RequestTimeout 每個 RPC 的逾時時間
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// ShutdownTimeout GracefulStop 的等待上限
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LedgerConfig struct {
	Engine        LedgerEngine `yaml:"engine"`
	MaxIDAttempts int          `yaml:"max_id_attempts"`
	// BufferSize 只有 lmax 使用
	BufferSize int `yaml:"buffer_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// Output stdout 或 stderr，不可與 journal.output 相同
	Output string `yaml:"output"`
}

type JournalConfig struct {
	Output JournalOutput `yaml:"output"`
	// RestoreFrom 啟動時重放的 journal 檔案，空字串代表從空帳本開始
	RestoreFrom string `yaml:"restore_from"`
}

// Load 讀取設定檔並補全預設值
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 yaml 並補全預設值
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// 補全預設配置 (如果 yaml 沒寫)
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":50051"
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 5 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Ledger.Engine == "" {
		c.Ledger.Engine = LedgerEngineMutex
	}
	if c.Ledger.MaxIDAttempts == 0 {
		c.Ledger.MaxIDAttempts = 1000
	}
	if c.Ledger.BufferSize == 0 {
		c.Ledger.BufferSize = 1000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = logger.FormatText
	}
	if c.Log.Output == "" {
		c.Log.Output = LogOutputStderr
	}
	if c.Journal.Output == "" {
		c.Journal.Output = JournalOutputNone
	}
}

// Validate 檢查列舉欄位與數值範圍
func (c *Config) Validate() error {
	switch c.Ledger.Engine {
	case LedgerEngineMutex, LedgerEngineLMAX:
	default:
		return fmt.Errorf("invalid ledger.engine %q", c.Ledger.Engine)
	}
	switch c.Journal.Output {
	case JournalOutputNone, JournalOutputStdout, JournalOutputStderr:
	default:
		return fmt.Errorf("invalid journal.output %q", c.Journal.Output)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if c.Log.Format != logger.FormatText && c.Log.Format != logger.FormatJSON {
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	if c.Log.Output != LogOutputStdout && c.Log.Output != LogOutputStderr {
		return fmt.Errorf("invalid log.output %q", c.Log.Output)
	}
	// 同一個 stream 混入 log 後 journal 就無法重放
	if c.Journal.Output != JournalOutputNone && string(c.Journal.Output) == c.Log.Output {
		return fmt.Errorf("journal.output and log.output must not share %s", c.Log.Output)
	}
	if c.Server.RequestTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must not be negative")
	}
	if c.Ledger.MaxIDAttempts < 0 || c.Ledger.BufferSize < 0 {
		return fmt.Errorf("ledger.max_id_attempts and ledger.buffer_size must not be negative")
	}
	return nil
}
