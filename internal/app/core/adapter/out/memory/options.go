package memory

import (
	"log/slog"
	"math/rand/v2"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/journal"
)

const (
	// DefaultMaxIDAttempts 產生帳號時的預設重試上限
	DefaultMaxIDAttempts = 1000
	// DefaultBufferSize LMAX 輸送帶預設容量
	DefaultBufferSize = 1000
)

// IDSource 產生候選帳號
type IDSource func() domain.AccountID

// RandomIDSource 在 8 位數範圍內均勻隨機產生帳號
func RandomIDSource() domain.AccountID {
	span := int64(domain.MaxAccountID-domain.MinAccountID) + 1
	return domain.MinAccountID + domain.AccountID(rand.Int64N(span))
}

type options struct {
	idSource      IDSource
	maxIDAttempts int
	journal       *journal.Journal
	logger        *slog.Logger
	bufferSize    int
}

func defaultOptions() options {
	return options{
		idSource:      RandomIDSource,
		maxIDAttempts: DefaultMaxIDAttempts,
		logger:        slog.Default(),
		bufferSize:    DefaultBufferSize,
	}
}

// Option 定義帳本的配置選項函數
type Option func(*options)

// WithIDSource 替換帳號產生器 (測試用)
func WithIDSource(src IDSource) Option {
	return func(o *options) {
		if src != nil {
			o.idSource = src
		}
	}
}

// WithMaxIDAttempts 設定帳號碰撞時的重試上限
func WithMaxIDAttempts(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxIDAttempts = n
		}
	}
}

// WithJournal 每筆成功的交易都寫入 journal
func WithJournal(j *journal.Journal) Option {
	return func(o *options) {
		o.journal = j
	}
}

// WithLogger 設定 logger (journal 寫入失敗時使用)
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithBufferSize 設定 LMAX 輸送帶容量，MutexLedger 會忽略
func WithBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.bufferSize = n
		}
	}
}
