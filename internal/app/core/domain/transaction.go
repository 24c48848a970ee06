package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// amount 使用int64，並定義精度：小數點後 2 位
const (
	CurrencyPlaces = 2
	CurrencyScale  = 100
)

// TimestampLayout 交易紀錄顯示用的時間格式
const TimestampLayout = "2006-01-02 15:04:05"

// TransactionKind 交易類型
type TransactionKind uint8

const (
	// 存款
	TransactionKindDeposit TransactionKind = iota + 1
	// 提款
	TransactionKindWithdrawal
	// 轉出
	TransactionKindTransferOut
	// 轉入
	TransactionKindTransferIn
)

var transactionKindNames = map[TransactionKind]string{
	TransactionKindDeposit:     "Deposit",
	TransactionKindWithdrawal:  "Withdrawal",
	TransactionKindTransferOut: "Transfer Out",
	TransactionKindTransferIn:  "Transfer In",
}

func (k TransactionKind) String() string {
	if name, ok := transactionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TransactionKind(%d)", uint8(k))
}

// ParseTransactionKind 由顯示名稱還原交易類型
func ParseTransactionKind(s string) (TransactionKind, error) {
	for kind, name := range transactionKindNames {
		if name == s {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown transaction kind %q", ErrInvalidInput, s)
}

// TransactionRecord 單筆交易紀錄，寫入後不可變
type TransactionRecord struct {
	ID          uuid.UUID
	Timestamp   time.Time
	Kind        TransactionKind
	Amount      int64
	Description string
}

// History 交易紀錄快照，依寫入順序排列
type History []TransactionRecord

// IsEmpty 尚無任何交易
func (h History) IsEmpty() bool {
	return len(h) == 0
}

// Last 回傳最後一筆交易，沒有交易時 ok 為 false
func (h History) Last() (rec TransactionRecord, ok bool) {
	if len(h) == 0 {
		return TransactionRecord{}, false
	}
	return h[len(h)-1], true
}
