package domain

import "strconv"

// 帳號範圍：8 位數字
const (
	MinAccountID AccountID = 10_000_000
	MaxAccountID AccountID = 99_999_999
)

// AccountID 帳戶 ID
type AccountID int64

// Valid 是否為合法的 8 位數帳號
func (id AccountID) Valid() bool {
	return id >= MinAccountID && id <= MaxAccountID
}

func (id AccountID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// LockOrder 回傳需要鎖定的帳號順序 (小的先鎖)，避免兩筆方向相反的轉帳互相死鎖
func LockOrder(a, b AccountID) (first, second AccountID) {
	if a <= b {
		return a, b
	}
	return b, a
}
