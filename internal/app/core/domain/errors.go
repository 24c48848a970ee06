package domain

import "errors"

var (
	// ErrInvalidInput 輸入格式錯誤 (名稱為空、欄位缺漏、帳號格式錯誤)
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidAmount 金額必須為正數
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrPayeeNotRegistered 收款人尚未加入收款人清單
	ErrPayeeNotRegistered = errors.New("payee not registered")

	// ErrInvalidPayeeID 收款人帳號必須為 8 位數字
	ErrInvalidPayeeID = errors.New("invalid payee id: must be an 8-digit number")

	// ErrIDSpaceExhausted 重試上限內找不到未使用的帳號
	ErrIDSpaceExhausted = errors.New("account id space exhausted")

	// ErrLedgerStopped 帳本引擎已停止，不再接受交易
	ErrLedgerStopped = errors.New("ledger stopped")
)
