// Package journal 是 append-only 的 JSON Lines 稽核紀錄。
// 只負責編碼與重放，不做 fsync，也不保證持久化。
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"sync"
)

// Journal 把每筆資料寫成一行 JSON
type Journal struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// New 建立寫到 w 的 Journal
func New(w io.Writer) *Journal {
	return &Journal{enc: json.NewEncoder(w)}
}

// Append 寫入一筆資料
func (j *Journal) Append(v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(v)
}

// Replay 依序讀取 r 中的每一筆資料
// callback 一次只拿到一筆 raw JSON，不會一次把所有資料載入記憶體
func Replay(r io.Reader, callback func(raw json.RawMessage) error) error {
	decoder := json.NewDecoder(bufio.NewReader(r))
	for {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := callback(raw); err != nil {
			return err
		}
	}
}
