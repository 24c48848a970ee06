package grpc

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/pkg/money"
)

// 訊息欄位名稱
const (
	fieldName           = "name"
	fieldInitialBalance = "initial_balance"
	fieldAccountID      = "account_id"
	fieldPayeeID        = "payee_id"
	fieldAmount         = "amount"
	fieldBalance        = "balance"
	fieldPayees         = "payees"
	fieldRecords        = "records"
	fieldInitialRecord  = "initial_record"
	fieldID             = "id"
	fieldTimestamp      = "timestamp"
	fieldKind           = "kind"
	fieldDescription    = "description"
)

// 金額在線路上以十進位字串傳遞 ("12.50")
func parseAmount(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, key)
	}
	text, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a decimal string", domain.ErrInvalidInput, key)
	}
	amount, err := money.Parse(text.StringValue, domain.CurrencyPlaces)
	switch {
	case err == nil:
		return amount, nil
	case errors.Is(err, money.ErrMalformed):
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	default:
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidAmount, err)
	}
}

// parseOptionalAmount 欄位不存在時回傳 0
func parseOptionalAmount(s *structpb.Struct, key string) (int64, error) {
	if _, ok := s.GetFields()[key]; !ok {
		return 0, nil
	}
	return parseAmount(s, key)
}

func formatAmount(amount int64) string {
	return money.Format(amount, domain.CurrencyPlaces)
}

// maxExactInt float64 可精確表示的最大整數
const maxExactInt = 1 << 53

// parseAccountID 帳號以數字傳遞；非整數或缺漏回傳 invalid
func parseAccountID(s *structpb.Struct, key string, invalid error) (domain.AccountID, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: %s must be a number", invalid, key)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, fmt.Errorf("%w: %s must be an integer", invalid, key)
	}
	return domain.AccountID(int64(f)), nil
}

func parseName(s *structpb.Struct) (string, error) {
	v, ok := s.GetFields()[fieldName]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", domain.ErrInvalidInput, fieldName)
	}
	text, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", domain.ErrInvalidInput, fieldName)
	}
	return text.StringValue, nil
}

func detailsToStruct(d domain.AccountDetails) *structpb.Struct {
	payees := make([]*structpb.Value, 0, len(d.Payees))
	for _, id := range d.Payees {
		payees = append(payees, structpb.NewNumberValue(float64(id)))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAccountID: structpb.NewNumberValue(float64(d.ID)),
		fieldName:      structpb.NewStringValue(d.Name),
		fieldBalance:   structpb.NewStringValue(formatAmount(d.Balance)),
		fieldPayees:    structpb.NewListValue(&structpb.ListValue{Values: payees}),
	}}
}

func detailsFromStruct(s *structpb.Struct) (domain.AccountDetails, error) {
	id, err := parseAccountID(s, fieldAccountID, domain.ErrInvalidInput)
	if err != nil {
		return domain.AccountDetails{}, err
	}
	name, err := parseName(s)
	if err != nil {
		return domain.AccountDetails{}, err
	}
	balance, err := parseAmount(s, fieldBalance)
	if err != nil {
		return domain.AccountDetails{}, err
	}
	d := domain.AccountDetails{ID: id, Name: name, Balance: balance, Payees: []domain.AccountID{}}
	for _, v := range s.GetFields()[fieldPayees].GetListValue().GetValues() {
		d.Payees = append(d.Payees, domain.AccountID(int64(v.GetNumberValue())))
	}
	return d, nil
}

func recordToValue(rec domain.TransactionRecord) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		fieldID:          structpb.NewStringValue(rec.ID.String()),
		fieldTimestamp:   structpb.NewStringValue(rec.Timestamp.Format(time.RFC3339Nano)),
		fieldKind:        structpb.NewStringValue(rec.Kind.String()),
		fieldAmount:      structpb.NewStringValue(formatAmount(rec.Amount)),
		fieldDescription: structpb.NewStringValue(rec.Description),
	}})
}

func recordFromStruct(s *structpb.Struct) (domain.TransactionRecord, error) {
	fields := s.GetFields()
	id, err := uuid.Parse(fields[fieldID].GetStringValue())
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: record id: %v", domain.ErrInvalidInput, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, fields[fieldTimestamp].GetStringValue())
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("%w: record timestamp: %v", domain.ErrInvalidInput, err)
	}
	kind, err := domain.ParseTransactionKind(fields[fieldKind].GetStringValue())
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	amount, err := parseAmount(s, fieldAmount)
	if err != nil {
		return domain.TransactionRecord{}, err
	}
	return domain.TransactionRecord{
		ID:          id,
		Timestamp:   ts,
		Kind:        kind,
		Amount:      amount,
		Description: fields[fieldDescription].GetStringValue(),
	}, nil
}

func historyToStruct(h domain.History) *structpb.Struct {
	records := make([]*structpb.Value, 0, len(h))
	for _, rec := range h {
		records = append(records, recordToValue(rec))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRecords: structpb.NewListValue(&structpb.ListValue{Values: records}),
	}}
}

func historyFromStruct(s *structpb.Struct) (domain.History, error) {
	values := s.GetFields()[fieldRecords].GetListValue().GetValues()
	h := make(domain.History, 0, len(values))
	for _, v := range values {
		rec, err := recordFromStruct(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		h = append(h, rec)
	}
	return h, nil
}

func openedToStruct(o domain.OpenedAccount) *structpb.Struct {
	s := detailsToStruct(o.AccountDetails)
	if o.InitialRecord != nil {
		s.Fields[fieldInitialRecord] = recordToValue(*o.InitialRecord)
	}
	return s
}

func openedFromStruct(s *structpb.Struct) (domain.OpenedAccount, error) {
	details, err := detailsFromStruct(s)
	if err != nil {
		return domain.OpenedAccount{}, err
	}
	opened := domain.OpenedAccount{AccountDetails: details}
	if v, ok := s.GetFields()[fieldInitialRecord]; ok {
		rec, err := recordFromStruct(v.GetStructValue())
		if err != nil {
			return domain.OpenedAccount{}, err
		}
		opened.InitialRecord = &rec
	}
	return opened, nil
}

func balanceToStruct(balance int64) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldBalance: structpb.NewStringValue(formatAmount(balance)),
	}}
}

func emptyStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{}}
}
