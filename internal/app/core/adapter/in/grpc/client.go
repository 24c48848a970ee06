package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// Client BankService 的型別化客戶端
// 回傳的錯誤可以直接用 errors.Is 比對 domain 錯誤
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// CreateAccount 開戶，initialBalance 為十進位字串，空字串代表 0
func (c *Client) CreateAccount(ctx context.Context, name, initialBalance string) (domain.OpenedAccount, error) {
	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldName: structpb.NewStringValue(name),
	}}
	if initialBalance != "" {
		req.Fields[fieldInitialBalance] = structpb.NewStringValue(initialBalance)
	}
	resp, err := c.invoke(ctx, MethodCreateAccount, req)
	if err != nil {
		return domain.OpenedAccount{}, err
	}
	return openedFromStruct(resp)
}

// Deposit 存款，回傳新餘額 (最小貨幣單位)
func (c *Client) Deposit(ctx context.Context, id domain.AccountID, amount string) (int64, error) {
	return c.moveMoney(ctx, MethodDeposit, id, amount)
}

// Withdraw 提款，回傳新餘額 (最小貨幣單位)
func (c *Client) Withdraw(ctx context.Context, id domain.AccountID, amount string) (int64, error) {
	return c.moveMoney(ctx, MethodWithdraw, id, amount)
}

// AddPayee 加入收款人
func (c *Client) AddPayee(ctx context.Context, id, payeeID domain.AccountID) error {
	_, err := c.invoke(ctx, MethodAddPayee, &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAccountID: structpb.NewNumberValue(float64(id)),
		fieldPayeeID:   structpb.NewNumberValue(float64(payeeID)),
	}})
	return err
}

// Transfer 轉帳
func (c *Client) Transfer(ctx context.Context, id, payeeID domain.AccountID, amount string) error {
	_, err := c.invoke(ctx, MethodTransfer, &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAccountID: structpb.NewNumberValue(float64(id)),
		fieldPayeeID:   structpb.NewNumberValue(float64(payeeID)),
		fieldAmount:    structpb.NewStringValue(amount),
	}})
	return err
}

// GetDetails 取得帳戶資料
func (c *Client) GetDetails(ctx context.Context, id domain.AccountID) (domain.AccountDetails, error) {
	resp, err := c.invoke(ctx, MethodGetDetails, accountRequest(id))
	if err != nil {
		return domain.AccountDetails{}, err
	}
	return detailsFromStruct(resp)
}

// GetHistory 取得交易紀錄
func (c *Client) GetHistory(ctx context.Context, id domain.AccountID) (domain.History, error) {
	resp, err := c.invoke(ctx, MethodGetHistory, accountRequest(id))
	if err != nil {
		return nil, err
	}
	return historyFromStruct(resp)
}

func (c *Client) moveMoney(ctx context.Context, method string, id domain.AccountID, amount string) (int64, error) {
	resp, err := c.invoke(ctx, method, &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAccountID: structpb.NewNumberValue(float64(id)),
		fieldAmount:    structpb.NewStringValue(amount),
	}})
	if err != nil {
		return 0, err
	}
	return parseAmount(resp, fieldBalance)
}

func (c *Client) invoke(ctx context.Context, method string, req *structpb.Struct) (*structpb.Struct, error) {
	resp := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, resp); err != nil {
		return nil, fromStatus(err)
	}
	return resp, nil
}

func accountRequest(id domain.AccountID) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldAccountID: structpb.NewNumberValue(float64(id)),
	}}
}
