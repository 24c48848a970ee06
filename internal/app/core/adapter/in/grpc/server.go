package grpc

import (
	"context"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/core/usecase"
)

type GrpcServer struct {
	core *usecase.CoreUseCase
}

func NewGrpcServer(core *usecase.CoreUseCase) *GrpcServer {
	return &GrpcServer{
		core: core,
	}
}

// CreateAccount {name, initial_balance?} -> {account_id, name, balance, payees, initial_record?}
func (s *GrpcServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	name, err := parseName(req)
	if err != nil {
		return nil, toStatus(err)
	}
	initial, err := parseOptionalAmount(req, fieldInitialBalance)
	if err != nil {
		return nil, toStatus(err)
	}
	opened, err := s.core.CreateAccount(ctx, name, initial)
	if err != nil {
		return nil, toStatus(err)
	}
	return openedToStruct(opened), nil
}

// Deposit {account_id, amount} -> {balance}
func (s *GrpcServer) Deposit(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, amount, err := parseAccountAndAmount(req)
	if err != nil {
		return nil, toStatus(err)
	}
	balance, err := s.core.Deposit(ctx, id, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return balanceToStruct(balance), nil
}

// Withdraw {account_id, amount} -> {balance}
func (s *GrpcServer) Withdraw(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, amount, err := parseAccountAndAmount(req)
	if err != nil {
		return nil, toStatus(err)
	}
	balance, err := s.core.Withdraw(ctx, id, amount)
	if err != nil {
		return nil, toStatus(err)
	}
	return balanceToStruct(balance), nil
}

// AddPayee {account_id, payee_id} -> {}
func (s *GrpcServer) AddPayee(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseAccountID(req, fieldAccountID, domain.ErrInvalidInput)
	if err != nil {
		return nil, toStatus(err)
	}
	payeeID, err := parseAccountID(req, fieldPayeeID, domain.ErrInvalidPayeeID)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.core.AddPayee(ctx, id, payeeID); err != nil {
		return nil, toStatus(err)
	}
	return emptyStruct(), nil
}

// Transfer {account_id, payee_id, amount} -> {}
func (s *GrpcServer) Transfer(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, amount, err := parseAccountAndAmount(req)
	if err != nil {
		return nil, toStatus(err)
	}
	payeeID, err := parseAccountID(req, fieldPayeeID, domain.ErrInvalidInput)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.core.Transfer(ctx, id, payeeID, amount); err != nil {
		return nil, toStatus(err)
	}
	return emptyStruct(), nil
}

// GetDetails {account_id} -> {account_id, name, balance, payees}
func (s *GrpcServer) GetDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseAccountID(req, fieldAccountID, domain.ErrInvalidInput)
	if err != nil {
		return nil, toStatus(err)
	}
	details, err := s.core.GetDetails(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return detailsToStruct(details), nil
}

// GetHistory {account_id} -> {records: [...]}，records 為空代表尚無交易
func (s *GrpcServer) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := parseAccountID(req, fieldAccountID, domain.ErrInvalidInput)
	if err != nil {
		return nil, toStatus(err)
	}
	history, err := s.core.GetHistory(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return historyToStruct(history), nil
}

func parseAccountAndAmount(req *structpb.Struct) (domain.AccountID, int64, error) {
	id, err := parseAccountID(req, fieldAccountID, domain.ErrInvalidInput)
	if err != nil {
		return 0, 0, err
	}
	amount, err := parseAmount(req, fieldAmount)
	if err != nil {
		return 0, 0, err
	}
	return id, amount, nil
}

var _ BankServiceServer = (*GrpcServer)(nil)
