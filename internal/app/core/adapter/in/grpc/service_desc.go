package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName gRPC 服務全名
const ServiceName = "bank.v1.BankService"

// RPC 方法名稱
const (
	MethodCreateAccount = "CreateAccount"
	MethodDeposit       = "Deposit"
	MethodWithdraw      = "Withdraw"
	MethodAddPayee      = "AddPayee"
	MethodTransfer      = "Transfer"
	MethodGetDetails    = "GetDetails"
	MethodGetHistory    = "GetHistory"
)

// BankServiceServer 所有訊息都是 google.protobuf.Struct，不需要產生 stub
type BankServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Deposit(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Withdraw(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddPayee(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Transfer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetDetails(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(BankServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// BankServiceDesc 手寫的 ServiceDesc，結構與 protoc-gen-go-grpc 產生的相同
var BankServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BankServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodCreateAccount, Handler: unaryHandler(MethodCreateAccount, BankServiceServer.CreateAccount)},
		{MethodName: MethodDeposit, Handler: unaryHandler(MethodDeposit, BankServiceServer.Deposit)},
		{MethodName: MethodWithdraw, Handler: unaryHandler(MethodWithdraw, BankServiceServer.Withdraw)},
		{MethodName: MethodAddPayee, Handler: unaryHandler(MethodAddPayee, BankServiceServer.AddPayee)},
		{MethodName: MethodTransfer, Handler: unaryHandler(MethodTransfer, BankServiceServer.Transfer)},
		{MethodName: MethodGetDetails, Handler: unaryHandler(MethodGetDetails, BankServiceServer.GetDetails)},
		{MethodName: MethodGetHistory, Handler: unaryHandler(MethodGetHistory, BankServiceServer.GetHistory)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bank/v1/bank.proto",
}

// RegisterBankServiceServer 註冊服務
func RegisterBankServiceServer(s grpc.ServiceRegistrar, srv BankServiceServer) {
	s.RegisterService(&BankServiceDesc, srv)
}

// FullMethod 回傳 "/bank.v1.BankService/<method>"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		server := srv.(BankServiceServer)
		if interceptor == nil {
			return call(server, ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(server, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
