package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-mem-bank/internal/app/core/domain"
)

// ErrorDomain 放在 ErrorInfo.Domain，讓 client 分辨是否為帳本錯誤
const ErrorDomain = "bank.v1"

type errorMapping struct {
	err    error
	code   codes.Code
	reason string
}

var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, codes.InvalidArgument, "INVALID_INPUT"},
	{domain.ErrInvalidAmount, codes.InvalidArgument, "INVALID_AMOUNT"},
	{domain.ErrInvalidPayeeID, codes.InvalidArgument, "INVALID_PAYEE_ID"},
	{domain.ErrAccountNotFound, codes.NotFound, "ACCOUNT_NOT_FOUND"},
	{domain.ErrInsufficientFunds, codes.FailedPrecondition, "INSUFFICIENT_FUNDS"},
	{domain.ErrPayeeNotRegistered, codes.FailedPrecondition, "PAYEE_NOT_REGISTERED"},
	{domain.ErrIDSpaceExhausted, codes.ResourceExhausted, "ID_SPACE_EXHAUSTED"},
	{domain.ErrLedgerStopped, codes.Unavailable, "LEDGER_STOPPED"},
}

// toStatus 把 domain 錯誤轉成 gRPC status，並附上 ErrorInfo
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	}
	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		st, detailErr := status.New(m.code, err.Error()).WithDetails(&errdetails.ErrorInfo{
			Reason: m.reason,
			Domain: ErrorDomain,
		})
		if detailErr != nil {
			return status.Error(m.code, err.Error())
		}
		return st.Err()
	}
	return status.Error(codes.Internal, err.Error())
}

// fromStatus 由 ErrorInfo 還原 domain 錯誤，讓 client 端可以用 errors.Is 判斷
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}
		for _, m := range errorMappings {
			if m.reason == info.GetReason() {
				return fmt.Errorf("%w (rpc: %s)", m.err, st.Message())
			}
		}
	}
	return err
}
