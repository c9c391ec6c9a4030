package rpc

import (
	"strconv"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/synchronizer/program"
)

// statusCodeFor picks the closest gRPC status code for a program error code.
func statusCodeFor(code program.Code) codes.Code {
	switch code {
	case program.CodeAlreadyInitialized:
		return codes.AlreadyExists
	case program.CodeNotInitialized, program.CodeNotRentExempt,
		program.CodeInsufficientFunds, program.CodeNotEnoughOracles:
		return codes.FailedPrecondition
	case program.CodeAccessDenied, program.CodeInvalidSigner, program.CodeBadOracle,
		program.CodeOwnerMismatch, program.CodeBadMintAuthority:
		return codes.PermissionDenied
	case program.CodeAmountOverflow:
		return codes.OutOfRange
	case program.CodeInvalidAccountData:
		return codes.NotFound
	default:
		return codes.InvalidArgument
	}
}

// statusFromProgram converts a transition error into a gRPC status. The
// numeric program code rides in the message prefix so the client can recover
// it exactly; gRPC status codes alone are too coarse for the taxonomy.
func statusFromProgram(err error) error {
	if err == nil {
		return nil
	}
	code, ok := program.CodeOf(err)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	return status.Error(statusCodeFor(code), strconv.Itoa(int(code))+": "+code.Message())
}

// programFromStatus is the inverse of statusFromProgram. Statuses that did
// not originate from a program error pass through unchanged.
func programFromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	prefix, _, found := strings.Cut(st.Message(), ": ")
	if !found {
		return err
	}
	n, perr := strconv.Atoi(prefix)
	if perr != nil || n < 0 {
		return err
	}
	return program.NewError(program.Code(n))
}
