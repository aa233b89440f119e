package rpc

import (
	"errors"

	"fave/go-backend/internal/domains/contracts"
	listingusecase "fave/go-backend/internal/domains/listing/usecase"
)

var errInvalidParams = errors.New("invalid params")

func rpcInvalidParams() *rpcError {
	return &rpcError{Code: -32602, Message: "invalid params"}
}

func rpcServiceError(code int, err error) *rpcError {
	return &rpcError{Code: code, Message: err.Error()}
}

func mapLoginRPCError(err error) *rpcError {
	switch {
	case errors.Is(err, contracts.ErrMissingAuth), errors.Is(err, contracts.ErrInvalidRole):
		return rpcInvalidParams()
	case errors.Is(err, contracts.ErrAddressBothRoles):
		return &rpcError{Code: -32020, Message: err.Error()}
	case errors.Is(err, contracts.ErrRegisteredAsFan):
		return &rpcError{Code: -32021, Message: err.Error()}
	case errors.Is(err, contracts.ErrRegisteredAsCreator):
		return &rpcError{Code: -32022, Message: err.Error()}
	default:
		return rpcServiceError(-32000, err)
	}
}

func mapLookupRPCError(err error) *rpcError {
	if errors.Is(err, listingusecase.ErrCreatorNotFound) {
		return &rpcError{Code: -32001, Message: err.Error()}
	}
	return rpcServiceError(-32000, err)
}

// mapListWorkRPCError keeps the retry contract visible to callers: pre-commit
// failures carry retry_safe=true, a reconciliation outcome carries the ledger
// reference so an operator can repair the catalog instead of re-submitting.
func mapListWorkRPCError(err error) *rpcError {
	switch {
	case errors.Is(err, listingusecase.ErrInvalidInput):
		return rpcInvalidParams()
	case errors.Is(err, listingusecase.ErrCreatorNotFound):
		return &rpcError{Code: -32001, Message: err.Error()}
	case errors.Is(err, listingusecase.ErrAlreadyListed):
		return &rpcError{Code: -32002, Message: err.Error()}
	}
	var reconciliation *listingusecase.ReconciliationError
	if errors.As(err, &reconciliation) {
		return &rpcError{
			Code:    -32011,
			Message: err.Error(),
			Data: map[string]any{
				"ledger_reference": reconciliation.LedgerReference,
				"retry_safe":       false,
			},
		}
	}
	var submission *listingusecase.LedgerSubmissionError
	if errors.As(err, &submission) {
		return &rpcError{
			Code:    -32010,
			Message: err.Error(),
			Data:    map[string]any{"retry_safe": true},
		}
	}
	return rpcServiceError(-32000, err)
}
