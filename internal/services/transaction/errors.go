package transaction

import "paylink/internal/errors"

var (
	ErrSenderNotFound = &errors.DomainError{
		Code:    errors.CodeNotFound,
		Message: "sender not found",
	}
	ErrReceiverNotFound = &errors.DomainError{
		Code:    errors.CodeNotFound,
		Message: "receiver not found",
	}
	ErrPinNotSet = &errors.DomainError{
		Code:    errors.CodeValidation,
		Message: "UPI PIN not set, please set your UPI PIN first",
	}
	ErrIncorrectPin = &errors.DomainError{
		Code:    errors.CodeUnauthorized,
		Message: "incorrect UPI PIN",
	}
	ErrSelfTransfer = &errors.DomainError{
		Code:    errors.CodeValidation,
		Message: "cannot transfer to yourself",
	}
	ErrAccessDenied = &errors.DomainError{
		Code:    errors.CodeUnauthorized,
		Message: "access denied to this transaction",
	}
	ErrBankAccountNotOwned = &errors.DomainError{
		Code:    errors.CodeUnauthorized,
		Message: "bank account does not belong to this user",
	}
	ErrInsufficientBankBalance = &errors.DomainError{
		Code:    errors.CodeInsufficientFunds,
		Message: "insufficient bank balance",
	}
)
