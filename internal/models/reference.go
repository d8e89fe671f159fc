package models

import (
	"strings"

	"github.com/google/uuid"
)

// Identifier formats shared with the account-opening and transfer-initiation collaborators.
const (
	TransactionPrefix          = "TRX"
	TransactionReferenceLength = 12
	AccountPrefix              = "CHB"
	AccountNumberLength        = 10
)

// NewTransactionReference returns a fixed-length reference derived from a random UUID.
func NewTransactionReference() string {
	return TransactionPrefix + randomCode(TransactionReferenceLength-len(TransactionPrefix))
}

// NewAccountNumber returns a fixed-length account number derived from a random UUID.
func NewAccountNumber() string {
	return AccountPrefix + randomCode(AccountNumberLength-len(AccountPrefix))
}

func randomCode(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:n])
}

// IsTransactionReference reports whether s has the transaction reference shape.
func IsTransactionReference(s string) bool {
	return len(s) == TransactionReferenceLength && strings.HasPrefix(s, TransactionPrefix)
}

// IsAccountNumber reports whether s has the account number shape.
func IsAccountNumber(s string) bool {
	return len(s) == AccountNumberLength && strings.HasPrefix(s, AccountPrefix)
}
