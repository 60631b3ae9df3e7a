package services

import (
	"errors"

	"github.com/dmitrijs2005/didkeeper/internal/common"
)

var (
	ErrRemoteNotConfigured = errors.New("remote backup is not configured")
	ErrTransactionRequired = errors.New("transaction reference is required")
)

func isNoIdentity(err error) bool {
	return errors.Is(err, common.ErrNoIdentity)
}
