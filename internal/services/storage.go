package services

import (
	"context"

	"github.com/underbudget/backend/internal/database"
	"github.com/underbudget/backend/internal/repository"
)

// Storage bundles what services need to reach the datastore: a handle for
// single statements, a Transactor for units of work, and the repository
// manager that binds repositories to either.
type Storage struct {
	DB    database.DBTX
	Tx    database.Transactor
	Repos repository.Manager
}

// inTx runs fn as one unit of work. Errors raised outside fn, such as a
// failed begin or commit, come back as a *PersistenceError with message as
// the public text.
func (s Storage) inTx(ctx context.Context, op, message string, fn func(ctx context.Context, tx database.DBTX) error) error {
	err := s.Tx.WithTx(ctx, fn)
	if err == nil || isServiceError(err) {
		return err
	}
	return &PersistenceError{Op: op, Message: message, Err: err}
}
