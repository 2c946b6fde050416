package repository

import "context"

// Repositories is a set of repositories bound to one transaction.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Orders   OrderRepository
}

// Transactor runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back otherwise. Only record mutations made
// through repos are covered; anything else fn does (file deletes, emails) is
// not undone on rollback.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
