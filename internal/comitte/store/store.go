package store

import (
	"context"
	"errors"
	"time"

	"github.com/ls-softworks/comitte/internal/comitte/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("store: not found")

	// ErrAlreadyExists is returned when a unique constraint would be
	// violated (duplicate username, email or mobile).
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the persistence boundary for the identity service. Drivers live
// under store/drivers.
type Store interface {
	Members() Members
	Roles() Roles
	PasswordResetTokens() PasswordResetTokens

	// WithTx runs fn inside a transaction. The Store passed to fn routes
	// all calls through that transaction; it commits when fn returns nil
	// and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error

	Ping(ctx context.Context) error
	Close() error
}

// Members is account storage.
type Members interface {
	Create(ctx context.Context, m *domain.Member) error

	GetByID(ctx context.Context, id int64) (domain.Member, error)
	GetByUsername(ctx context.Context, username string) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)

	// GetByIDWithRoles loads the member plus roles and their authorities.
	GetByIDWithRoles(ctx context.Context, id int64) (domain.Member, error)

	UpdatePassword(ctx context.Context, id int64, passwordHash string, actorID int64) error
	UpdateProfile(ctx context.Context, id int64, name, email, mobile string, actorID int64) error

	AssignRole(ctx context.Context, memberID, roleID, actorID int64) error
}

// Roles is role and authority storage. Role names are stored without the
// ROLE_ prefix.
type Roles interface {
	GetByName(ctx context.Context, name string) (domain.Role, error)
	ListForMember(ctx context.Context, memberID int64) ([]domain.Role, error)
}

// PasswordResetTokens is storage for the single-use reset credentials.
type PasswordResetTokens interface {
	// Create stores t, replacing any outstanding token for the same member.
	Create(ctx context.Context, t *domain.PasswordResetToken) error

	GetByToken(ctx context.Context, token string) (domain.PasswordResetToken, error)
	GetByMember(ctx context.Context, memberID int64) (domain.PasswordResetToken, error)

	Delete(ctx context.Context, id int64) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
