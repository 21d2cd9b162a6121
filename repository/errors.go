package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrUserNotFound indicates that no user row matched the lookup
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken indicates that the unique email index rejected an insert
	ErrEmailTaken = errors.New("email already registered")

	// ErrPictureNotFound indicates that no picture row matched the lookup
	ErrPictureNotFound = errors.New("picture not found")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
