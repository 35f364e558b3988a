package database

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"

	mysqlDuplicateEntry      = 1062
	mysqlNoReferencedRow     = 1216
	mysqlNoReferencedRowFull = 1452
)

// IsNotFound reports whether err is GORM's record-not-found
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsForeignKeyViolation reports whether the store rejected a write because a
// referenced row does not exist (e.g. a unit that is not part of the property).
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlNoReferencedRow || myErr.Number == mysqlNoReferencedRowFull
	}

	// sqlite and sqlserver only surface a message
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}

// IsDuplicateKey reports whether the store rejected a write on a unique key
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint")
}
