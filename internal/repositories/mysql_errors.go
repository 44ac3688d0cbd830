package repositories

import (
	"errors"
	"strings"

	"github.com/bookstore/backend/internal/models"
	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories translate into domain errors
const (
	errDuplicateEntry    = 1062
	errForeignKeyMissing = 1452
	errLockDeadlock      = 1213
	errLockWaitTimeout   = 1205
	maxDeadlockRetries   = 3
)

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicateEntry(err error) bool {
	return mysqlErrorNumber(err) == errDuplicateEntry
}

func isForeignKeyMissing(err error) bool {
	return mysqlErrorNumber(err) == errForeignKeyMissing
}

func isRetryableLockError(err error) bool {
	n := mysqlErrorNumber(err)
	return n == errLockDeadlock || n == errLockWaitTimeout
}

// userConflictFromDuplicate turns a duplicate-key error on the users table into a ConflictError
//
// MySQL reports the violated index in the message, e.g. "Duplicate entry 'a@b.c' for key 'users.email'".
func userConflictFromDuplicate(err error) *models.ConflictError {
	if !isDuplicateEntry(err) {
		return nil
	}
	var me *mysql.MySQLError
	errors.As(err, &me)

	idx := strings.LastIndex(me.Message, "for key")
	key := me.Message
	if idx >= 0 {
		key = me.Message[idx:]
	}

	switch {
	case strings.Contains(key, "email"):
		return &models.ConflictError{Fields: []string{models.FieldEmail}}
	case strings.Contains(key, "username"):
		return &models.ConflictError{Fields: []string{models.FieldUsername}}
	default:
		return &models.ConflictError{Fields: []string{models.FieldEmail, models.FieldUsername}}
	}
}
