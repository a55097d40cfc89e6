package sql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
		check      bool
	}{
		{"nil", nil, false, false, false},
		{"unrelated", errors.New("connection refused"), false, false, false},
		{"mysql_duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a' for key 'email'"}, true, false, false},
		{"mysql_duplicate_wrapped", fmt.Errorf("dialect/sql: exec: %w", &mysql.MySQLError{Number: 1062}), true, false, false},
		{"mysql_parent_row", &mysql.MySQLError{Number: 1451}, false, true, false},
		{"mysql_child_row", &mysql.MySQLError{Number: 1452}, false, true, false},
		{"mysql_check", &mysql.MySQLError{Number: 3819}, false, false, true},
		{"mysql_other_number", &mysql.MySQLError{Number: 1146, Message: "Error 1062 mentioned in text"}, false, false, false},
		{"mysql_string", errors.New("Error 1062 (23000): Duplicate entry"), true, false, false},
		{"sqlite_unique", errors.New("UNIQUE constraint failed: users.email"), true, false, false},
		{"sqlite_foreign_key", errors.New("FOREIGN KEY constraint failed"), false, true, false},
		{"sqlite_check", errors.New("CHECK constraint failed: age_positive"), false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueConstraintError(tt.err))
			assert.Equal(t, tt.foreignKey, IsForeignKeyConstraintError(tt.err))
			assert.Equal(t, tt.check, IsCheckConstraintError(tt.err))
			assert.Equal(t, tt.unique || tt.foreignKey || tt.check, IsConstraintError(tt.err))
		})
	}
}
