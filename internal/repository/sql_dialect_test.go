package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm duplicated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres unique", err: &pgconn.PgError{Code: "23505"}, want: true},
		{name: "postgres other", err: &pgconn.PgError{Code: "23514"}, want: false},
		{name: "mysql duplicate", err: fmt.Errorf("wrap: %w", &mysql.MySQLError{Number: 1062}), want: true},
		{name: "mysql other", err: &mysql.MySQLError{Number: 1452}, want: false},
		{name: "sqlite text", err: errors.New("constraint failed: UNIQUE constraint failed: transactions.completed_payment_id (2067)"), want: true},
		{name: "plain", err: errors.New("connection reset"), want: false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperatorByDialect("postgres"); got != "ILIKE" {
		t.Fatalf("postgres like operator want ILIKE got %s", got)
	}
	if got := likeOperatorByDialect("mysql"); got != "LIKE" {
		t.Fatalf("mysql like operator want LIKE got %s", got)
	}
}

func TestDBDialectNameNil(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}
}
