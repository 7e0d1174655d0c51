package helpers

import (
	"context"
	"fmt"

	"github.com/forgo/txsandbox/internal/repository"
)

// TB is the part of testing.TB the assertions use
type TB interface {
	Helper()
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
}

// AssertRowCount fails the test unless table holds want rows as seen by ctx
func AssertRowCount(t TB, ctx context.Context, src repository.Source, table string, want int) {
	t.Helper()

	got := count(t, ctx, src, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if got != want {
		t.Errorf("expected %d rows in %s, got %d", want, table, got)
	}
}

// AssertRecordExists fails the test unless a row with id exists in table
func AssertRecordExists(t TB, ctx context.Context, src repository.Source, table, id string) {
	t.Helper()

	if count(t, ctx, src, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), id) == 0 {
		t.Errorf("expected record %s to exist in %s", id, table)
	}
}

// AssertRecordNotExists fails the test if a row with id exists in table
func AssertRecordNotExists(t TB, ctx context.Context, src repository.Source, table, id string) {
	t.Helper()

	if count(t, ctx, src, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ?", table), id) != 0 {
		t.Errorf("expected record %s not to exist in %s", id, table)
	}
}

func count(t TB, ctx context.Context, src repository.Source, query string, args ...any) int {
	t.Helper()

	var n int
	if err := src.Querier(ctx).QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		t.Fatalf("helpers: query failed: %v\nQuery: %s", err, query)
	}
	return n
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
