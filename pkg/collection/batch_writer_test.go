package collection

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func openScratch(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func insert(val string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO test (val) VALUES (?)", val)
		return err
	}
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestBatchWriterCommitsOnClose(t *testing.T) {
	db := openScratch(t)
	bw := NewBatchWriter(db, 2, 0)
	for _, v := range []string{"a", "b", "c"} {
		if err := bw.Submit(insert(v)); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- bw.Close() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("close: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for close")
	}
	if got := countRows(t, db); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
}

func TestBatchWriterRollsBackFailedBatch(t *testing.T) {
	db := openScratch(t)
	bw := NewBatchWriter(db, 2, 0)
	var mu sync.Mutex
	var reported []error
	bw.OnError = func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	}

	boom := errors.New("intentional")
	bw.Submit(insert("kept"))
	bw.Submit(insert("also kept"))
	bw.Submit(insert("lost"))
	bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return boom })

	if err := bw.Close(); !errors.Is(err, boom) {
		t.Fatalf("expected first batch error, got %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 {
		t.Fatalf("expected one OnError call, got %d", len(reported))
	}
	if got := countRows(t, db); got != 2 {
		t.Fatalf("expected only the good batch committed, got %d rows", got)
	}
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	db := openScratch(t)
	bw := NewBatchWriter(db, 10, 20*time.Millisecond)
	defer bw.Close()
	if err := bw.Submit(insert("tick")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for countRows(t, db) != 1 {
		if time.Now().After(deadline) {
			t.Fatal("interval flush never committed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBatchWriterRejectsAfterClose(t *testing.T) {
	db := openScratch(t)
	bw := NewBatchWriter(db, 1, 0)
	if err := bw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := bw.Submit(insert("late")); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed, got %v", err)
	}
	if err := bw.Close(); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed on second close, got %v", err)
	}
}
