package user

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jacentio/myblog/dynamo"
	"github.com/jacentio/myblog/internal/dynamotest"
)

func newTestService(store *dynamotest.Store, config Config) *Service {
	s := NewService(store, config, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time {
		return time.Date(2024, time.May, 17, 15, 4, 5, 0, time.UTC)
	}
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("user%04d", n)
	}
	return s
}

func seedUser(t *testing.T, store *dynamotest.Store, u User) {
	t.Helper()
	item, err := dynamo.Encode(u)
	if err != nil {
		t.Fatalf("encode seed user: %v", err)
	}
	store.Seed(DefaultConfig().Table, u.ID, item)
}

// --- Create ---

func TestCreate_AssignsIDTimestampAndToken(t *testing.T) {
	store := dynamotest.New()
	s := newTestService(store, DefaultConfig())

	u, err := s.Create(context.Background(), CreateInput{
		Username: "ann",
		Email:    "ann@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID != "user0001" {
		t.Errorf("expected generated id 'user0001', got %q", u.ID)
	}
	if u.CreatedAt != "5/17/2024, 3:04:05 PM" {
		t.Errorf("unexpected createdAt %q", u.CreatedAt)
	}
	if u.Tokens != 1 {
		t.Errorf("expected tokens 1, got %d", u.Tokens)
	}
	if store.Len(DefaultConfig().Table) != 1 {
		t.Errorf("expected 1 stored record, got %d", store.Len(DefaultConfig().Table))
	}
}

func TestCreate_DuplicateEmailWritesNothing(t *testing.T) {
	store := dynamotest.New()
	s := newTestService(store, DefaultConfig())
	seedUser(t, store, User{ID: "u1", Username: "ann", Email: "ann@example.com", Password: "x", CreatedAt: "1/1/2024, 1:00:00 PM"})

	_, err := s.Create(context.Background(), CreateInput{
		Username: "ann2",
		Email:    "ann@example.com",
		Password: "y",
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if err.Error() != "409 - Email already exists" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if store.Len(DefaultConfig().Table) != 1 {
		t.Errorf("expected store unchanged, got %d records", store.Len(DefaultConfig().Table))
	}
}

// --- FindOne ---

func TestFindOne_NotFound(t *testing.T) {
	s := newTestService(dynamotest.New(), DefaultConfig())

	_, err := s.FindOne(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindOne_NeverReturnsPassword(t *testing.T) {
	store := dynamotest.New()
	s := newTestService(store, DefaultConfig())
	seedUser(t, store, User{ID: "u1", Username: "ann", Email: "ann@example.com", Password: "secret", CreatedAt: "1/1/2024, 1:00:00 PM", Tokens: 1})

	u, err := s.FindOne(context.Background(), "u1")
	if err != nil {
		t.Fatalf("findOne: %v", err)
	}
	if u.Password != "" {
		t.Errorf("expected password excluded from projection, got %q", u.Password)
	}
	if u.Username != "ann" || u.Email != "ann@example.com" {
		t.Errorf("unexpected record %+v", u)
	}
}

// --- FindMany ---

func TestFindMany_Capped(t *testing.T) {
	store := dynamotest.New()
	s := newTestService(store, Config{ScanLimit: 2})
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("u%d", i)
		seedUser(t, store, User{ID: id, Username: id, Email: id + "@example.com", CreatedAt: "1/1/2024, 1:00:00 PM"})
	}

	users, err := s.FindMany(context.Background())
	if err != nil {
		t.Fatalf("findMany: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected scan capped at 2, got %d", len(users))
	}
}

func TestFindMany_Empty(t *testing.T) {
	s := newTestService(dynamotest.New(), DefaultConfig())

	users, err := s.FindMany(context.Background())
	if err != nil {
		t.Fatalf("findMany: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty sequence, got %d", len(users))
	}
}

// --- Login ---

func TestLogin_UnknownEmail(t *testing.T) {
	s := newTestService(dynamotest.New(), DefaultConfig())

	_, err := s.Login(context.Background(), "ghost@example.com")
	if !errors.Is(err, ErrEmailNotFound) {
		t.Fatalf("expected ErrEmailNotFound, got %v", err)
	}
	if err.Error() != "404 - User email does not exist" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestLogin_MarksSessionToken(t *testing.T) {
	store := dynamotest.New()
	s := newTestService(store, DefaultConfig())
	seedUser(t, store, User{ID: "u1", Username: "ann", Email: "ann@example.com", Password: "secret", CreatedAt: "1/1/2024, 1:00:00 PM"})

	u, err := s.Login(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if u.ID != "u1" {
		t.Errorf("expected id 'u1', got %q", u.ID)
	}
	if u.Tokens != 1 {
		t.Errorf("expected tokens set to 1, got %d", u.Tokens)
	}
}

// --- Delete ---

func TestDelete_ReturnsDeletedID(t *testing.T) {
	store := dynamotest.New()
	s := newTestService(store, DefaultConfig())
	seedUser(t, store, User{ID: "u1", Username: "ann", Email: "ann@example.com", CreatedAt: "1/1/2024, 1:00:00 PM"})

	result, err := s.Delete(context.Background(), "u1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.ID != "u1" {
		t.Errorf("expected deleted id 'u1', got %q", result.ID)
	}
	if store.Len(DefaultConfig().Table) != 0 {
		t.Errorf("expected record removed, %d remain", store.Len(DefaultConfig().Table))
	}
}

func TestDelete_MissingRecordReturnsEmptyID(t *testing.T) {
	s := newTestService(dynamotest.New(), DefaultConfig())

	result, err := s.Delete(context.Background(), "missing")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.ID != "" {
		t.Errorf("expected empty id, got %q", result.ID)
	}
}

// --- Operations ---

func TestOperations_TableComplete(t *testing.T) {
	s := newTestService(dynamotest.New(), DefaultConfig())
	ops := s.Operations()

	for _, field := range []string{"findOne", "findMany", "findLogin", "createUser", "deleteUser"} {
		if ops[field] == nil {
			t.Errorf("missing operation %q", field)
		}
	}
	if len(ops) != 5 {
		t.Errorf("expected 5 operations, got %d", len(ops))
	}
}
