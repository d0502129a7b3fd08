package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tair/restaurant-discovery/internal/account/domain"
	"github.com/tair/restaurant-discovery/internal/account/repository"
	"github.com/tair/restaurant-discovery/internal/testfixture"
)

func TestCreateAndFindUser(t *testing.T) {
	db := testfixture.NewDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	user := &domain.User{Username: "alice", Email: "alice@example.com", Password: "hash", Role: "user", IsActive: true}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	byName, err := repo.FindByUsername(ctx, "alice")
	if err != nil || byName.ID != user.ID {
		t.Fatalf("FindByUsername = %+v, %v", byName, err)
	}
	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("FindByEmail = %+v, %v", byEmail, err)
	}
	byID, err := repo.FindByID(ctx, user.ID)
	if err != nil || byID.Username != "alice" {
		t.Fatalf("FindByID = %+v, %v", byID, err)
	}
}

func TestCreateRejectsTakenUsernameOrEmail(t *testing.T) {
	db := testfixture.NewDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()
	testfixture.User(t, db, "alice")

	tests := []struct {
		name string
		user domain.User
	}{
		{name: "same username", user: domain.User{Username: "alice", Email: "other@example.com", Password: "x"}},
		{name: "same email", user: domain.User{Username: "bob", Email: "alice@example.com", Password: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := tt.user
			if err := repo.Create(ctx, &user); !errors.Is(err, domain.ErrUserExists) {
				t.Errorf("err = %v, want ErrUserExists", err)
			}
		})
	}
}

func TestMissingUser(t *testing.T) {
	db := testfixture.NewDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()

	if _, err := repo.FindByUsername(ctx, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("FindByUsername err = %v", err)
	}
	if _, err := repo.FindByID(ctx, 99); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("FindByID err = %v", err)
	}
	if err := repo.UpdatePassword(ctx, 99, "hash"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("UpdatePassword err = %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	db := testfixture.NewDB(t)
	repo := repository.NewGormUserRepository(db)
	ctx := context.Background()
	user := testfixture.User(t, db, "alice")

	if err := repo.UpdatePassword(ctx, user.ID, "new-hash"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}
	got, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Password != "new-hash" {
		t.Errorf("password = %q", got.Password)
	}
}

func newResetStore(t *testing.T) (*repository.RedisResetTokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return repository.NewRedisResetTokenStore(client), mr
}

func TestResetTokenIsSingleUse(t *testing.T) {
	store, mr := newResetStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "tok", 7, time.Hour); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if ttl := mr.TTL("password_reset:tok"); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}

	id, err := store.Consume(ctx, "tok")
	if err != nil || id != 7 {
		t.Fatalf("Consume = %d, %v", id, err)
	}
	if _, err := store.Consume(ctx, "tok"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Errorf("second Consume err = %v, want ErrInvalidResetToken", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	store, mr := newResetStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "tok", 7, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Consume(ctx, "tok"); !errors.Is(err, domain.ErrInvalidResetToken) {
		t.Errorf("err = %v, want ErrInvalidResetToken", err)
	}
}

func TestResetTokenStoreWithoutRedis(t *testing.T) {
	store := repository.NewRedisResetTokenStore(nil)
	ctx := context.Background()

	if err := store.Save(ctx, "tok", 1, time.Minute); err == nil {
		t.Error("expected Save to fail without redis")
	}
	if _, err := store.Consume(ctx, "tok"); err == nil {
		t.Error("expected Consume to fail without redis")
	}
}
