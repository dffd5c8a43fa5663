package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/userplatform/user-api/internal/core/domain"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int64

	getCalls    int
	createCalls int
	updateCalls int
	deleteCalls int
	listCalls   int
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		clone := *u
		r.nextID++
		clone.ID = r.nextID
		r.users[clone.UserID] = &clone
	}
	return r
}

func (r *stubUserRepo) GetByUserID(_ context.Context, userID string) (*domain.User, error) {
	r.getCalls++
	u, ok := r.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) List(_ context.Context, page, pageSize int) ([]*domain.User, int64, error) {
	r.listCalls++
	all := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		clone := *u
		all = append(all, &clone)
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.createCalls++
	if _, exists := r.users[user.UserID]; exists {
		return nil, domain.ErrUserExists
	}
	clone := *user
	r.nextID++
	clone.ID = r.nextID
	r.users[clone.UserID] = &clone
	result := clone
	return &result, nil
}

func (r *stubUserRepo) Update(_ context.Context, userID string, user *domain.User) error {
	r.updateCalls++
	existing, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	existing.UserName = user.UserName
	existing.IsAdmin = user.IsAdmin
	existing.IsRoot = user.IsRoot
	existing.IsLockedOut = user.IsLockedOut
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, userID string) error {
	r.deleteCalls++
	if _, ok := r.users[userID]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func adminCaller() *domain.User {
	return &domain.User{ID: 2, UserID: "admin001", UserName: "admin_user", IsAdmin: true}
}

func plainCaller() *domain.User {
	return &domain.User{ID: 1, UserID: "user001", UserName: "john_doe"}
}

func TestEnrich_MissingSubject(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	for _, claims := range []map[string]string{
		{},
		{"name": "alice"},
		{"sub": ""},
	} {
		if _, _, err := svc.Enrich(context.Background(), claims); !errors.Is(err, domain.ErrMissingSubject) {
			t.Fatalf("claims %v: expected ErrMissingSubject, got %v", claims, err)
		}
	}
	if repo.getCalls != 0 || repo.createCalls != 0 {
		t.Fatalf("store must not be touched without a sub claim, got %d reads %d writes", repo.getCalls, repo.createCalls)
	}
}

func TestEnrich_FirstTouchCreatesRecord(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	user, created, err := svc.Enrich(context.Background(), map[string]string{"sub": "fresh001", "name": "fresh_user"})
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if !created {
		t.Fatalf("expected created=true for first-seen user")
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected exactly one create, got %d", repo.createCalls)
	}
	if user.UserID != "fresh001" || user.UserName != "fresh_user" {
		t.Fatalf("unexpected record: %+v", user)
	}
	if user.IsAdmin || user.IsRoot || user.IsLockedOut {
		t.Fatalf("new record must default all flags to false: %+v", user)
	}
	if user.ID == 0 {
		t.Fatalf("expected store-assigned internal id")
	}
}

func TestEnrich_NameFallsBackToSubject(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	user, _, err := svc.Enrich(context.Background(), map[string]string{"sub": "fresh002"})
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if user.UserName != "fresh002" {
		t.Fatalf("expected display name to fall back to sub, got %q", user.UserName)
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	repo := newStubUserRepo(plainCaller())
	svc := NewUserService(repo, zerolog.Nop())

	user, created, err := svc.Enrich(context.Background(), map[string]string{"sub": "user001", "name": "ignored"})
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for a known user")
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no create for a known user, got %d", repo.createCalls)
	}
	if user.UserName != "john_doe" {
		t.Fatalf("expected the stored record to be reused, got %+v", user)
	}
}

func TestEnrich_LockedOut(t *testing.T) {
	repo := newStubUserRepo(&domain.User{UserID: "locked001", UserName: "locked_user", IsLockedOut: true})
	svc := NewUserService(repo, zerolog.Nop())

	if _, _, err := svc.Enrich(context.Background(), map[string]string{"sub": "locked001"}); !errors.Is(err, domain.ErrLockedOut) {
		t.Fatalf("expected ErrLockedOut, got %v", err)
	}
}

// raceRepo simulates losing the first-touch create race: the initial read
// misses, the insert hits the unique index, and the re-read returns the
// winner's record.
type raceRepo struct {
	*stubUserRepo
	winner *domain.User
}

func (r *raceRepo) GetByUserID(ctx context.Context, userID string) (*domain.User, error) {
	r.getCalls++
	if r.getCalls == 1 {
		return nil, domain.ErrUserNotFound
	}
	clone := *r.winner
	return &clone, nil
}

func (r *raceRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.createCalls++
	return nil, domain.ErrUserExists
}

func TestEnrich_CreateRaceFallsBackToWinner(t *testing.T) {
	repo := &raceRepo{
		stubUserRepo: newStubUserRepo(),
		winner:       &domain.User{ID: 7, UserID: "raced001", UserName: "winner"},
	}
	svc := NewUserService(repo, zerolog.Nop())

	user, created, err := svc.Enrich(context.Background(), map[string]string{"sub": "raced001"})
	if err != nil {
		t.Fatalf("enrich failed: %v", err)
	}
	if created {
		t.Fatalf("losing the race must not report a creation")
	}
	if user.ID != 7 || user.UserName != "winner" {
		t.Fatalf("expected the winner's record, got %+v", user)
	}
}

func TestGetUser_RequiresAdmin(t *testing.T) {
	repo := newStubUserRepo(plainCaller())
	svc := NewUserService(repo, zerolog.Nop())

	if _, err := svc.GetUser(context.Background(), plainCaller(), "user001"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.GetUser(context.Background(), nil, "user001"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for nil caller, got %v", err)
	}
	if repo.getCalls != 0 {
		t.Fatalf("authorization must be checked before any store access, got %d reads", repo.getCalls)
	}

	user, err := svc.GetUser(context.Background(), adminCaller(), "user001")
	if err != nil {
		t.Fatalf("admin lookup failed: %v", err)
	}
	if user.UserID != "user001" {
		t.Fatalf("unexpected record: %+v", user)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	svc := NewUserService(newStubUserRepo(), zerolog.Nop())

	if _, err := svc.GetUser(context.Background(), adminCaller(), "ghost001"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestListUsers_Validation(t *testing.T) {
	repo := newStubUserRepo(plainCaller(), adminCaller())
	svc := NewUserService(repo, zerolog.Nop())

	if _, _, err := svc.ListUsers(context.Background(), plainCaller(), 1, 10); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	for _, tc := range [][2]int{{0, 10}, {-1, 10}, {1, 0}, {1, -5}} {
		if _, _, err := svc.ListUsers(context.Background(), adminCaller(), tc[0], tc[1]); !errors.Is(err, domain.ErrInvalidPagination) {
			t.Fatalf("page=%d pageSize=%d: expected ErrInvalidPagination, got %v", tc[0], tc[1], err)
		}
	}
	if repo.listCalls != 0 {
		t.Fatalf("invalid requests must not reach the store")
	}

	users, total, err := svc.ListUsers(context.Background(), adminCaller(), 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("expected 2 users, got %d (total %d)", len(users), total)
	}
}

func TestCreateUser_AdminCheckBeforeExistence(t *testing.T) {
	repo := newStubUserRepo(adminCaller())
	svc := NewUserService(repo, zerolog.Nop())

	// A non-admin probing a taken id must see 403, never 409.
	_, err := svc.CreateUser(context.Background(), plainCaller(), &domain.User{UserID: "admin001", UserName: "x"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.getCalls != 0 || repo.createCalls != 0 {
		t.Fatalf("existence must not be checked for non-admins")
	}
}

func TestCreateUser_Conflict(t *testing.T) {
	repo := newStubUserRepo(adminCaller())
	svc := NewUserService(repo, zerolog.Nop())

	_, err := svc.CreateUser(context.Background(), adminCaller(), &domain.User{UserID: "admin001", UserName: "dupe"})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestCreateUser_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	created, err := svc.CreateUser(context.Background(), adminCaller(), &domain.User{
		UserID:   "newuser001",
		UserName: "new_user",
		IsAdmin:  true,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected store-assigned internal id")
	}
	if !created.IsAdmin {
		t.Fatalf("admin flag from the payload must be honoured on create")
	}
}

func TestUpdateUser_PreservesRoot(t *testing.T) {
	repo := newStubUserRepo(&domain.User{UserID: "root001", UserName: "root_user", IsAdmin: true, IsRoot: true})
	svc := NewUserService(repo, zerolog.Nop())

	err := svc.UpdateUser(context.Background(), adminCaller(), "root001", &domain.User{
		UserName: "renamed_root",
		IsAdmin:  false,
		IsRoot:   false, // must be ignored
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	stored := repo.users["root001"]
	if !stored.IsRoot {
		t.Fatalf("is-root must be preserved across updates")
	}
	if stored.UserName != "renamed_root" || stored.IsAdmin {
		t.Fatalf("other fields must be applied: %+v", stored)
	}
}

func TestUpdateUser_ForbiddenBeforeNotFound(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	if err := svc.UpdateUser(context.Background(), plainCaller(), "ghost001", &domain.User{UserName: "x"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if repo.getCalls != 0 {
		t.Fatalf("existence must not be checked for non-admins")
	}

	if err := svc.UpdateUser(context.Background(), adminCaller(), "ghost001", &domain.User{UserName: "x"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := newStubUserRepo(plainCaller())
	svc := NewUserService(repo, zerolog.Nop())

	if err := svc.DeleteUser(context.Background(), plainCaller(), "user001"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	if err := svc.DeleteUser(context.Background(), adminCaller(), "user001"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), adminCaller(), "user001"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound after delete, got %v", err)
	}
}
