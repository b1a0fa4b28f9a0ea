package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

type memoryRepo struct {
	users map[string]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]User)}
}

func (r *memoryRepo) Get(ctx context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRepo) Create(ctx context.Context, user User) error {
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, user User) error {
	if _, ok := r.users[user.ID]; !ok {
		return shared.ErrNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	return NewService(repo, perm.NewEvaluator(perm.Lookups{}))
}

func asUser(id string) context.Context {
	return perm.ContextWithPrincipal(context.Background(), perm.Principal{ID: id})
}

func TestRegisterOpenToAnonymous(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(t, repo)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:       "  Alice@Example.COM ",
		DisplayName: "Alice",
		Password:    "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct horse", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestGetReturnsFullAccountToOwnerOnly(t *testing.T) {
	repo := newMemoryRepo()
	repo.users["u1"] = User{ID: "u1", Email: "a@example.com", DisplayName: "Alice"}
	svc := newTestService(t, repo)

	got, err := svc.Get(asUser("u1"), "u1")
	require.NoError(t, err)
	full, ok := got.(*User)
	require.True(t, ok)
	assert.Equal(t, "a@example.com", full.Email)

	got, err = svc.Get(asUser("u2"), "u1")
	require.NoError(t, err)
	public, ok := got.(PublicProfile)
	require.True(t, ok)
	assert.Equal(t, "Alice", public.DisplayName)
}

func TestGetReturnsFullAccountToAccountManagement(t *testing.T) {
	repo := newMemoryRepo()
	repo.users["u1"] = User{ID: "u1", Email: "a@example.com"}
	svc := newTestService(t, repo)

	p := perm.Principal{ID: "svc", Authorities: []perm.Authority{perm.AuthorityAccountManagement}}
	got, err := svc.Get(perm.ContextWithPrincipal(context.Background(), p), "u1")
	require.NoError(t, err)
	_, ok := got.(*User)
	assert.True(t, ok)
}

func TestUpdateIsSelfServiceOnly(t *testing.T) {
	repo := newMemoryRepo()
	repo.users["u1"] = User{ID: "u1", DisplayName: "Alice"}
	svc := newTestService(t, repo)

	name := "Alice B."
	_, err := svc.Update(asUser("u2"), "u1", UpdateUserRequest{DisplayName: &name})
	require.ErrorIs(t, err, shared.ErrForbidden)

	user, err := svc.Update(asUser("u1"), "u1", UpdateUserRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", user.DisplayName)
}

func TestUpdateRehashesPassword(t *testing.T) {
	repo := newMemoryRepo()
	repo.users["u1"] = User{ID: "u1", PasswordHash: "old"}
	svc := newTestService(t, repo)

	password := "new password"
	user, err := svc.Update(asUser("u1"), "u1", UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("new password")))
}

func TestDeleteDeniedForStrangersAndAnonymous(t *testing.T) {
	repo := newMemoryRepo()
	repo.users["u1"] = User{ID: "u1"}
	svc := newTestService(t, repo)

	require.ErrorIs(t, svc.Delete(context.Background(), "u1"), shared.ErrForbidden)
	require.ErrorIs(t, svc.Delete(asUser("u2"), "u1"), shared.ErrForbidden)
	require.NoError(t, svc.Delete(asUser("u1"), "u1"))
	assert.Empty(t, repo.users)
}
