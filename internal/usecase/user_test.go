package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/crud"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/domain"
	"github.com/Abdurahmanit/GroupProject/adwall-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newUserService() (*UserService, *memStore[domain.User, *domain.User]) {
	store := newMemStore[domain.User, *domain.User]("users")
	factory := newFactory[domain.User, *domain.User](store, crud.Resource{
		Name:      "user",
		Creatable: domain.UserCreatable,
		Updatable: domain.UserUpdatable,
		Sensitive: domain.UserSensitive,
	})
	tokens := NewTokenManager("test-secret", time.Hour, fixedClock)
	return NewUserService(factory, &MockUserRepository{}, tokens, fixedClock, logger.NewNop()), store
}

func TestUserManagement_ManagerCannotEscalate(t *testing.T) {
	svc, store := newUserService()
	ctx := context.Background()
	manager := store.put(&domain.User{Name: "Mona", Email: "mona@example.com", Role: domain.RoleManager, Active: true})
	admin := store.put(&domain.User{Name: "Ada", Email: "ada@example.com", Role: domain.RoleAdmin, Active: true})
	regular := store.put(&domain.User{Name: "Reg", Email: "reg@example.com", Role: domain.RoleUser, Active: true})
	actor := domain.Actor{ID: manager.ID, Role: domain.RoleManager}

	tests := []struct {
		name string
		call func() error
	}{
		{"promote self", func() error {
			_, err := svc.Update(ctx, actor, manager.ID.Hex(), map[string]interface{}{"role": "admin"})
			return err
		}},
		{"promote user", func() error {
			_, err := svc.Update(ctx, actor, regular.ID.Hex(), map[string]interface{}{"role": "manager"})
			return err
		}},
		{"deactivate user", func() error {
			_, err := svc.Update(ctx, actor, regular.ID.Hex(), map[string]interface{}{"active": false})
			return err
		}},
		{"edit admin", func() error {
			_, err := svc.Update(ctx, actor, admin.ID.Hex(), map[string]interface{}{"name": "Hacked"})
			return err
		}},
		{"delete admin", func() error {
			return svc.Delete(ctx, actor, admin.ID.Hex())
		}},
		{"create admin", func() error {
			_, err := svc.Create(ctx, actor, map[string]interface{}{
				"name": "Eve", "email": "eve@example.com", "password": "secret1", "role": "admin",
			})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, domain.KindForbidden, domain.KindOf(tt.call()))
		})
	}

	stored, err := store.FindByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.Name)
	stored, err = store.FindByID(ctx, manager.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, stored.Role)
	assert.Equal(t, 3, store.len())
}

func TestUserManagement_ManagerEditsRegularUsers(t *testing.T) {
	svc, store := newUserService()
	ctx := context.Background()
	regular := store.put(&domain.User{Name: "Reg", Email: "reg@example.com", Role: domain.RoleUser, Active: true})
	actor := domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleManager}

	updated, err := svc.Update(ctx, actor, regular.ID.Hex(), map[string]interface{}{"name": "Reggie"})
	require.NoError(t, err)
	assert.Equal(t, "Reggie", updated.Name)

	created, err := svc.Create(ctx, actor, map[string]interface{}{
		"name": "Newbie", "email": "new@example.com", "password": "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, created.Role)
}

func TestUserManagement_AdminChangesRoles(t *testing.T) {
	svc, store := newUserService()
	ctx := context.Background()
	regular := store.put(&domain.User{Name: "Reg", Email: "reg@example.com", Role: domain.RoleUser, Active: true})
	admin := domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleAdmin}

	updated, err := svc.Update(ctx, admin, regular.ID.Hex(), map[string]interface{}{"role": "manager"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, updated.Role)

	require.NoError(t, svc.Delete(ctx, admin, regular.ID.Hex()))
	assert.Zero(t, store.len())
}
