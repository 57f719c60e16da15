package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suportehub/helpdesk-service/internal/domain"
)

func TestUpdateProfileKeepsRoleAndChecksEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users)

	agent := users.seed("Suporte", "suporte@agente.com", domain.UserRoleAgent)
	users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	updated, err := svc.UpdateProfile(context.Background(), agent.ID, ProfileUpdateInput{
		Name:  strPtr("Suporte N1"),
		Phone: strPtr("+55 11 99999-0000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Suporte N1", updated.Name)
	assert.Equal(t, domain.UserRoleAgent, updated.Role)
	require.NotNil(t, updated.Phone)

	_, err = svc.UpdateProfile(context.Background(), agent.ID, ProfileUpdateInput{
		Email: strPtr("JOAO@empresa.com"),
	})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", domainErrorCode(t, err))

	updated, err = svc.UpdateProfile(context.Background(), agent.ID, ProfileUpdateInput{
		Email: strPtr("N1@Agente.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "n1@agente.com", updated.Email)
}

func TestUserGetAndDelete(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewUserService(users)
	user := users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	got, err := svc.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	require.NoError(t, svc.Delete(context.Background(), user.ID))

	_, err = svc.Get(context.Background(), user.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}
