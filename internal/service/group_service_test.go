package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupService() (*GroupService, *fakeGroupRepo) {
	repo := newFakeGroupRepo()
	return NewGroupService(repo, nil, time.Minute), repo
}

func TestGroupCreateValidatesKey(t *testing.T) {
	svc, _ := newGroupService()

	group, err := svc.Create(context.Background(), GroupInput{Key: "suporte-ti", Name: "Suporte TI"})
	require.NoError(t, err)
	assert.Equal(t, "#64748b", group.Color, "default color applied")

	for _, key := range []string{"", "Suporte", "suporte_ti", "suporte ti"} {
		_, err := svc.Create(context.Background(), GroupInput{Key: key, Name: "x"})
		require.Error(t, err, "key %q", key)
		assert.Equal(t, "VALIDATION_FAILED", domainErrorCode(t, err))
	}

	_, err = svc.Create(context.Background(), GroupInput{Key: "suporte-ti", Name: "Again"})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", domainErrorCode(t, err))
}

func TestGroupUpdateKeyUniqueness(t *testing.T) {
	svc, repo := newGroupService()
	a := repo.seed("rh", "RH")
	repo.seed("financeiro", "Financeiro")

	_, err := svc.Update(context.Background(), a.ID, GroupInput{Key: "financeiro"})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", domainErrorCode(t, err))

	updated, err := svc.Update(context.Background(), a.ID, GroupInput{Key: "recursos-humanos", Name: "Recursos Humanos"})
	require.NoError(t, err)
	assert.Equal(t, "recursos-humanos", updated.Key)
	assert.Equal(t, "Recursos Humanos", updated.Name)
}

func TestGroupDelete(t *testing.T) {
	svc, repo := newGroupService()
	group := repo.seed("geral", "Geral")

	require.NoError(t, svc.Delete(context.Background(), group.ID))

	err := svc.Delete(context.Background(), group.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainErrorCode(t, err))
}

func TestGroupListWithoutCache(t *testing.T) {
	svc, repo := newGroupService()
	repo.seed("geral", "Geral")
	repo.seed("rh", "RH")

	groups, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}
