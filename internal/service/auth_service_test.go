package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suportehub/helpdesk-service/internal/config"
	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/repository"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeCodeRepo) {
	users := newFakeUserRepo()
	codes := newFakeCodeRepo()
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
		AgentEmailDomain:      "agente.com",
	}}
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users, AgentCodeRepo: codes})
	return svc, users, codes
}

func TestRegisterRequester(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, token, exp, err := svc.Register(context.Background(), RegisterInput{
		Name: "Joao", Email: "Joao@Empresa.com", Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleRequester, user.Role)
	assert.Equal(t, "joao@empresa.com", user.Email, "email is normalized")
	assert.NotEqual(t, "secret", user.PasswordHash, "password must be hashed")
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, users, _ := newAuthFixture()
	users.seed("Joao", "joao@empresa.com", domain.UserRoleRequester)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Joao 2", Email: "joao@empresa.com", Password: "secret",
	})
	require.Error(t, err)
	assert.Equal(t, "DUPLICATE_KEY", domainErrorCode(t, err))
}

func TestRegisterAgentWithValidCode(t *testing.T) {
	svc, _, codes := newAuthFixture()
	codes.seed("AGENT-0001-AAAAAA", false, nil)

	user, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Suporte", Email: "suporte@agente.com", Password: "secret",
		AgentCode: strPtr("AGENT-0001-AAAAAA"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleAgent, user.Role)

	record, err := codes.GetByCode(context.Background(), "AGENT-0001-AAAAAA")
	require.NoError(t, err)
	assert.True(t, record.Used)
	require.NotNil(t, record.UsedBy)
	assert.Equal(t, user.ID, *record.UsedBy)
}

func TestRegisterAgentEmailWithoutCodeRejected(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Suporte", Email: "suporte@agente.com", Password: "secret",
	})
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", domainErrorCode(t, err))
}

func TestRegisterCodeOnNonAgentEmailRejected(t *testing.T) {
	svc, _, codes := newAuthFixture()
	codes.seed("AGENT-0001-AAAAAA", false, nil)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Joao", Email: "joao@empresa.com", Password: "secret",
		AgentCode: strPtr("AGENT-0001-AAAAAA"),
	})
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", domainErrorCode(t, err))

	record, err := codes.GetByCode(context.Background(), "AGENT-0001-AAAAAA")
	require.NoError(t, err)
	assert.False(t, record.Used, "code must not be consumed on rejection")
}

func TestRegisterUnknownOrSpentCodeRejected(t *testing.T) {
	svc, _, codes := newAuthFixture()
	redeemer := "USR-0"
	codes.seed("AGENT-0002-BBBBBB", true, &redeemer)

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Suporte", Email: "suporte@agente.com", Password: "secret",
		AgentCode: strPtr("AGENT-0404-XXXXXX"),
	})
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", domainErrorCode(t, err))

	_, _, _, err = svc.Register(context.Background(), RegisterInput{
		Name: "Suporte", Email: "suporte@agente.com", Password: "secret",
		AgentCode: strPtr("AGENT-0002-BBBBBB"),
	})
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", domainErrorCode(t, err))
}

func TestRegisterLosingConsumeRaceRollsBackAccount(t *testing.T) {
	svc, users, codes := newAuthFixture()
	codes.seed("AGENT-0003-CCCCCC", false, nil)
	codes.consumeErr = repository.ErrCodeSpent

	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Suporte", Email: "suporte@agente.com", Password: "secret",
		AgentCode: strPtr("AGENT-0003-CCCCCC"),
	})
	require.Error(t, err)
	assert.Equal(t, "BUSINESS_RULE", domainErrorCode(t, err))

	remaining, err := users.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining, "half-created account must be rolled back")
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, _, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Joao", Email: "joao@empresa.com", Password: "secret",
	})
	require.NoError(t, err)

	user, token, _, err := svc.Login(context.Background(), "joao@empresa.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "joao@empresa.com", user.Email)
	assert.NotEmpty(t, token)

	_, _, _, err = svc.Login(context.Background(), "joao@empresa.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", domainErrorCode(t, err))

	_, _, _, err = svc.Login(context.Background(), "nobody@empresa.com", "secret")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", domainErrorCode(t, err))
}

func TestValidateCodeStates(t *testing.T) {
	svc, _, codes := newAuthFixture()
	redeemer := "USR-7"
	codes.seed("AGENT-0001-AAAAAA", false, nil)
	codes.seed("AGENT-0002-BBBBBB", true, &redeemer)

	status, err := svc.ValidateCode(context.Background(), "AGENT-0001-AAAAAA")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.True(t, status.Valid)
	assert.False(t, status.Used)
	assert.Nil(t, status.UsedBy)

	status, err = svc.ValidateCode(context.Background(), "AGENT-0002-BBBBBB")
	require.NoError(t, err)
	assert.True(t, status.Exists)
	assert.False(t, status.Valid)
	assert.True(t, status.Used)
	require.NotNil(t, status.UsedBy)
	assert.Equal(t, redeemer, *status.UsedBy)

	status, err = svc.ValidateCode(context.Background(), "AGENT-9999-ZZZZZZ")
	require.NoError(t, err)
	assert.False(t, status.Exists)
	assert.False(t, status.Valid)
	assert.False(t, status.Used)
}

func TestGenerateCodesContinuesSequence(t *testing.T) {
	svc, _, codes := newAuthFixture()
	codes.seed("AGENT-0007-AAAAAA", true, nil)
	codes.seed("AGENT-0003-BBBBBB", false, nil)

	generated, err := svc.GenerateCodes(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, generated, 3)

	assert.Regexp(t, `^AGENT-0008-[A-Z0-9]{6}$`, generated[0])
	assert.Regexp(t, `^AGENT-0009-[A-Z0-9]{6}$`, generated[1])
	assert.Regexp(t, `^AGENT-0010-[A-Z0-9]{6}$`, generated[2])

	for _, code := range generated {
		record, err := codes.GetByCode(context.Background(), code)
		require.NoError(t, err)
		assert.False(t, record.Used)
	}
}
