package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/suportehub/helpdesk-service/internal/auth"
	"github.com/suportehub/helpdesk-service/internal/config"
	"github.com/suportehub/helpdesk-service/internal/domain"
	"github.com/suportehub/helpdesk-service/internal/repository"
	apperrors "github.com/suportehub/helpdesk-service/pkg/util"
)

var codeIndexPattern = regexp.MustCompile(`^AGENT-(\d{4})-`)

// AuthService coordinates registration, login and agent code redemption.
type AuthService struct {
	users       repository.UserRepository
	codes       repository.AgentCodeRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	agentDomain string
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	AgentCodeRepo repository.AgentCodeRepository
}

// RegisterInput describes a registration payload.
type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	AgentCode *string
}

// CodeStatus reports the redemption state of an invitation code.
type CodeStatus struct {
	Code   string  `json:"code"`
	Exists bool    `json:"exists"`
	Valid  bool    `json:"valid"`
	Used   bool    `json:"used"`
	UsedBy *string `json:"usedBy"`
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		codes:       deps.AgentCodeRepo,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		agentDomain: strings.ToLower(cfg.Auth.AgentEmailDomain),
	}
}

// Register creates an account. The role is derived from the email domain
// and an optional single-use agent code: an agent-domain email with a valid
// unused code becomes AGENT, an agent-domain email without a code is
// rejected, and a code on a non-agent email is likewise rejected.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewDuplicateKey("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	isAgentEmail := strings.HasSuffix(email, "@"+s.agentDomain)
	role := domain.UserRoleRequester

	if input.AgentCode != nil && *input.AgentCode != "" {
		if !isAgentEmail {
			return nil, "", time.Time{}, apperrors.NewBusinessRule("only agent-domain emails may use an agent code", nil)
		}
		code, err := s.codes.GetByCode(ctx, *input.AgentCode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", time.Time{}, apperrors.NewBusinessRule("invalid agent code", nil)
			}
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
		if code.Used {
			return nil, "", time.Time{}, apperrors.NewBusinessRule("agent code already used", nil)
		}
		role = domain.UserRoleAgent
	} else if isAgentEmail {
		return nil, "", time.Time{}, apperrors.NewBusinessRule("agent-domain emails must provide an agent code", nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if role == domain.UserRoleAgent {
		// Atomic check-and-set: marks the code used and records the
		// redeemer in a single statement. If a concurrent registration
		// won the race, this account loses its elevation and is rolled
		// back.
		if err := s.codes.Consume(ctx, *input.AgentCode, user.ID); err != nil {
			_ = s.users.Delete(ctx, user.ID)
			if errors.Is(err, repository.ErrCodeSpent) {
				return nil, "", time.Time{}, apperrors.NewBusinessRule("agent code already used", nil)
			}
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// ValidateCode reports the state of an invitation code without consuming it.
func (s *AuthService) ValidateCode(ctx context.Context, code string) (*CodeStatus, error) {
	record, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &CodeStatus{Code: code}, nil
		}
		return nil, apperrors.MapError(err)
	}
	return &CodeStatus{
		Code:   code,
		Exists: true,
		Valid:  !record.Used,
		Used:   record.Used,
		UsedBy: record.UsedBy,
	}, nil
}

// GenerateCodes creates count new invitation codes, continuing the numeric
// sequence from the highest existing index.
func (s *AuthService) GenerateCodes(ctx context.Context, count int) ([]string, error) {
	existing, err := s.codes.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	start := maxCodeIndex(existing) + 1

	generated := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code := fmt.Sprintf("AGENT-%04d-%s", start+i, codeSuffix())
		if err := s.codes.Create(ctx, &domain.AgentCode{Code: code}); err != nil {
			return nil, apperrors.MapError(err)
		}
		generated = append(generated, code)
	}
	return generated, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func maxCodeIndex(codes []domain.AgentCode) int {
	max := 0
	for _, code := range codes {
		m := codeIndexPattern.FindStringSubmatch(code.Code)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

func codeSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
