package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/stockroom/internal/audit"
	"github.com/angelmondragon/stockroom/internal/users"
	pkgAuth "github.com/angelmondragon/stockroom/pkg/auth"
	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom/pkg/errors"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"github.com/angelmondragon/stockroom/pkg/security"
	"gorm.io/gorm"
)

const (
	registeredMessage         = "User successfully registered"
	duplicateLoginMessage     = "Login already registered"
	invalidCredentialsMessage = "Incorrect username or password"
)

// Service defines the behavior needed by the registration and token controllers.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*StatusResponse, error)
	IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}

type userRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Users           userRepository
	UserRepoFactory func(tx *gorm.DB) userRepository
	Audit           audit.Auditor
	JWTConfig       config.JWTConfig
	PasswordConfig  config.PasswordConfig
	Logger          *logger.Logger
	Now             func() time.Time
}

type service struct {
	users       userRepository
	usersFor    func(tx *gorm.DB) userRepository
	audit       audit.Auditor
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit logger is required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	usersFor := params.UserRepoFactory
	if usersFor == nil {
		usersFor = func(tx *gorm.DB) userRepository { return users.NewRepository(tx) }
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.Users,
		usersFor:    usersFor,
		audit:       params.Audit,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        logg,
		now:         now,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*StatusResponse, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "login is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}
	if limit := security.MaxPasswordBytes(s.passwordCfg); limit > 0 && len(req.Password) > limit {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at most %d bytes", limit))
	}
	position, err := enums.ParseRole(req.Position)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "position must be trader or buyer").
			WithDetails(map[string]string{"position": req.Position})
	}

	digest, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	now := s.now().UTC()
	err = s.audit.Within(ctx, audit.MsgRegistered(login), now, func(tx *gorm.DB) error {
		_, err := s.usersFor(tx).Create(ctx, users.CreateUserDTO{
			Login:        login,
			PasswordHash: digest,
			Position:     position,
		})
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, users.ErrDuplicateLogin):
		s.audit.Record(ctx, audit.MsgDuplicateLogin(login), now)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDuplicateLogin, err, duplicateLoginMessage)
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	s.logg.Info(s.logg.WithLogin(ctx, login), "auth.registered")
	return &StatusResponse{Status: http.StatusOK, Message: registeredMessage}, nil
}

func (s *service) IssueToken(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	now := s.now().UTC()
	user, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInvalidCredentials) {
			s.audit.Record(ctx, audit.MsgInvalidCredentials, now)
		}
		return nil, err
	}

	ctx = s.logg.WithLogin(ctx, user.Login)
	if security.NeedsRehash(user.PasswordHash, s.passwordCfg) {
		s.logg.Info(ctx, "password.rehash_recommended")
	}

	token, err := pkgAuth.IssueToken(s.jwtCfg, now, user.Login, s.jwtCfg.AccessTokenTTL())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.audit.Record(ctx, audit.MsgTokenIssued(user.Login), now)
	return &TokenResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func (s *service) authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidCredentials, invalidCredentialsMessage)
	}
	return user, nil
}
