package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/stockroom/internal/audit"
	pkgAuth "github.com/angelmondragon/stockroom/pkg/auth"
	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/angelmondragon/stockroom/pkg/db"
	"github.com/angelmondragon/stockroom/pkg/db/models"
	"github.com/angelmondragon/stockroom/pkg/enums"
	pkgerrors "github.com/angelmondragon/stockroom/pkg/errors"
	"github.com/angelmondragon/stockroom/pkg/logger"
	"github.com/angelmondragon/stockroom/pkg/metrics"
)

// Rejection reasons that do not come from token verification.
const (
	ReasonMissingToken = "missing_token"
	ReasonUnknownUser  = "unknown_user"
)

type userFinder interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
}

// GateParams bundles the dependencies of the authorization gate.
type GateParams struct {
	Users     userFinder
	Audit     audit.Recorder
	JWTConfig config.JWTConfig
	Metrics   *metrics.AuthMetrics
	Logger    *logger.Logger
	Now       func() time.Time
}

// Gate resolves bearer tokens to users and enforces role requirements. Every
// rejection is audited once and surfaces as the same unauthorized error.
type Gate struct {
	users   userFinder
	audit   audit.Recorder
	jwtCfg  config.JWTConfig
	metrics *metrics.AuthMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewGate builds a Gate.
func NewGate(params GateParams) (*Gate, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Audit == nil {
		return nil, fmt.Errorf("audit logger is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Gate{
		users:   params.Users,
		audit:   params.Audit,
		jwtCfg:  params.JWTConfig,
		metrics: params.Metrics,
		logg:    logg,
		now:     now,
	}, nil
}

// Resolve verifies token and loads its subject.
func (g *Gate) Resolve(ctx context.Context, token string) (*models.User, error) {
	now := g.now().UTC()
	if token == "" {
		return nil, g.reject(ctx, ReasonMissingToken, audit.MsgMissingToken, now, nil)
	}

	login, err := pkgAuth.VerifyToken(g.jwtCfg, now, token)
	if err != nil {
		reason := pkgAuth.ReasonOf(err)
		message := audit.MsgInvalidToken
		if reason == pkgAuth.ReasonMissingSubject || reason == pkgAuth.ReasonMissingExpiry {
			message = audit.MsgMissingSubject
		}
		return nil, g.reject(ctx, string(reason), message, now, err)
	}

	user, err := g.users.FindByLogin(ctx, login)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, g.reject(ctx, ReasonUnknownUser, audit.MsgUnknownUser(login), now, err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup token subject")
	}
	return user, nil
}

// Authorize checks that user holds the required role.
func (g *Gate) Authorize(ctx context.Context, user *models.User, required enums.Role) error {
	if user == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no authenticated user")
	}
	if user.Position == required {
		return nil
	}
	g.audit.Record(ctx, audit.MsgWrongRole(user.Position, user.Login, required), g.now().UTC())
	g.logg.Warn(g.logg.WithLogin(ctx, user.Login), "auth.forbidden")
	return pkgerrors.New(pkgerrors.CodeForbidden, "Forbidden")
}

func (g *Gate) reject(ctx context.Context, reason, message string, at time.Time, cause error) error {
	g.audit.Record(ctx, message, at)
	g.metrics.IncRejection(reason)
	g.logg.Warn(g.logg.WithField(ctx, "reason", reason), "auth.rejected")
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, "token rejected")
}
