package auth

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/manifold-app/backend/config"
	"github.com/manifold-app/backend/services/confirmation"
	"github.com/manifold-app/backend/services/identity"
	"github.com/manifold-app/backend/services/logging"
	"github.com/manifold-app/backend/services/password"
	"github.com/manifold-app/backend/services/user"
	"github.com/manifold-app/backend/session"
)

const claimIdentityKind = "li_type"

const (
	verifyEmailTemplate    = "verify_email"
	changePasswordTemplate = "change_password"
)

// Mailer is the slice of the mail service this package needs. Confirmation
// emails are fire and forget; delivery failure never blocks token issuance.
type Mailer interface {
	SendTemplateAsync(templateName string, to []string, subject string, data map[string]any)
}

// Service orchestrates login, logout and the confirmation flows on top of the
// identity, password, confirmation and session components. It holds no state
// of its own.
type Service struct {
	identities    *identity.Service
	users         *user.Service
	hasher        *password.Service
	confirmations *confirmation.Service
	sessions      *session.Manager
	sessionRows   session.SessionService
	mailer        Mailer
	appCfg        *config.AppConfig
	logger        *logging.Service
}

func NewService(
	identities *identity.Service,
	users *user.Service,
	hasher *password.Service,
	confirmations *confirmation.Service,
	sessions *session.Manager,
	sessionRows session.SessionService,
	mailer Mailer,
	appCfg *config.AppConfig,
	logger *logging.Service,
) *Service {
	return &Service{
		identities:    identities,
		users:         users,
		hasher:        hasher,
		confirmations: confirmations,
		sessions:      sessions,
		sessionRows:   sessionRows,
		mailer:        mailer,
		appCfg:        appCfg,
		logger:        logger,
	}
}

// Login verifies the email credential and binds the user to a freshly rotated
// session. An unknown email and a wrong password are indistinguishable to the
// caller. ctx must carry session state loaded by the session middleware.
func (s *Service) Login(ctx context.Context, email, passwd string) (uuid.UUID, error) {
	li, err := s.identities.FindByIdentifier(identity.KindEmail, email)
	if err != nil {
		return uuid.Nil, err
	}
	if li == nil {
		if s.logger != nil {
			s.logger.Info("login rejected: unknown identifier")
		}
		return uuid.Nil, ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(li.PasswordHash, passwd)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		if s.logger != nil {
			s.logger.Info("login rejected: wrong password",
				zap.String("user_id", li.UserID.String()))
		}
		return uuid.Nil, ErrInvalidCredentials
	}

	if s.sessions == nil {
		return uuid.Nil, ErrSessionsDisabled
	}
	if err := s.sessions.CreateForUser(ctx, li.UserID, li.Identifier); err != nil {
		return uuid.Nil, fmt.Errorf("failed to establish session: %w", err)
	}

	// Audit rows are advisory. The signed session is authoritative, so a
	// failed insert is logged and the login still succeeds.
	if s.sessionRows != nil {
		if token := s.sessions.Token(ctx); token != "" {
			expiresAt := time.Now().Add(s.sessions.MaxAge())
			if err := s.sessionRows.TrackSession(li.UserID, token, "", "", expiresAt); err != nil && s.logger != nil {
				s.logger.Warn("failed to record login session row",
					zap.String("user_id", li.UserID.String()), zap.Error(err))
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("user logged in", zap.String("user_id", li.UserID.String()))
	}
	return li.UserID, nil
}

// Logout destroys the client session unconditionally and best-effort removes
// the matching audit row. It returns the user id that was bound to the
// session, if any.
func (s *Service) Logout(ctx context.Context) (uuid.UUID, error) {
	if s.sessions == nil {
		return uuid.Nil, ErrSessionsDisabled
	}

	userID, _ := s.sessions.UserID(ctx)

	if s.sessionRows != nil {
		if token := s.sessions.Token(ctx); token != "" {
			if err := s.sessionRows.RemoveSessionByToken(token); err != nil && s.logger != nil {
				s.logger.Warn("failed to remove login session row", zap.Error(err))
			}
		}
	}

	if err := s.sessions.Purge(ctx); err != nil {
		return userID, fmt.Errorf("failed to purge session: %w", err)
	}

	if s.logger != nil && userID != uuid.Nil {
		s.logger.Info("user logged out", zap.String("user_id", userID.String()))
	}
	return userID, nil
}

// CurrentUser resolves the session's user. A session bound to a user id with
// no matching row is stale by definition; it is destroyed on the spot and
// ErrSessionInvalidated returned.
func (s *Service) CurrentUser(ctx context.Context) (*user.User, error) {
	if s.sessions == nil {
		return nil, ErrSessionsDisabled
	}

	userID, ok := s.sessions.UserID(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	u, err := s.users.Get(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if s.logger != nil {
			s.logger.Warn("session references missing user, invalidating",
				zap.String("user_id", userID.String()))
		}
		if purgeErr := s.sessions.Purge(ctx); purgeErr != nil && s.logger != nil {
			s.logger.Error("failed to purge invalidated session", zap.Error(purgeErr))
		}
		return nil, ErrSessionInvalidated
	}

	return u, nil
}

// RequestIdentityVerification issues a confirmation token for one of the
// user's login identities and emails the verification link. The identity kind
// travels inside the sealed token, so verification needs nothing but the
// token itself.
func (s *Service) RequestIdentityVerification(ctx context.Context, userID uuid.UUID, kind identity.Kind) error {
	li, err := s.identities.Find(userID, kind)
	if err != nil {
		return err
	}
	if li == nil {
		return ErrIdentityNotFound
	}

	token, expiresIn, err := s.confirmations.Issue(ctx, userID, confirmation.PurposeConfirmation,
		map[string]string{claimIdentityKind: string(kind)})
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/verify?token=%s", s.appCfg.ClientURL, url.QueryEscape(token))
	s.sendMail(verifyEmailTemplate, li.Identifier, "Verify your email address", link, expiresIn)

	return nil
}

// VerifyLoginIdentity redeems a verification token and marks the identity it
// names as verified.
func (s *Service) VerifyLoginIdentity(ctx context.Context, token string) (uuid.UUID, error) {
	tok, err := s.confirmations.Verify(ctx, token, confirmation.PurposeConfirmation)
	if err != nil {
		return uuid.Nil, err
	}

	kindClaim, ok := tok.Claims[claimIdentityKind].(string)
	if !ok {
		return uuid.Nil, confirmation.ErrInvalidToken
	}
	kind := identity.Kind(kindClaim)
	if !kind.Valid() {
		return uuid.Nil, confirmation.ErrInvalidToken
	}

	if err := s.identities.MarkVerified(tok.UserID, kind); err != nil {
		return uuid.Nil, err
	}

	return tok.UserID, nil
}

// RequestPasswordChange issues a password-change token for the account behind
// the given email and mails the change link. An unknown email is swallowed so
// the endpoint does not leak which addresses have accounts.
func (s *Service) RequestPasswordChange(ctx context.Context, email string) error {
	li, err := s.identities.FindByIdentifier(identity.KindEmail, email)
	if err != nil {
		return err
	}
	if li == nil {
		if s.logger != nil {
			s.logger.Info("password change requested for unknown email")
		}
		return nil
	}

	token, expiresIn, err := s.confirmations.Issue(ctx, li.UserID, confirmation.PurposePasswordChange, nil)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/change-password?token=%s", s.appCfg.ClientURL, url.QueryEscape(token))
	s.sendMail(changePasswordTemplate, li.Identifier, "Change your password", link, expiresIn)

	return nil
}

// CompletePasswordChange redeems a password-change token and rewrites the
// email credential with a fresh hash and salt.
func (s *Service) CompletePasswordChange(ctx context.Context, token, newPassword string) (uuid.UUID, error) {
	tok, err := s.confirmations.Verify(ctx, token, confirmation.PurposePasswordChange)
	if err != nil {
		return uuid.Nil, err
	}

	if err := s.identities.UpdatePassword(tok.UserID, identity.KindEmail, newPassword); err != nil {
		return uuid.Nil, err
	}

	if s.logger != nil {
		s.logger.Info("password changed via confirmation token",
			zap.String("user_id", tok.UserID.String()))
	}
	return tok.UserID, nil
}

func (s *Service) sendMail(template, to, subject, link string, expiresIn int64) {
	if s.mailer == nil {
		if s.logger != nil {
			s.logger.Warn("no mail service configured, dropping confirmation email",
				zap.String("template", template))
		}
		return
	}

	s.mailer.SendTemplateAsync(template, []string{to}, subject, map[string]any{
		"AppName":          s.appCfg.Name,
		"Link":             link,
		"ExpiresInMinutes": expiresIn / 60,
	})
}
