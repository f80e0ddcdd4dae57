package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/freelaz/marketplace-api/internal/api/metrics"
	"github.com/freelaz/marketplace-api/internal/core/domain"
	"github.com/freelaz/marketplace-api/internal/core/ports"
)

const minPasswordLength = 6

// AuthService implements sign-in, sign-up with profile/role provisioning,
// session validation, and the password-recovery flow.
//
// Sign-up provisioning is three independent writes (profile, role,
// freelancer detail) that are not transactional with account creation; a
// failed write is logged, counted, and handed to the Provisioner for retry,
// and the registration itself still succeeds. Derivation downstream
// tolerates the missing rows until the retry lands.
type AuthService struct {
	identities  ports.IdentityRepository
	profiles    ports.ProfileRepository
	roles       ports.RoleRepository
	freelancers ports.FreelancerRepository
	sessions    ports.SessionStore
	resets      ports.ResetTokenStore
	mailer      ports.Mailer
	provisioner *Provisioner
	jwtSecret   string
	sessionTTL  time.Duration
	resetTTL    time.Duration
	log         zerolog.Logger
}

// Deps bundles the collaborators of AuthService. Provisioner may be nil, in
// which case failed provisioning writes are logged and counted only.
type Deps struct {
	Identities  ports.IdentityRepository
	Profiles    ports.ProfileRepository
	Roles       ports.RoleRepository
	Freelancers ports.FreelancerRepository
	Sessions    ports.SessionStore
	Resets      ports.ResetTokenStore
	Mailer      ports.Mailer
	Provisioner *Provisioner
}

func NewAuthService(d Deps, jwtSecret string, sessionTTL, resetTTL time.Duration, log zerolog.Logger) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &AuthService{
		identities:  d.Identities,
		profiles:    d.Profiles,
		roles:       d.Roles,
		freelancers: d.Freelancers,
		sessions:    d.Sessions,
		resets:      d.Resets,
		mailer:      d.Mailer,
		provisioner: d.Provisioner,
		jwtSecret:   jwtSecret,
		sessionTTL:  sessionTTL,
		resetTTL:    resetTTL,
		log:         log,
	}
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Session, *domain.User, error) {
	if email == "" || password == "" {
		metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, nil, domain.ErrInvalidCredentials
		}
		metrics.SignInsTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.SignInsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, user)
	if err != nil {
		metrics.SignInsTotal.WithLabelValues("error").Inc()
		return nil, nil, err
	}

	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	return session, user, nil
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.Session, *domain.User, error) {
	if in.Email == "" || in.FullName == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if len(in.Password) < minPasswordLength {
		return nil, nil, domain.ErrWeakPassword
	}
	if _, ok := domain.ParseProfileRole(string(in.Role)); !ok {
		return nil, nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	user, err := s.identities.Create(ctx, &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, nil, err
	}

	s.provision(ctx, user.ID, in)
	metrics.SignUpsTotal.WithLabelValues(string(in.Role)).Inc()

	session, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// provision performs the three post-creation writes. Failures do not abort
// the sign-up: each is logged, counted, and queued for retry.
func (s *AuthService) provision(ctx context.Context, userID string, in ports.SignUpInput) {
	profile := &domain.Profile{
		ID:                   userID,
		FullName:             in.FullName,
		Role:                 string(in.Role),
		IsOnboardingComplete: false,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.provisionFailed(writeProfile, userID, err, ProvisionTask{Write: writeProfile, Profile: profile})
	}

	appRole := domain.AppRoleForProfileRole(in.Role)
	if err := s.roles.Assign(ctx, userID, appRole); err != nil {
		s.provisionFailed(writeRole, userID, err, ProvisionTask{Write: writeRole, UserID: userID, Role: appRole})
	}

	if in.Role == domain.ProfileRoleFreelancer {
		detail := &domain.FreelancerDetail{
			ID:                 userID,
			AvailabilityStatus: domain.AvailabilityAvailable,
		}
		if err := s.freelancers.Upsert(ctx, detail); err != nil {
			s.provisionFailed(writeFreelancer, userID, err, ProvisionTask{Write: writeFreelancer, Freelancer: detail})
		}
	}
}

func (s *AuthService) provisionFailed(write, userID string, err error, task ProvisionTask) {
	metrics.ProvisioningErrorsTotal.WithLabelValues(write).Inc()
	s.log.Error().Err(err).
		Str("user_id", userID).
		Str("write", write).
		Msg("provisioning write failed")
	if s.provisioner != nil {
		s.provisioner.Enqueue(task)
	}
}

func (s *AuthService) SignOut(ctx context.Context, accessToken string) error {
	claims, err := s.parseToken(accessToken)
	if err != nil {
		// An unparseable token has no session to revoke.
		return nil
	}
	return s.sessions.Delete(ctx, claims.sessionID)
}

func (s *AuthService) GetSession(ctx context.Context, accessToken string) (*domain.Session, *domain.User, error) {
	claims, err := s.parseToken(accessToken)
	if err != nil {
		return nil, nil, domain.ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, claims.sessionID)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.identities.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	session.AccessToken = accessToken
	return session, user, nil
}

func (s *AuthService) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	user, err := s.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Unknown emails report success so the endpoint cannot be used
			// to enumerate accounts.
			s.log.Debug().Str("email", email).Msg("password reset for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.resets.Put(ctx, token, user.ID, s.resetTTL); err != nil {
		return err
	}

	link := fmt.Sprintf("%s#type=recovery&token=%s", redirectTo, token)
	if err := s.mailer.SendPasswordReset(ctx, user.Email, link); err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	return nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, resetToken, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return domain.ErrWeakPassword
	}

	userID, err := s.resets.Consume(ctx, resetToken)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues("invalid_token").Inc()
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.identities.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return err
	}

	// Existing sessions are revoked: the old credential must not outlive the
	// reset.
	if err := s.sessions.DeleteByUser(ctx, userID); err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("failed to revoke sessions after password reset")
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	return nil
}

func (s *AuthService) issueSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL).UTC(),
	}

	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"sid":   session.ID,
		"exp":   session.ExpiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}
	session.AccessToken = token

	if err := s.sessions.Put(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}
	return session, nil
}

type tokenClaims struct {
	userID    string
	email     string
	sessionID string
}

func (s *AuthService) parseToken(accessToken string) (*tokenClaims, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, domain.ErrSessionNotFound
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	sessionID, _ := claims["sid"].(string)
	if userID == "" || sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	return &tokenClaims{userID: userID, email: email, sessionID: sessionID}, nil
}
