// Package services contains server-side business logic. AccountService
// implements the registration and authentication flows and token
// introspection on top of the credential and profile stores.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/password"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

// Validation messages returned to clients.
const (
	MsgAllFieldsRequired     = "All fields are required."
	MsgEmailPasswordRequired = "Email and password are required."
	MsgPasswordTooLong       = "Password must be at most 72 bytes long."
)

// Error codes attached with oops.
const (
	CodeValidation          = "AUTH_VALIDATION"
	CodeAccountConflict     = "AUTH_ACCOUNT_CONFLICT"
	CodeInvalidCredentials  = "AUTH_INVALID_CREDENTIALS"
	CodePersistence         = "AUTH_PERSISTENCE"
	CodeInternalConsistency = "AUTH_INTERNAL_CONSISTENCY"
	CodeTokenIssueFailed    = "AUTH_TOKEN_ISSUE_FAILED"
	CodeHashFailed          = "AUTH_HASH_FAILED"
)

// TokenIssuer signs and validates session tokens.
type TokenIssuer interface {
	Issue(credentialID, profileID string, isAdmin bool) (string, error)
	Parse(token string) (*auth.Claims, error)
}

// Identity is what a valid token resolves to.
type Identity struct {
	CredentialID string
	IsAdmin      bool
	Profile      *models.Profile
}

// AccountService registers accounts, authenticates them and resolves issued
// tokens. It holds no per-request state and is safe for concurrent use.
type AccountService struct {
	repos   repomanager.RepositoryManager
	hasher  password.Hasher
	tokens  TokenIssuer
	log     logging.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountService wires the flows. m may be nil.
func NewAccountService(repos repomanager.RepositoryManager, hasher password.Hasher, tokens TokenIssuer, log logging.Logger, m *metrics.Metrics) *AccountService {
	return &AccountService{
		repos:   repos,
		hasher:  hasher,
		tokens:  tokens,
		log:     log.With("module", "accounts"),
		metrics: m,
		now:     time.Now,
	}
}

// Register creates a password credential and its profile and returns a
// token for them. Nothing is stored when the input is rejected.
func (s *AccountService) Register(ctx context.Context, username, email, pw string) (token string, err error) {
	defer s.observe(metrics.FlowRegister, s.now(), &err)

	email = models.NormalizeEmail(email)
	if username == "" || email == "" || pw == "" {
		return "", validationError("register", MsgAllFieldsRequired)
	}

	existing, err := s.repos.Credentials().FindByEmail(ctx, email)
	switch {
	case err == nil:
		return "", conflictError("register", existing)
	case !errors.Is(err, common.ErrorNotFound):
		return "", persistenceError("register", "find credential", err)
	}

	if violations := password.Validate(pw); len(violations) > 0 {
		return "", validationError("register", violations...)
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return "", validationError("register", MsgPasswordTooLong)
		}
		return "", oops.Code(CodeHashFailed).
			With("operation", "hash password").
			Wrap(err)
	}

	var cred *models.Credential
	var prof *models.Profile
	err = s.repos.WithinTx(ctx, func(ctx context.Context, creds credentials.Repository, profs profiles.Repository) error {
		var txErr error
		if cred, txErr = creds.Create(ctx, models.NewPasswordCredential(email, hash)); txErr != nil {
			return txErr
		}
		prof, txErr = profs.Create(ctx, models.NewProfile(cred, username, s.now()))
		return txErr
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return "", oops.Code(CodeAccountConflict).
				With("operation", "create credential").
				Wrap(common.ErrAlreadyRegistered)
		}
		return "", persistenceError("register", "create account", err)
	}

	s.log.Info(ctx, "account registered", "credential_id", cred.ID, "profile_id", prof.ID)

	return s.issue(cred.ID, prof.ID, false)
}

// Login checks email and password and returns a token carrying the stored
// admin flag. Unknown emails and wrong passwords are indistinguishable.
func (s *AccountService) Login(ctx context.Context, email, pw string) (token string, err error) {
	defer s.observe(metrics.FlowLogin, s.now(), &err)

	email = models.NormalizeEmail(email)
	if email == "" || pw == "" {
		return "", validationError("login", MsgEmailPasswordRequired)
	}

	cred, err := s.repos.Credentials().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(pw)
			return "", invalidCredentials()
		}
		return "", persistenceError("login", "find credential", err)
	}

	if cred.LinkageType == models.LinkageExternalNoPassword {
		return "", conflictError("login", cred)
	}

	if cred.PasswordHash == "" {
		s.burnVerify(pw)
		return "", invalidCredentials()
	}

	ok, err := s.hasher.Verify(pw, cred.PasswordHash)
	if err != nil {
		s.log.Warn(ctx, "stored password hash unusable", "credential_id", cred.ID, "error", err)
		return "", invalidCredentials()
	}
	if !ok {
		return "", invalidCredentials()
	}

	prof, err := s.repos.Profiles().FindByOwner(ctx, cred.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "credential has no profile", "credential_id", cred.ID)
			return "", oops.Code(CodeInternalConsistency).
				With("credential_id", cred.ID).
				Wrap(common.ErrInternalConsistency)
		}
		return "", persistenceError("login", "find profile", err)
	}

	return s.issue(cred.ID, prof.ID, cred.IsAdmin)
}

// Me resolves a bearer token to the identity and profile it was issued for.
func (s *AccountService) Me(ctx context.Context, token string) (id *Identity, err error) {
	defer s.observe(metrics.FlowMe, s.now(), &err)

	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, oops.Code(CodeInvalidCredentials).Wrap(err)
	}

	prof, err := s.repos.Profiles().FindByOwner(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "token owner has no profile", "credential_id", claims.UserID)
			return nil, oops.Code(CodeInternalConsistency).
				With("credential_id", claims.UserID).
				Wrap(common.ErrInternalConsistency)
		}
		return nil, persistenceError("me", "find profile", err)
	}
	if prof.ID != claims.ProfileID {
		return nil, oops.Code(CodeInvalidCredentials).
			With("credential_id", claims.UserID).
			Wrap(common.ErrInvalidToken)
	}

	return &Identity{CredentialID: claims.UserID, IsAdmin: claims.IsAdmin, Profile: prof}, nil
}

func (s *AccountService) issue(credentialID, profileID string, isAdmin bool) (string, error) {
	token, err := s.tokens.Issue(credentialID, profileID, isAdmin)
	if err != nil {
		return "", oops.Code(CodeTokenIssueFailed).
			With("credential_id", credentialID).
			Wrap(err)
	}
	return token, nil
}

// burnVerify spends the same hashing work as a real check so that a missing
// account cannot be told apart by response time.
func (s *AccountService) burnVerify(pw string) {
	s.dummyOnce.Do(func() {
		buf := make([]byte, 16)
		_, _ = rand.Read(buf)
		s.dummyHash, _ = s.hasher.Hash(hex.EncodeToString(buf))
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(pw, s.dummyHash)
	}
}

func (s *AccountService) observe(flow string, start time.Time, err *error) {
	s.metrics.Observe(flow, Outcome(*err), s.now().Sub(start))
}

func validationError(flow string, violations ...string) error {
	return oops.Code(CodeValidation).
		With("flow", flow).
		Wrap(common.NewValidationError(violations...))
}

func conflictError(flow string, existing *models.Credential) error {
	reason := common.ErrAlreadyRegistered
	if existing.LinkageType == models.LinkageExternalNoPassword {
		reason = common.ErrLinkedExternally
	}
	return oops.Code(CodeAccountConflict).
		With("flow", flow).
		With("credential_id", existing.ID).
		Wrap(reason)
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Wrap(common.ErrInvalidCredentials)
}

func persistenceError(flow, operation string, err error) error {
	return oops.Code(CodePersistence).
		With("flow", flow).
		With("operation", operation).
		Wrap(errors.Join(common.ErrPersistence, err))
}
