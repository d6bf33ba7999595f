package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"user-account-api/internal/core/auth"
	"user-account-api/internal/core/cache"
	"user-account-api/internal/core/events"
	"user-account-api/internal/domain"
	"user-account-api/pkg/utils"
)

const msgEmailTaken = "Email already registered"

type TokenIssuer interface {
	Issue(uid, role string) (string, error)
}

type Options struct {
	Rules     Rules
	Cache     cache.Store
	CacheTTL  time.Duration
	Publisher events.Publisher
	Logger    *zap.Logger
	// NewID overrides id generation (tests).
	NewID func() string
}

type Service struct {
	repo   domain.UserRepository
	tokens TokenIssuer
	rules  Rules
	cache  cache.Store
	ttl    time.Duration
	pub    events.Publisher
	log    *zap.Logger
	newID  func() string
}

func NewService(repo domain.UserRepository, tokens TokenIssuer, o Options) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		rules:  o.Rules,
		cache:  o.Cache,
		ttl:    o.CacheTTL,
		pub:    o.Publisher,
		log:    o.Logger,
		newID:  o.NewID,
	}
	if s.cache == nil {
		s.cache = cache.Nop{}
	}
	if s.ttl <= 0 {
		s.ttl = 5 * time.Minute
	}
	if s.pub == nil {
		s.pub = events.Nop{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.newID == nil {
		s.newID = utils.NewID
	}
	if s.rules.PhoneRegion == "" {
		s.rules.PhoneRegion = "US"
	}
	return s
}

// Create registers a new user with role "user".
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.User, error) {
	in.normalize()
	if err := s.rules.ValidateCreate(&in); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, s.internal("find user by email failed", err)
	}
	if existing != nil {
		return nil, domain.Duplicate(msgEmailTaken)
	}

	u := &domain.User{
		ID:      s.newID(),
		Name:    in.Name,
		Email:   in.Email,
		Phone:   deref(in.Phone),
		Address: deref(in.Address),
		Role:    domain.RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// a concurrent signup with the same email lands here, not on the check above
		return nil, s.internal("create user failed", err,
			zap.Bool("unique_violation", errors.Is(err, domain.ErrEmailTaken)))
	}
	s.publish(ctx, events.UserCreated, u.ID, nil)
	return u, nil
}

// Login issues a bearer token for the user owning email.
//
// Known limitation: no password or other secret is checked. Knowing a
// registered email is enough to obtain that user's token.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, *domain.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return "", nil, domain.NotFound("User not found")
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, s.internal("find user by email failed", err)
	}
	if u == nil {
		return "", nil, domain.NotFound("User not found")
	}
	tok, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil || tok == "" {
		return "", nil, s.internal("issue token failed", err)
	}
	return tok, u, nil
}

// Get returns any user by id; callers only need to be authenticated.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := cache.GetOrLoadJSON[domain.User](s.cache, ctx, cacheKey(id), s.ttl,
		func(ctx context.Context) (*domain.User, error) {
			return s.repo.FindByID(ctx, id)
		})
	if err != nil {
		return nil, s.internal("find user failed", err)
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

// Update validates in, checks that subject may modify id, then merges the
// present non-empty fields into the stored user.
func (s *Service) Update(ctx context.Context, subject *auth.Claims, id string, in UpdateInput) (*domain.User, error) {
	in.normalize()
	if err := s.rules.ValidateUpdate(&in); err != nil {
		return nil, err
	}
	if !auth.CanModify(subject, id) {
		return nil, domain.Unauthorized("Unauthorized to update this profile.")
	}

	patch := in.Patch()
	if patch.Email != nil {
		other, err := s.repo.FindByEmail(ctx, *patch.Email)
		if err != nil {
			return nil, s.internal("find user by email failed", err)
		}
		if other != nil && other.ID != id {
			return nil, domain.Duplicate(msgEmailTaken)
		}
	}

	u, err := s.repo.UpdateByID(ctx, id, patch)
	if err != nil {
		return nil, s.internal("update user failed", err,
			zap.Bool("unique_violation", errors.Is(err, domain.ErrEmailTaken)))
	}
	if u == nil {
		return nil, domain.NotFound("User not found.")
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
	if !patch.Empty() {
		s.publish(ctx, events.UserUpdated, id, patch.Fields())
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, f domain.ListFilter) ([]domain.User, int64, error) {
	us, total, err := s.repo.List(ctx, f.Normalize())
	if err != nil {
		return nil, 0, s.internal("list users failed", err)
	}
	return us, total, nil
}

func (s *Service) publish(ctx context.Context, kind, id string, fields []string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	ev := events.UserEvent{Type: kind, UserID: id, Fields: fields, At: time.Now().UTC()}
	if err := s.pub.PublishJSON(ctx, kind, ev); err != nil {
		s.log.Warn("publish event failed", zap.String("event", kind), zap.String("user_id", id), zap.Error(err))
	}
}

func (s *Service) internal(msg string, err error, fields ...zap.Field) error {
	s.log.Error(msg, append(fields, zap.Error(err))...)
	return domain.Internal(msg, err)
}

func cacheKey(id string) string { return "user:" + id }
