package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/email"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/metrics"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// MemberService implements member.Service
type MemberService struct {
	repo        member.Repository
	bands       band.Repository
	authz       *Authorizer
	tx          Transactor
	cache       member.SessionCache
	mailer      email.Sender
	frontendURL string
	logger      *logger.Logger
}

// MemberServiceConfig collects the optional collaborators of MemberService.
// A nil Cache resolves every token from the database; a nil Mailer sends no
// invites.
type MemberServiceConfig struct {
	Cache       member.SessionCache
	Mailer      email.Sender
	FrontendURL string
}

// NewMemberService creates a new member service
func NewMemberService(repo member.Repository, bands band.Repository, authz *Authorizer, tx Transactor, cfg MemberServiceConfig, log *logger.Logger) member.Service {
	return &MemberService{
		repo:        repo,
		bands:       bands,
		authz:       authz,
		tx:          tx,
		cache:       cfg.Cache,
		mailer:      cfg.Mailer,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		logger:      log,
	}
}

// List returns the band's members by name. Tokens are only shown to the
// band owner.
func (s *MemberService) List(ctx context.Context, actor auth.Actor, bandID string) ([]*member.Member, error) {
	if _, err := s.authz.Authorize(ctx, actor, bandID, Read); err != nil {
		return []*member.Member{}, quiet(err)
	}

	members, err := s.repo.ListByBand(ctx, bandID)
	if err != nil {
		return nil, err
	}
	if _, isOwner := auth.OwnerID(actor); !isOwner {
		for i, m := range members {
			members[i] = m.Public()
		}
	}
	return members, nil
}

// Get returns a readable member or nil
func (s *MemberService) Get(ctx context.Context, actor auth.Actor, id string) (*member.Member, error) {
	m, err := s.load(ctx, actor, id, Read)
	if err != nil {
		return nil, quiet(err)
	}
	if _, isOwner := auth.OwnerID(actor); !isOwner {
		return m.Public(), nil
	}
	return m, nil
}

func (s *MemberService) load(ctx context.Context, actor auth.Actor, id string, access Access) (*member.Member, error) {
	m, _, err := fetch(ctx, s.authz, actor, access, id, s.repo.GetByID, func(m *member.Member) string { return m.BandID })
	return m, err
}

// Create adds a member with a fresh token and mails the access link
func (s *MemberService) Create(ctx context.Context, actor auth.Actor, bandID string, m *member.Member) (string, error) {
	m.ID = ""
	m.BandID = bandID
	m.Normalize()

	token, err := auth.NewMemberToken()
	if err != nil {
		return "", errors.Internal("Failed to generate access token", err)
	}
	m.AccessToken = token

	var b *band.Band
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.authz.Authorize(ctx, actor, bandID, Write); err != nil {
			return err
		}
		if err := validationError(m.Validate()); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, m); err != nil {
			s.logger.ErrorWithErr(err, "Failed to create member")
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.WithFields(map[string]interface{}{
		"band_id":   bandID,
		"member_id": m.ID,
		"role":      m.Role,
	}).Info("Member created")

	s.invite(ctx, b, m)
	return m.ID, nil
}

// invite mails the access link. Failures are logged; the member exists
// either way and the owner can share the link by hand.
func (s *MemberService) invite(ctx context.Context, b *band.Band, m *member.Member) {
	if s.mailer == nil || m.Email == "" {
		return
	}

	subject, body := email.MemberInvite(b.Name, m.Name, s.AccessLink(m.AccessToken))
	if err := s.mailer.Send(ctx, m.Email, subject, body); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"member_id": m.ID,
		}).WarnWithErr(err, "Failed to send member invite")
	}
}

// AccessLink is the frontend URL that signs a member in with token.
func (s *MemberService) AccessLink(token string) string {
	return s.frontendURL + "/member?token=" + url.QueryEscape(token)
}

// Update applies a name/email/role patch
func (s *MemberService) Update(ctx context.Context, actor auth.Actor, id string, fields patch.Fields) error {
	if err := fields.Validate(member.UpdateSchema); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}
		if fields.Empty() {
			return nil
		}

		m.Apply(fields)
		if err := validationError(m.Validate()); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, m); err != nil {
			s.logger.ErrorWithErr(err, "Failed to update member")
			return err
		}

		s.logger.WithFields(map[string]interface{}{
			"member_id": id,
			"fields":    fields.Keys(),
		}).Info("Member updated")
		return nil
	})
}

// Delete removes a member, which revokes its token
func (s *MemberService) Delete(ctx context.Context, actor auth.Actor, id string) error {
	var token string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}
		token = m.AccessToken
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.evict(ctx, token)
	s.logger.WithFields(map[string]interface{}{
		"member_id": id,
	}).Info("Member deleted")

	return nil
}

// RegenerateToken revokes the current token and returns a new one
func (s *MemberService) RegenerateToken(ctx context.Context, actor auth.Actor, id string) (string, error) {
	token, err := auth.NewMemberToken()
	if err != nil {
		return "", errors.Internal("Failed to generate access token", err)
	}

	var old string
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.load(ctx, actor, id, Write)
		if err != nil {
			return err
		}
		old = m.AccessToken
		return s.repo.UpdateToken(ctx, id, token)
	})
	if err != nil {
		return "", err
	}

	s.evict(ctx, old)
	s.logger.WithFields(map[string]interface{}{
		"member_id": id,
	}).Info("Member token regenerated")

	return token, nil
}

// ResolveSession returns the member holding token and its band. An unknown
// or revoked token resolves to nil without error.
func (s *MemberService) ResolveSession(ctx context.Context, token string) (*member.Session, error) {
	if token == "" {
		return nil, nil
	}

	m, err := s.lookup(ctx, token)
	if err != nil || m == nil {
		return nil, err
	}

	b, err := s.bands.GetByID(ctx, m.BandID)
	if errors.IsNotFound(err) {
		s.evict(ctx, token)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &member.Session{Member: m.Public(), Band: b}, nil
}

// lookup finds the member holding token, consulting the cache first. A
// cached id is only trusted once the stored member still holds the token.
func (s *MemberService) lookup(ctx context.Context, token string) (*member.Member, error) {
	if s.cache != nil {
		id, ok, err := s.cache.Get(ctx, token)
		if err != nil {
			s.logger.WarnWithErr(err, "Member session cache unavailable")
		}
		if ok {
			m, err := s.repo.GetByID(ctx, id)
			if err == nil && auth.TokensEqual(m.AccessToken, token) {
				metrics.RecordMemberLookup("cache", "hit")
				return m, nil
			}
			if err != nil && !errors.IsNotFound(err) {
				return nil, err
			}
			s.evict(ctx, token)
		}
		metrics.RecordMemberLookup("cache", "miss")
	}

	m, err := s.repo.GetByToken(ctx, token)
	if errors.IsNotFound(err) {
		metrics.RecordMemberLookup("db", "miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !auth.TokensEqual(m.AccessToken, token) {
		metrics.RecordMemberLookup("db", "miss")
		return nil, nil
	}
	metrics.RecordMemberLookup("db", "hit")

	if s.cache != nil {
		if err := s.cache.Set(ctx, token, m.ID); err != nil {
			s.logger.WarnWithErr(err, "Failed to cache member session")
		}
	}
	return m, nil
}

func (s *MemberService) evict(ctx context.Context, token string) {
	if s.cache == nil || token == "" {
		return
	}
	if err := s.cache.Delete(ctx, token); err != nil {
		s.logger.WarnWithErr(err, "Failed to evict member session")
	}
}
