package services

import (
	"context"
	"testing"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/domain/user"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/repository/postgres"
	"github.com/setlistr/setlistr/internal/testutil"
)

// countingTemplates counts writes that reach the template store.
type countingTemplates struct {
	template.Repository
	updates int
}

func (c *countingTemplates) Update(ctx context.Context, t *template.Template) error {
	c.updates++
	return c.Repository.Update(ctx, t)
}

type fixture struct {
	db *postgres.DB

	users     user.Repository
	bands     band.Repository
	songRepo  song.Repository
	setRepo   setlist.Repository
	tmplRepo  *countingTemplates
	memRepo   member.Repository
	authz     *Authorizer
	log       *logger.Logger
	cache     *testutil.MockSessionCache
	mailer    *testutil.MockMailer
	billing   *testutil.MockBillingProvider
	bandSvc   band.Service
	songSvc   song.Service
	setSvc    setlist.Service
	tmplSvc   template.Service
	memberSvc member.Service
	subSvc    *SubscriptionService

	owner     auth.Owner
	stranger  auth.Owner
	ownerUser *user.User
	band      *band.Band
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.Nop()

	f := &fixture{
		db:       db,
		users:    postgres.NewUserRepository(db),
		bands:    postgres.NewBandRepository(db),
		songRepo: postgres.NewSongRepository(db),
		setRepo:  postgres.NewSetlistRepository(db),
		tmplRepo: &countingTemplates{Repository: postgres.NewTemplateRepository(db)},
		memRepo:  postgres.NewMemberRepository(db),
		log:      log,
		cache:    testutil.NewMockSessionCache(),
		mailer:   &testutil.MockMailer{},
		billing:  &testutil.MockBillingProvider{},
	}
	f.authz = NewAuthorizer(f.bands)

	f.subSvc = NewSubscriptionService(f.users, f.billing, db, config.BillingConfig{TrialDays: 14}, "https://app.test", log)
	f.bandSvc = NewBandService(f.bands, f.authz, log)
	f.songSvc = NewSongService(f.songRepo, f.authz, db, log)
	f.setSvc = NewSetlistService(f.setRepo, f.songRepo, f.authz, db, f.subSvc, log)
	f.tmplSvc = NewTemplateService(f.tmplRepo, f.setRepo, f.songRepo, f.authz, db, log)
	f.memberSvc = NewMemberService(f.memRepo, f.bands, f.authz, db, MemberServiceConfig{
		Cache:       f.cache,
		Mailer:      f.mailer,
		FrontendURL: "https://app.test/",
	}, log)

	f.ownerUser, f.owner = testutil.CreateUser(t, f.users, "owner@example.com")
	_, f.stranger = testutil.CreateUser(t, f.users, "stranger@example.com")
	f.band = testutil.CreateBand(t, f.bands, f.owner.UserID, "The Testers", "the-testers")
	return f
}

func (f *fixture) addSong(t *testing.T, title string) string {
	t.Helper()
	id, err := f.songSvc.Create(context.Background(), f.owner, f.band.ID, &song.Song{
		Title:          title,
		Artist:         "Various",
		VocalIntensity: 3,
		EnergyLevel:    3,
	})
	if err != nil {
		t.Fatalf("Failed to create song: %v", err)
	}
	return id
}

func (f *fixture) addSetlist(t *testing.T, sets ...setlist.SetConfig) string {
	t.Helper()
	id, err := f.setSvc.Create(context.Background(), f.owner, f.band.ID, &setlist.Setlist{
		Name:       "Friday",
		SetsConfig: sets,
	})
	if err != nil {
		t.Fatalf("Failed to create setlist: %v", err)
	}
	return id
}

func (f *fixture) addMember(t *testing.T, name, email string) (*member.Member, string) {
	t.Helper()
	ctx := context.Background()
	id, err := f.memberSvc.Create(ctx, f.owner, f.band.ID, &member.Member{Name: name, Email: email})
	if err != nil {
		t.Fatalf("Failed to create member: %v", err)
	}
	m, err := f.memRepo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("Failed to load member: %v", err)
	}
	return m, m.AccessToken
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if !errors.Is(err, code) {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

func strPtr(s string) *string { return &s }
