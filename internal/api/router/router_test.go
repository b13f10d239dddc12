package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/setlistr/setlistr/internal/api/handlers"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/config"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/validator"
	"github.com/setlistr/setlistr/internal/repository/postgres"
	"github.com/setlistr/setlistr/internal/services"
	"github.com/setlistr/setlistr/internal/testutil"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	mailer  *testutil.MockMailer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			FrontendURL: "http://localhost:5173",
			RateLimit:   1000,
			RateBurst:   1000,
		},
		Auth: config.AuthConfig{
			JWTSecret:          "router-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
			BCryptCost:         4,
		},
		Billing: config.BillingConfig{TrialDays: 14},
	}

	db := testutil.NewTestDB(t)
	log := logger.Nop()
	val := validator.New()
	mailer := &testutil.MockMailer{}

	users := postgres.NewUserRepository(db)
	bands := postgres.NewBandRepository(db)
	songs := postgres.NewSongRepository(db)
	setlists := postgres.NewSetlistRepository(db)
	templates := postgres.NewTemplateRepository(db)
	members := postgres.NewMemberRepository(db)
	authz := services.NewAuthorizer(bands)

	subSvc := services.NewSubscriptionService(users, &testutil.MockBillingProvider{}, db, cfg.Billing, cfg.Server.FrontendURL, log)
	userSvc := services.NewUserService(users, bands, db, cfg.Auth, log)
	bandSvc := services.NewBandService(bands, authz, log)
	songSvc := services.NewSongService(songs, authz, db, log)
	setSvc := services.NewSetlistService(setlists, songs, authz, db, subSvc, log)
	tmplSvc := services.NewTemplateService(templates, setlists, songs, authz, db, log)
	memberSvc := services.NewMemberService(members, bands, authz, db, services.MemberServiceConfig{
		Mailer:      mailer,
		FrontendURL: cfg.Server.FrontendURL,
	}, log)
	storageSvc := services.NewStorageService(&testutil.MockStorageProvider{}, 0, log)

	h := &Handlers{
		Health:        handlers.NewHealthHandler(db.DB, nil, log),
		Auth:          handlers.NewAuthHandler(userSvc, cfg.Auth, log, val),
		Band:          handlers.NewBandHandler(bandSvc, log, val),
		Song:          handlers.NewSongHandler(songSvc, log, val),
		Setlist:       handlers.NewSetlistHandler(setSvc, log, val),
		Template:      handlers.NewTemplateHandler(tmplSvc, log, val),
		Member:        handlers.NewMemberHandler(memberSvc, log, val),
		MemberSession: handlers.NewMemberSessionHandler(memberSvc, bandSvc, songSvc, setSvc, false, log, val),
		Billing:       handlers.NewBillingHandler(subSvc, log),
		Storage:       handlers.NewStorageHandler(storageSvc, log, val),
	}

	return &testAPI{t: t, handler: New(cfg, log, memberSvc, h), mailer: mailer}
}

// do sends a request. opts decorate it, e.g. with credentials.
func (a *testAPI) do(method, path string, body interface{}, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func cookies(cs []*http.Cookie) func(*http.Request) {
	return func(r *http.Request) {
		for _, c := range cs {
			if c.MaxAge >= 0 {
				r.AddCookie(c)
			}
		}
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, data interface{}) envelope {
	t.Helper()

	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body %s", rec.Code, wantStatus, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body %s", err, rec.Body.String())
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v; data %s", err, env.Data)
		}
	}
	return env
}

func (a *testAPI) register(email string) string {
	a.t.Helper()
	var auth struct {
		AccessToken string `json:"accessToken"`
	}
	decode(a.t, a.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": "correct horse",
	}), http.StatusCreated, &auth)
	return auth.AccessToken
}

func (a *testAPI) create(token, path string, body interface{}) string {
	a.t.Helper()
	var created struct {
		ID string `json:"id"`
	}
	decode(a.t, a.do(http.MethodPost, path, body, bearer(token)), http.StatusCreated, &created)
	if created.ID == "" {
		a.t.Fatalf("POST %s returned no id", path)
	}
	return created.ID
}

func TestRouter_Health(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{"/health", "/healthz", "/readyz"} {
		rec := api.do(http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
	if rec := api.do(http.MethodGet, "/metrics", nil); rec.Code != http.StatusOK {
		t.Errorf("GET /metrics = %d", rec.Code)
	}
}

func TestRouter_AnonymousAccess(t *testing.T) {
	api := newTestAPI(t)

	var bands []json.RawMessage
	decode(t, api.do(http.MethodGet, "/api/v1/bands", nil), http.StatusOK, &bands)
	if len(bands) != 0 {
		t.Errorf("anonymous band list = %d entries", len(bands))
	}

	env := decode(t, api.do(http.MethodPost, "/api/v1/bands", map[string]string{"name": "Nope"}), http.StatusUnauthorized, nil)
	if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Errorf("error = %+v", env.Error)
	}

	decode(t, api.do(http.MethodGet, "/api/v1/auth/me", nil), http.StatusUnauthorized, nil)
	decode(t, api.do(http.MethodGet, "/api/v1/templates/missing", nil), http.StatusOK, nil)
}

func TestRouter_AuthFlow(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse",
		"name":     "Ada",
	})
	decode(t, rec, http.StatusCreated, nil)

	var refresh *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.RefreshTokenCookie {
			refresh = c
		}
	}
	if refresh == nil || !refresh.HttpOnly {
		t.Fatalf("refresh cookie = %+v", refresh)
	}

	decode(t, api.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "ada@example.com",
		"password": "correct horse",
	}), http.StatusConflict, nil)

	env := decode(t, api.do(http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email":    "short@example.com",
		"password": "short",
	}), http.StatusBadRequest, nil)
	if env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s", env.Error.Code)
	}

	decode(t, api.do(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong password",
	}), http.StatusUnauthorized, nil)

	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	decode(t, api.do(http.MethodPost, "/api/v1/auth/refresh", nil, func(r *http.Request) { r.AddCookie(refresh) }), http.StatusOK, &tokens)

	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	decode(t, api.do(http.MethodGet, "/api/v1/auth/me", nil, bearer(tokens.AccessToken)), http.StatusOK, &me)
	if me.Email != "ada@example.com" || me.Name != "Ada" {
		t.Errorf("me = %+v", me)
	}
}

func TestRouter_SetlistAndTemplateFlow(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("owner@example.com")

	bandID := api.create(token, "/api/v1/bands", map[string]string{"name": "The Testers"})
	opener := api.create(token, "/api/v1/bands/"+bandID+"/songs", map[string]interface{}{
		"title": "Opener", "vocalIntensity": 2, "energyLevel": 5,
	})
	closer := api.create(token, "/api/v1/bands/"+bandID+"/songs", map[string]interface{}{
		"title": "Closer", "vocalIntensity": 4, "energyLevel": 4,
	})

	setlistID := api.create(token, "/api/v1/bands/"+bandID+"/setlists", map[string]interface{}{
		"name":       "Friday",
		"venue":      "The Hall",
		"date":       "2024-06-07",
		"setsConfig": []map[string]int{{"setIndex": 0, "songsPerSet": 3}},
	})

	decode(t, api.do(http.MethodPut, "/api/v1/setlists/"+setlistID+"/items", map[string]interface{}{
		"items": []map[string]interface{}{
			{"setIndex": 0, "position": 0, "songId": opener},
			{"setIndex": 0, "position": 1, "songId": nil},
			{"setIndex": 0, "position": 2, "songId": closer},
		},
	}, bearer(token)), http.StatusOK, nil)

	var pin struct {
		IsPinned bool `json:"isPinned"`
	}
	decode(t, api.do(http.MethodPost, "/api/v1/setlists/"+setlistID+"/pin", map[string]int{"setIndex": 0, "position": 0}, bearer(token)), http.StatusOK, &pin)
	if !pin.IsPinned {
		t.Fatal("slot 0 not pinned")
	}

	templateID := api.create(token, "/api/v1/setlists/"+setlistID+"/template", map[string]string{"name": "  Friday shape "})

	var tmpl struct {
		Name       string `json:"name"`
		SetsConfig []struct {
			SongsPerSet int `json:"songsPerSet"`
			PinnedSlots []struct {
				Position int     `json:"position"`
				SongID   *string `json:"songId"`
			} `json:"pinnedSlots"`
		} `json:"setsConfig"`
	}
	decode(t, api.do(http.MethodGet, "/api/v1/templates/"+templateID, nil, bearer(token)), http.StatusOK, &tmpl)
	if tmpl.Name != "Friday shape" || len(tmpl.SetsConfig) != 1 {
		t.Fatalf("template = %+v", tmpl)
	}
	pinned := tmpl.SetsConfig[0].PinnedSlots
	if len(pinned) != 1 || pinned[0].Position != 0 || pinned[0].SongID == nil || *pinned[0].SongID != opener {
		t.Errorf("pinned slots = %+v", pinned)
	}

	// setsConfig in a patch is decoded into its concrete type
	decode(t, api.do(http.MethodPatch, "/api/v1/templates/"+templateID, map[string]interface{}{
		"setsConfig": []map[string]interface{}{
			{"setIndex": 0, "songsPerSet": 4, "pinnedSlots": []map[string]interface{}{{"position": 3, "songId": closer}}},
		},
	}, bearer(token)), http.StatusOK, nil)

	env := decode(t, api.do(http.MethodPatch, "/api/v1/templates/"+templateID, map[string]interface{}{
		"setsConfig": "not a list",
	}, bearer(token)), http.StatusBadRequest, nil)
	if env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s", env.Error.Code)
	}

	newSetlistID := api.create(token, "/api/v1/templates/"+templateID+"/setlists", map[string]string{"name": "Saturday"})

	var instance struct {
		Name  string `json:"name"`
		Items []struct {
			Position int     `json:"position"`
			SongID   *string `json:"songId"`
			IsPinned bool    `json:"isPinned"`
		} `json:"items"`
	}
	decode(t, api.do(http.MethodGet, "/api/v1/setlists/"+newSetlistID, nil, bearer(token)), http.StatusOK, &instance)
	if instance.Name != "Saturday" || len(instance.Items) != 4 {
		t.Fatalf("instance = %+v", instance)
	}
	last := instance.Items[3]
	if last.SongID == nil || *last.SongID != closer || !last.IsPinned {
		t.Errorf("slot 3 = %+v", last)
	}

	// another account cannot see or touch any of it
	other := api.register("other@example.com")
	env = decode(t, api.do(http.MethodGet, "/api/v1/templates/"+templateID, nil, bearer(other)), http.StatusOK, nil)
	if string(env.Data) != "null" {
		t.Errorf("foreign template visible: %s", env.Data)
	}
	env = decode(t, api.do(http.MethodDelete, "/api/v1/templates/"+templateID, nil, bearer(other)), http.StatusForbidden, nil)
	if env.Error == nil || env.Error.Code != "FORBIDDEN" {
		t.Errorf("foreign delete error = %+v", env.Error)
	}

	decode(t, api.do(http.MethodDelete, "/api/v1/templates/"+templateID, nil, bearer(token)), http.StatusOK, nil)
	decode(t, api.do(http.MethodDelete, "/api/v1/templates/"+templateID, nil, bearer(token)), http.StatusNotFound, nil)
}

func TestRouter_ExportRequiresSubscription(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("owner@example.com")

	bandID := api.create(token, "/api/v1/bands", map[string]string{"name": "Printers"})
	setlistID := api.create(token, "/api/v1/bands/"+bandID+"/setlists", map[string]interface{}{
		"name":       "Friday Night",
		"setsConfig": []map[string]int{{"setIndex": 0, "songsPerSet": 2}},
	})

	path := "/api/v1/setlists/" + setlistID + "/export.pdf"
	decode(t, api.do(http.MethodGet, path, nil, bearer(token)), http.StatusPaymentRequired, nil)

	decode(t, api.do(http.MethodPost, "/api/v1/subscription/trial", nil, bearer(token)), http.StatusOK, nil)

	rec := api.do(http.MethodGet, path, nil, bearer(token))
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d; body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, ".pdf") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestRouter_MemberSession(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("owner@example.com")
	bandID := api.create(token, "/api/v1/bands", map[string]string{"name": "The Testers"})
	api.create(token, "/api/v1/bands/"+bandID+"/songs", map[string]interface{}{
		"title": "Opener", "vocalIntensity": 2, "energyLevel": 5,
	})

	var m struct {
		ID          string `json:"id"`
		AccessToken string `json:"accessToken"`
	}
	decode(t, api.do(http.MethodPost, "/api/v1/bands/"+bandID+"/members", map[string]string{
		"name":  "Roadie",
		"email": "roadie@example.com",
	}, bearer(token)), http.StatusCreated, &m)
	if m.AccessToken == "" {
		t.Fatal("owner did not receive the member token")
	}
	if len(api.mailer.Sent) != 1 {
		t.Errorf("invites sent = %d", len(api.mailer.Sent))
	}

	decode(t, api.do(http.MethodPost, "/api/v1/member/session", map[string]string{"token": "bogus"}), http.StatusUnauthorized, nil)

	rec := api.do(http.MethodPost, "/api/v1/member/session", map[string]string{"token": m.AccessToken})
	decode(t, rec, http.StatusOK, nil)
	session := rec.Result().Cookies()

	byName := map[string]*http.Cookie{}
	for _, c := range session {
		byName[c.Name] = c
	}
	if c := byName[middleware.MemberSessionCookie]; c == nil || c.Value != "1" || !c.HttpOnly {
		t.Errorf("member_session cookie = %+v", c)
	}
	if c := byName[middleware.MemberTokenCookie]; c == nil || c.Value != m.AccessToken || c.HttpOnly {
		t.Errorf("member_token cookie = %+v", c)
	}

	var view struct {
		Band struct {
			ID string `json:"id"`
		} `json:"band"`
		Member struct {
			AccessToken string `json:"accessToken"`
		} `json:"member"`
		Songs []json.RawMessage `json:"songs"`
	}
	decode(t, api.do(http.MethodGet, "/api/v1/member/band", nil, cookies(session)), http.StatusOK, &view)
	if view.Band.ID != bandID || len(view.Songs) != 1 || view.Member.AccessToken != "" {
		t.Errorf("member view = %+v", view)
	}

	// members read, never write
	decode(t, api.do(http.MethodPost, "/api/v1/bands/"+bandID+"/templates", map[string]interface{}{
		"name":       "Sneaky",
		"setsConfig": []map[string]int{{"setIndex": 0, "songsPerSet": 1}},
	}, cookies(session)), http.StatusForbidden, nil)

	decode(t, api.do(http.MethodDelete, "/api/v1/members/"+m.ID, nil, bearer(token)), http.StatusOK, nil)

	rec = api.do(http.MethodGet, "/api/v1/member/session", nil, cookies(session))
	env := decode(t, rec, http.StatusOK, nil)
	if string(env.Data) != "null" {
		t.Errorf("revoked session = %s", env.Data)
	}
	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared != 2 {
		t.Errorf("cleared cookies = %d, want 2", cleared)
	}

	decode(t, api.do(http.MethodGet, "/api/v1/member/band", nil, cookies(session)), http.StatusUnauthorized, nil)
}

func TestRouter_StorageAndWebhook(t *testing.T) {
	api := newTestAPI(t)
	token := api.register("owner@example.com")

	var ticket struct {
		UploadURL string `json:"uploadUrl"`
		StorageID string `json:"storageId"`
	}
	decode(t, api.do(http.MethodPost, "/api/v1/storage/upload-url", nil, bearer(token)), http.StatusOK, &ticket)
	if ticket.StorageID == "" || ticket.UploadURL == "" {
		t.Fatalf("ticket = %+v", ticket)
	}

	var url *string
	decode(t, api.do(http.MethodGet, "/api/v1/storage/"+ticket.StorageID, nil, bearer(token)), http.StatusOK, &url)
	if url == nil {
		t.Error("no URL for a valid id")
	}

	var urls map[string]*string
	decode(t, api.do(http.MethodPost, "/api/v1/storage/urls", map[string][]string{
		"storageIds": {ticket.StorageID, "not-an-id"},
	}, bearer(token)), http.StatusOK, &urls)
	if urls[ticket.StorageID] == nil || urls["not-an-id"] != nil {
		t.Errorf("urls = %v", urls)
	}

	decode(t, api.do(http.MethodPost, "/api/v1/storage/upload-url", nil), http.StatusUnauthorized, nil)

	rec := api.do(http.MethodPost, "/api/v1/webhooks/stripe", map[string]string{"type": "ping"}, func(r *http.Request) {
		r.Header.Set("Stripe-Signature", "t=1,v1=abc")
	})
	decode(t, rec, http.StatusOK, nil)
}
