package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsdesk/toolbox-admin/internal/api/session"
	"github.com/opsdesk/toolbox-admin/internal/core/domain"
	"github.com/opsdesk/toolbox-admin/internal/core/ports"
	"github.com/opsdesk/toolbox-admin/internal/core/service"
	"github.com/opsdesk/toolbox-admin/internal/infrastructure/db/memory"
)

func TestMain(m *testing.M) {
	domain.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// failingStore runs every transaction but reports err instead of committing.
type failingStore struct {
	ports.Store
	err error
}

func (f *failingStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Store) error) error {
	return f.Store.WithinTx(ctx, func(ctx context.Context, tx ports.Store) error {
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return f.err
	})
}

type testApp struct {
	srv   *httptest.Server
	store *memory.Store
}

func newTestApp(t *testing.T) *testApp {
	return newTestAppWithGroups(t, nil)
}

// newTestAppWithGroups builds the router over a memory store. groupStore, when
// set, backs the group service only.
func newTestAppWithGroups(t *testing.T, groupStore ports.Store) *testApp {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	sessions := memory.NewSessionStore()
	if groupStore == nil {
		groupStore = store
	}

	e := NewRouter(Dependencies{
		Auth:         service.NewAuthService(store, log),
		Groups:       service.NewGroupService(groupStore, log),
		Roles:        service.NewRoleService(store, log),
		Tools:        service.NewToolService(store, log),
		Users:        service.NewUserService(store, log),
		Sessions:     session.NewManager(sessions, session.Options{Secret: "router-test-secret-0123456789abcdef", TTL: time.Hour}, log),
		Store:        store,
		SessionStore: sessions,
		Log:          log,
		Registry:     prometheus.NewRegistry(),
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, store: store}
}

func (a *testApp) seedUser(t *testing.T, email, name, password string, admin bool) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: name, IsAdmin: admin, IsValid: admin}
	if err := u.SetPassword(password); err != nil {
		t.Fatal(err)
	}
	if err := a.store.Users().Insert(context.Background(), u); err != nil {
		t.Fatal(err)
	}
	return u
}

type browser struct {
	t    *testing.T
	base string
	c    *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{
		t:    t,
		base: a.srv.URL,
		c: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func (b *browser) do(req *http.Request) page {
	b.t.Helper()
	resp, err := b.c.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return page{status: resp.StatusCode, location: resp.Header.Get("Location"), body: string(body)}
}

func (b *browser) get(path string) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	if err != nil {
		b.t.Fatal(err)
	}
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		b.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) signIn(email, password string) page {
	b.t.Helper()
	return b.post("/signin", url.Values{"email": {email}, "password": {password}})
}

func expectStatus(t *testing.T, p page, want int) {
	t.Helper()
	if p.status != want {
		t.Fatalf("expected %d, got %d (location %q)\n%s", want, p.status, p.location, p.body)
	}
}

func expectRedirect(t *testing.T, p page, want string) {
	t.Helper()
	expectStatus(t, p, http.StatusFound)
	if p.location != want {
		t.Fatalf("expected redirect to %q, got %q", want, p.location)
	}
}

func TestSignUpThenSignIn(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	p := b.post("/signup", url.Values{
		"email":            {"a@x.com"},
		"name":             {"a"},
		"password":         {"pw1"},
		"confirm_password": {"pw1"},
	})
	expectRedirect(t, p, "/signin")

	p = b.get("/signin")
	expectStatus(t, p, http.StatusOK)
	if !strings.Contains(p.body, "You have successfully signed up! You may now sign in.") {
		t.Fatalf("expected sign-up flash:\n%s", p.body)
	}

	expectRedirect(t, b.signIn("a@x.com", "pw1"), "/home")
	expectStatus(t, b.get("/home"), http.StatusOK)

	other := app.browser(t)
	p = other.signIn("a@x.com", "wrong")
	expectStatus(t, p, http.StatusOK)
	if !strings.Contains(p.body, "Invalid email or password.") {
		t.Fatalf("expected invalid credentials message:\n%s", p.body)
	}
	expectRedirect(t, other.get("/home"), "/signin?next=%2Fhome")
}

func TestSignUp_Validation(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	p := b.post("/signup", url.Values{
		"email":            {"not-an-email"},
		"name":             {"a"},
		"password":         {"pw1"},
		"confirm_password": {"pw2"},
	})
	expectStatus(t, p, http.StatusUnprocessableEntity)
	for _, want := range []string{"email must be a valid email", "confirm password must match password"} {
		if !strings.Contains(p.body, want) {
			t.Errorf("expected %q in body", want)
		}
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "taken@x.io", "taken", "pw", false)
	b := app.browser(t)

	p := b.post("/signup", url.Values{
		"email":            {"Taken@x.io"},
		"name":             {"fresh"},
		"password":         {"pw"},
		"confirm_password": {"pw"},
	})
	expectStatus(t, p, http.StatusConflict)
	if !strings.Contains(p.body, "User with this email already exists.") {
		t.Fatalf("expected conflict flash:\n%s", p.body)
	}
}

func TestSignIn_BlockedUser(t *testing.T) {
	app := newTestApp(t)
	u := app.seedUser(t, "blocked@x.io", "blocked", "pw", false)
	u.IsBlocked = true
	if err := app.store.Users().Update(context.Background(), u); err != nil {
		t.Fatal(err)
	}

	p := app.browser(t).signIn("blocked@x.io", "pw")
	expectStatus(t, p, http.StatusOK)
	if !strings.Contains(p.body, "Invalid email or password.") {
		t.Fatal("blocked users must get the generic message")
	}
}

func TestUnauthenticated_RedirectsWithNext(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)

	p := b.get("/admin/groups")
	expectRedirect(t, p, "/signin?next=%2Fadmin%2Fgroups")

	p = b.post(p.location, url.Values{"email": {"root@x.io"}, "password": {"rootpw"}})
	expectRedirect(t, p, "/admin/groups")
	expectStatus(t, b.get("/admin/groups"), http.StatusOK)
}

func TestSignIn_IgnoresForeignNext(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)

	p := b.post("/signin?next="+url.QueryEscape("//evil.example/"), url.Values{"email": {"root@x.io"}, "password": {"rootpw"}})
	expectRedirect(t, p, "/admin/home")
}

func TestNonAdmin_Forbidden(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "bob@x.io", "bob", "bobpw", false)
	b := app.browser(t)
	expectRedirect(t, b.signIn("bob@x.io", "bobpw"), "/home")

	for _, path := range []string{"/admin/home", "/admin/groups", "/admin/users", "/admin/tools/add"} {
		expectStatus(t, b.get(path), http.StatusForbidden)
	}
	expectStatus(t, b.post("/admin/groups/add", url.Values{"name": {"x"}, "description": {"y"}}), http.StatusForbidden)

	groups, _ := app.store.Groups().List(context.Background())
	if len(groups) != 0 {
		t.Fatal("forbidden request must not mutate the store")
	}
}

func TestGroups_TesterGroupUniqueness(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	form := url.Values{"name": {"Tester Group"}, "description": {"Testing"}}
	expectRedirect(t, b.post("/admin/groups/add", form), "/admin/groups")

	p := b.get("/admin/groups")
	if strings.Count(p.body, "Tester Group") != 1 || !strings.Contains(p.body, "You have successfully added a new group.") {
		t.Fatalf("unexpected list page:\n%s", p.body)
	}

	p = b.post("/admin/groups/add", form)
	expectStatus(t, p, http.StatusConflict)
	if !strings.Contains(p.body, "Group with this name already exists.") {
		t.Fatalf("expected conflict flash:\n%s", p.body)
	}

	groups, _ := app.store.Groups().List(context.Background())
	if len(groups) != 1 {
		t.Fatalf("expected exactly one group, got %d", len(groups))
	}
}

func TestTools_Lifecycle(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	p := b.post("/admin/tools/add", url.Values{"name": {"wiki"}, "description": {"Docs"}})
	expectStatus(t, p, http.StatusUnprocessableEntity)
	if !strings.Contains(p.body, "target is required") {
		t.Fatalf("expected inline validation message:\n%s", p.body)
	}

	expectRedirect(t, b.post("/admin/tools/add", url.Values{"name": {"wiki"}, "description": {"Docs"}, "target": {"https://wiki"}}), "/admin/tools")
	tools, _ := app.store.Tools().List(context.Background())
	if len(tools) != 1 {
		t.Fatalf("expected one tool, got %d", len(tools))
	}
	id := strconv.FormatInt(tools[0].ID, 10)

	p = b.get("/admin/tools/edit/" + id)
	expectStatus(t, p, http.StatusOK)
	if !strings.Contains(p.body, `value="https://wiki"`) {
		t.Fatal("edit form must be pre-populated")
	}
	expectRedirect(t, b.post("/admin/tools/edit/"+id, url.Values{"name": {"wiki"}, "description": {"Docs"}, "target": {"https://wiki.internal"}}), "/admin/tools")

	expectStatus(t, b.get("/admin/tools/delete/"+id), http.StatusOK)
	expectRedirect(t, b.post("/admin/tools/delete/"+id, url.Values{}), "/admin/tools")

	expectStatus(t, b.get("/admin/tools/edit/"+id), http.StatusNotFound)
	expectStatus(t, b.get("/admin/tools/delete/"+id), http.StatusNotFound)
	expectStatus(t, b.get("/admin/tools/edit/abc"), http.StatusNotFound)
}

func TestRoles_DeleteDetachesHolders(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	ctx := context.Background()

	role := &domain.Role{Name: "dev", Description: "Developers"}
	if err := app.store.Roles().Insert(ctx, role); err != nil {
		t.Fatal(err)
	}
	holder := app.seedUser(t, "dev@x.io", "dev", "pw", false)
	holder.RoleID = &role.ID
	if err := app.store.Users().Update(ctx, holder); err != nil {
		t.Fatal(err)
	}

	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")
	expectRedirect(t, b.post("/admin/roles/delete/"+strconv.FormatInt(role.ID, 10), url.Values{}), "/admin/roles")

	got, err := app.store.Users().FindByID(ctx, holder.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.RoleID != nil {
		t.Fatal("expected role to be cleared on its former holder")
	}
}

func TestUsers_AdminSelfDeleteForbidden(t *testing.T) {
	app := newTestApp(t)
	root := app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	path := "/admin/users/delete/" + strconv.FormatInt(root.ID, 10)
	expectStatus(t, b.get(path), http.StatusForbidden)
	expectStatus(t, b.post(path, url.Values{}), http.StatusForbidden)

	if _, err := app.store.Users().FindByID(context.Background(), root.ID); err != nil {
		t.Fatalf("admin account must remain: %v", err)
	}
}

func TestUsers_AssignAndDelete(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	other := app.seedUser(t, "other@x.io", "other", "pw", true)
	bob := app.seedUser(t, "bob@x.io", "bob", "pw", false)

	g := &domain.Group{Name: "ops", Description: "Ops"}
	if err := app.store.Groups().Insert(ctx, g); err != nil {
		t.Fatal(err)
	}

	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	bobID := strconv.FormatInt(bob.ID, 10)
	expectStatus(t, b.get("/admin/users/assign/"+bobID), http.StatusOK)
	expectRedirect(t, b.post("/admin/users/assign/"+bobID, url.Values{"group_id": {strconv.FormatInt(g.ID, 10)}, "role_id": {""}}), "/admin/users")

	got, _ := app.store.Users().FindByID(ctx, bob.ID)
	if got.GroupID == nil || *got.GroupID != g.ID || got.RoleID != nil {
		t.Fatalf("unexpected assignment: %+v", got)
	}

	p := b.post("/admin/users/assign/"+bobID, url.Values{"group_id": {"999"}})
	expectStatus(t, p, http.StatusUnprocessableEntity)
	if !strings.Contains(p.body, "selected group does not exist") {
		t.Fatalf("expected validation message:\n%s", p.body)
	}

	expectStatus(t, b.get("/admin/users/assign/"+strconv.FormatInt(other.ID, 10)), http.StatusForbidden)

	expectRedirect(t, b.post("/admin/users/delete/"+bobID, url.Values{}), "/admin/users")
	if _, err := app.store.Users().FindByID(ctx, bob.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected bob to be deleted, got %v", err)
	}
}

func TestUsers_AdminCannotDemoteSelf(t *testing.T) {
	app := newTestApp(t)
	root := app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	p := b.post("/admin/users/edit/"+strconv.FormatInt(root.ID, 10), url.Values{
		"email":    {"root@x.io"},
		"name":     {"root"},
		"is_valid": {"true"},
	})
	expectStatus(t, p, http.StatusForbidden)

	got, _ := app.store.Users().FindByID(context.Background(), root.ID)
	if !got.IsAdmin {
		t.Fatal("admin flag must be kept")
	}
}

func TestGroups_PersistenceFailureFlashes(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), err: errors.New("disk full")}
	app := newTestAppWithGroups(t, store)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	expectRedirect(t, b.post("/admin/groups/add", url.Values{"name": {"ops"}, "description": {"Ops"}}), "/admin/groups")

	p := b.get("/admin/groups")
	if !strings.Contains(p.body, "Failed to add the group.") {
		t.Fatalf("expected failure flash:\n%s", p.body)
	}
	groups, _ := store.Groups().List(context.Background())
	if len(groups) != 0 {
		t.Fatal("failed transaction must leave no row")
	}
}

func TestSignOut(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "bob@x.io", "bob", "bobpw", false)
	b := app.browser(t)
	b.signIn("bob@x.io", "bobpw")

	expectRedirect(t, b.get("/signout"), "/")
	p := b.get("/")
	if !strings.Contains(p.body, "You successfully signed out.") {
		t.Fatalf("expected sign-out flash:\n%s", p.body)
	}
	expectRedirect(t, b.get("/home"), "/signin?next=%2Fhome")
	expectRedirect(t, b.get("/signout"), "/signin?next=%2Fsignout")
}

func TestHealthAndNotFound(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	expectStatus(t, b.get("/health"), http.StatusOK)
	expectStatus(t, b.get("/health/ready"), http.StatusOK)
	expectStatus(t, b.get("/metrics"), http.StatusOK)

	p := b.get("/does-not-exist")
	expectStatus(t, p, http.StatusNotFound)
	if !strings.Contains(p.body, "404 Not Found") {
		t.Fatalf("expected html error page:\n%s", p.body)
	}
}

func TestSignUp_PasswordTooLong(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	pw := strings.Repeat("p", domain.MaxPasswordBytes+1)
	p := b.post("/signup", url.Values{
		"email":            {"long@x.io"},
		"name":             {"long"},
		"password":         {pw},
		"confirm_password": {pw},
	})
	expectStatus(t, p, http.StatusUnprocessableEntity)
	if !strings.Contains(p.body, "password must be at most 72 bytes") {
		t.Fatalf("expected inline password message:\n%s", p.body)
	}
	users, _ := app.store.Users().List(context.Background())
	if len(users) != 0 {
		t.Fatal("no account must be created")
	}
}

func TestUsers_BlockedUserLosesSession(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	bob := app.seedUser(t, "bob@x.io", "bob", "bobpw", false)

	bobBrowser := app.browser(t)
	expectRedirect(t, bobBrowser.signIn("bob@x.io", "bobpw"), "/home")
	expectStatus(t, bobBrowser.get("/home"), http.StatusOK)

	admin := app.browser(t)
	admin.signIn("root@x.io", "rootpw")
	expectRedirect(t, admin.post("/admin/users/edit/"+strconv.FormatInt(bob.ID, 10), url.Values{
		"email":      {"bob@x.io"},
		"name":       {"bob"},
		"is_blocked": {"true"},
	}), "/admin/users")

	expectRedirect(t, bobBrowser.get("/home"), "/signin?next=%2Fhome")
	expectRedirect(t, bobBrowser.get("/home"), "/signin?next=%2Fhome")
}

func TestUsers_AssignRejectsMalformedIDs(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	bob := app.seedUser(t, "bob@x.io", "bob", "pw", false)

	g := &domain.Group{Name: "ops", Description: "Ops"}
	if err := app.store.Groups().Insert(ctx, g); err != nil {
		t.Fatal(err)
	}
	bob.GroupID = &g.ID
	if err := app.store.Users().Update(ctx, bob); err != nil {
		t.Fatal(err)
	}

	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")
	path := "/admin/users/assign/" + strconv.FormatInt(bob.ID, 10)

	for _, raw := range []string{"1.5", "-3", "99999999999999999999", "0"} {
		p := b.post(path, url.Values{"group_id": {raw}, "role_id": {""}})
		expectStatus(t, p, http.StatusUnprocessableEntity)

		got, _ := app.store.Users().FindByID(ctx, bob.ID)
		if got.GroupID == nil || *got.GroupID != g.ID {
			t.Fatalf("group_id=%q must leave the assignment unchanged, got %v", raw, got.GroupID)
		}
	}
}

func TestTools_RejectsNonHTTPTarget(t *testing.T) {
	app := newTestApp(t)
	app.seedUser(t, "root@x.io", "root", "rootpw", true)
	b := app.browser(t)
	b.signIn("root@x.io", "rootpw")

	p := b.post("/admin/tools/add", url.Values{"name": {"evil"}, "description": {"x"}, "target": {"javascript:alert(1)"}})
	expectStatus(t, p, http.StatusUnprocessableEntity)
	if !strings.Contains(p.body, "target must be an http or https URL") {
		t.Fatalf("expected inline target message:\n%s", p.body)
	}
	tools, _ := app.store.Tools().List(context.Background())
	if len(tools) != 0 {
		t.Fatal("tool must not be created")
	}
}
