package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/Makepad-fr/menuadmin/internal/catalog"
	"github.com/Makepad-fr/menuadmin/internal/config"
	"github.com/Makepad-fr/menuadmin/internal/mockapi"
	"github.com/Makepad-fr/menuadmin/internal/session"
	"github.com/Makepad-fr/menuadmin/internal/tui"
	"github.com/Makepad-fr/menuadmin/internal/ui"
)

type RunnerSuite struct {
	suite.Suite
	srv   *mockapi.Server
	ts    *httptest.Server
	store session.FileStore

	stdin          string
	stdout, stderr bytes.Buffer
	screen         []string
}

func (s *RunnerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	ui.SetTheme("mono")
	s.T().Setenv(session.EnvVar, "")
	s.T().Setenv(config.EnvConfig, filepath.Join(s.T().TempDir(), "missing.yaml"))

	admin, err := mockapi.NewAdmin("Ops", "admin@example.com", "hunter2")
	s.Require().NoError(err)
	s.srv, err = mockapi.New(mockapi.Options{
		Seed:   3,
		Size:   12,
		Admin:  admin,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	s.Require().NoError(err)
	s.ts = httptest.NewServer(s.srv.Handler())
	s.store = session.FileStore{Path: filepath.Join(s.T().TempDir(), "credentials.json")}
	s.stdin, s.screen = "", nil
}

func (s *RunnerSuite) TearDownTest() {
	s.ts.Close()
	ui.SetTheme("classic")
}

func (s *RunnerSuite) run(args ...string) int {
	s.stdout.Reset()
	s.stderr.Reset()
	full := append([]string{"--base-url", s.ts.URL + "/api"}, args...)
	return Run(context.Background(), full, Options{
		Stdin:  strings.NewReader(s.stdin),
		Stdout: &s.stdout,
		Stderr: &s.stderr,
		Getenv: func(string) string { return "" },
		Store:  s.store,
		Interactive: func(_ context.Context, views []catalog.View, _ tui.Options) error {
			for _, v := range views {
				s.screen = append(s.screen, v.Name())
			}
			return nil
		},
	})
}

func (s *RunnerSuite) login() {
	s.Require().Equal(0, s.run("auth", "login", "--email", "admin@example.com", "--password", "hunter2"), s.stderr.String())
}

func (s *RunnerSuite) TestUsageErrors() {
	s.Equal(2, s.run())
	s.Equal(2, s.run("frobnicate"))
	s.Contains(s.stderr.String(), "unknown subcommand")
	s.Equal(2, s.run("ls"))
	s.Equal(2, s.run("toggle", "items", "1"))
	s.Equal(2, s.run("ls", "orders"))
	s.Contains(s.stderr.String(), "unknown resource")
	s.Equal(2, s.run("ls", "restaurant-items"))
	s.Contains(s.stderr.String(), "--restaurant")
	s.Equal(2, s.run("auth"))
	s.Equal(0, s.run("help"))
}

func (s *RunnerSuite) TestRequiresLogin() {
	s.Equal(1, s.run("ls", "items"))
	s.Contains(s.stderr.String(), "401")
}

func (s *RunnerSuite) TestLoginFlow() {
	s.Equal(1, s.run("auth", "login", "--email", "admin@example.com", "--password", "wrong"))
	s.Contains(s.stderr.String(), "invalid email or password")

	s.login()
	s.Contains(s.stdout.String(), "logged in as Ops")

	s.Equal(0, s.run("auth", "status"))
	s.Contains(s.stdout.String(), "source: file")

	s.Equal(0, s.run("auth", "whoami"))
	s.Contains(s.stdout.String(), "admin@example.com")
	s.Contains(s.stdout.String(), "admin")

	s.Equal(0, s.run("auth", "logout"))
	s.Equal(0, s.run("auth", "status"))
	s.Contains(s.stdout.String(), "not logged in")
}

func (s *RunnerSuite) TestPastedToken() {
	tok, err := s.srv.Token()
	s.Require().NoError(err)
	s.stdin = "Bearer " + tok + "\n"

	s.Equal(0, s.run("auth", "login"))
	s.Contains(s.stderr.String(), "Paste your token")
	s.Equal(0, s.run("ls", "coupons"))

	s.stdin = "\n"
	s.Equal(2, s.run("auth", "login"))
}

func (s *RunnerSuite) TestList() {
	s.login()
	first := s.srv.Items.List()[0]

	s.Equal(0, s.run("ls", "items"), s.stderr.String())
	out := s.stdout.String()
	s.Contains(out, "Menu items")
	s.Contains(out, first.Name)
	s.Contains(out, "on_homePage")

	s.Equal(0, s.run("ls", "items", "--search", strings.ToUpper(first.Name)))
	s.Contains(s.stdout.String(), first.Name)
	s.Contains(s.stdout.String(), "shown")

	s.Equal(0, s.run("ls", "customers", "--group", "is_blocked"))
	s.Contains(s.stdout.String(), "not is_blocked")
	s.Equal(2, s.run("ls", "customers", "--group", "on_homePage"))

	s.Equal(0, s.run("ls", "legal", "--json"))
	s.Contains(s.stdout.String(), `"title": "Privacy Policy"`)

	r := s.srv.Restaurants.List()[0]
	s.Equal(0, s.run("ls", "restaurant-items", "--restaurant", r.Key()))
	s.Contains(s.stdout.String(), "Restaurant menu")
}

func (s *RunnerSuite) TestToggle() {
	s.login()
	it := s.srv.Items.List()[0]

	s.Equal(0, s.run("toggle", "items", it.Key(), "is_popular"), s.stderr.String())
	got, err := s.srv.Items.Get(it.Key())
	s.Require().NoError(err)
	s.Equal(!it.Popular, got.Popular)

	s.srv.Fail("items", mockapi.OpToggle, http.StatusInternalServerError)
	s.Equal(1, s.run("toggle", "items", it.Key(), "is_popular"))
	s.Contains(s.stderr.String(), "mutation failed")
	after, _ := s.srv.Items.Get(it.Key())
	s.Equal(got, after)
	s.srv.ClearFaults()

	s.Equal(1, s.run("toggle", "items", "999999", "is_popular"))
	s.Contains(s.stderr.String(), "no record")
	s.Equal(2, s.run("toggle", "items", it.Key(), "price"))
}

func (s *RunnerSuite) TestRemove() {
	s.login()
	c := s.srv.Coupons.List()[0]

	s.Equal(0, s.run("rm", "coupons", c.Key()), s.stderr.String())
	_, err := s.srv.Coupons.Get(c.Key())
	s.ErrorIs(err, mockapi.ErrNotFound)

	s.Equal(1, s.run("rm", "coupons", c.Key()))
	s.Equal(1, s.run("rm", "refunds", s.srv.Refunds.List()[0].Key()))
	s.Contains(s.stderr.String(), "no delete endpoint")
}

func (s *RunnerSuite) TestSummary() {
	s.login()
	s.Equal(0, s.run("summary"), s.stderr.String())
	out := s.stdout.String()
	for _, title := range []string{"Menu items", "Restaurants", "Customers", "Coupons", "Refunds", "Legal pages"} {
		s.Contains(out, title)
	}
	s.NotContains(out, "Restaurant menu")

	s.srv.Fail("refunds", mockapi.OpList, http.StatusBadGateway)
	s.Equal(1, s.run("summary"))
	s.Contains(s.stdout.String(), "unavailable")
	s.Contains(s.stdout.String(), "Coupons")
}

func (s *RunnerSuite) TestResources() {
	s.Equal(0, s.run("resources"))
	s.Contains(s.stdout.String(), "restaurant-items")
	s.Contains(s.stdout.String(), "/restaurants/{restaurant}/items")
}

func (s *RunnerSuite) TestInteractiveOpensViews() {
	s.Equal(0, s.run("tui", "coupons", "items"))
	s.Equal([]string{"coupons", "items"}, s.screen)

	s.screen = nil
	s.Equal(0, s.run("tui", "--restaurant", "1"))
	s.Equal("restaurant-items", s.screen[0])
	s.Contains(s.screen, "legal")

	s.Equal(2, s.run("tui", "orders"))
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerSuite))
}
