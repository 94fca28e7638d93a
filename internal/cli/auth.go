package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/Makepad-fr/menuadmin/internal/api"
	"github.com/Makepad-fr/menuadmin/internal/session"
	"github.com/Makepad-fr/menuadmin/internal/ui"
)

const authUsage = "usage: menuadmin auth <login|logout|status|whoami>"

func (r *runner) auth(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usagef(authUsage)
	}
	switch args[0] {
	case "login":
		return r.authLogin(ctx, args[1:])
	case "logout":
		return r.authLogout()
	case "status":
		return r.authStatus()
	case "whoami":
		return r.authWhoAmI()
	}
	return usagef(authUsage)
}

// authLogin signs in with credentials against the login endpoint, or with a
// token pasted on stdin.
func (r *runner) authLogin(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("auth login", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "sign in with this account")
	password := fs.String("password", "", "account password (prompted when empty)")
	token := fs.String("token", "", "use this token instead of signing in")
	if err := fs.Parse(args); err != nil {
		return usagef("auth login: %v", err)
	}

	if *email != "" {
		pw := *password
		if pw == "" {
			var err error
			if pw, err = r.prompt("Password: "); err != nil {
				return fmt.Errorf("read password: %w", err)
			}
		}
		resp, err := r.client.Login(ctx, r.cfg.LoginPath, api.Credentials{Email: *email, Password: pw})
		if err != nil {
			if api.IsStatus(err, http.StatusUnauthorized) {
				return fmt.Errorf("login: invalid email or password")
			}
			return fmt.Errorf("login: %w", err)
		}
		if err := r.sess.Init(resp.Token, nil); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		who := resp.User.Name
		if who == "" {
			who = *email
		}
		r.p.OK("logged in as " + who)
		return nil
	}

	tok := *token
	if tok == "" {
		var err error
		if tok, err = r.prompt("Paste your token: "); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
	}
	if err := r.sess.Init(tok, nil); err != nil {
		if errors.Is(err, session.ErrEmptyToken) {
			return usagef("auth login: empty token")
		}
		return fmt.Errorf("save token: %w", err)
	}
	r.p.OK("logged in")
	return nil
}

func (r *runner) prompt(label string) (string, error) {
	fmt.Fprint(r.opt.Stderr, label)
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *runner) authLogout() error {
	err := r.sess.Teardown()
	if errors.Is(err, session.ErrEnvToken) {
		r.p.OK("token is provided by " + session.EnvVar + " (nothing to delete)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	r.p.OK("logged out")
	return nil
}

func (r *runner) authStatus() error {
	t := ui.Current()
	info := r.sess.Info()
	if info == nil {
		r.p.Println(t.Muted.Render("not logged in"))
		r.p.Println("Run: menuadmin auth login")
		return nil
	}
	r.p.Printf("source: %s\n", info.Source)
	if !info.CreatedAt.IsZero() {
		r.p.Printf("saved: %s\n", info.CreatedAt.UTC().Format(time.RFC3339))
	}
	switch {
	case info.ExpiresAt == nil:
		r.p.Println("expires: (unknown)")
	case info.Expired(time.Now()):
		r.p.Printf("expires: %s %s\n", info.ExpiresAt.UTC().Format(time.RFC3339), t.Error.Render("(expired)"))
	default:
		r.p.Printf("expires: %s\n", info.ExpiresAt.UTC().Format(time.RFC3339))
	}
	r.p.Println("env override: " + session.EnvVar)
	return nil
}

// authWhoAmI decodes the token locally. The signature is not checked.
func (r *runner) authWhoAmI() error {
	info := r.sess.Info()
	if info == nil {
		return usagef("not logged in. Run: menuadmin auth login")
	}
	c, err := session.ParseClaims(info.Token)
	if err != nil {
		r.p.Println("Opaque token (cannot introspect locally).")
		r.p.Println("source: " + info.Source)
		return nil
	}
	lines := []string{ui.Current().Title.Render("Signed in")}
	for _, kv := range [][2]string{
		{"subject", c.Subject},
		{"name", c.Name},
		{"email", c.Email},
		{"role", c.Role},
	} {
		if kv[1] != "" {
			lines = append(lines, fmt.Sprintf("%-8s %s", kv[0], kv[1]))
		}
	}
	if c.ExpiresAt != nil {
		lines = append(lines, fmt.Sprintf("%-8s %s", "expires", c.ExpiresAt.UTC().Format(time.RFC3339)))
	}
	lines = append(lines, fmt.Sprintf("%-8s %s", "source", info.Source))
	r.p.Panel(lines...)
	return nil
}
