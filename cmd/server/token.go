package main

import (
	"flag"
	"fmt"
	"io"
	"time"

	"codeberg.org/edtech/portal/internal/auth"
	"codeberg.org/edtech/portal/internal/routes"
)

// issues a session token signed with the server secret, for local testing
// against a running frontend without the backend
func runToken(args []string, secret string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)

	subject := fs.String("sub", "dev-user", "token subject (user id)")
	role := fs.String("role", string(routes.RoleStudent), "student, teacher or admin")
	email := fs.String("email", "", "email claim")
	ttl := fs.Duration("ttl", 15*time.Minute, "token lifetime")

	if err := fs.Parse(args); err != nil {
		return err
	}

	r := routes.Role(*role)
	if !r.Valid() {
		return fmt.Errorf("unknown role %q", *role)
	}

	token, err := auth.NewVerifier(secret, auth.Issuer).Issue(*subject, r, *email, *ttl)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, token) //nolint:errcheck
	return nil
}
