// Package main mints a bearer token for a user id, signed with the
// server's JWT secret, for use with the trip client's --token flag.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atinyakov/TripSync/internal/auth"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	secret := fs.String("secret", os.Getenv("JWT_SECRET"), "HS256 secret shared with the server")
	user := fs.String("user", "", "user id placed in the token subject")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *secret == "" {
		return errors.New("secret is required (-secret or JWT_SECRET)")
	}
	if *user == "" {
		return errors.New("user is required (-user)")
	}

	token, err := auth.NewJWTAuth(*secret).IssueToken(*user, *ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	fmt.Fprintln(out, token)
	return nil
}
