package main

// sso-token mints a signed identity token for exercising the SSO login
// endpoint against a local or staging deployment. The secret must match
// the bridge's SSO_JWT_SECRET (or SSO_SHARED_SECRET).

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1) //nolint:forbidigo // CLI must exit with failure status on error
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sso-token", flag.ContinueOnError)
	email := fs.String("email", "", "email claim (required)")
	first := fs.String("first", "", "firstname claim")
	last := fs.String("last", "", "lastname claim")
	name := fs.String("name", "", "full name claim, used when first/last are absent")
	secret := fs.String("secret", "", "signing secret (defaults to SSO_JWT_SECRET, then SSO_SHARED_SECRET)")
	ttl := fs.Duration("ttl", 5*time.Minute, "token lifetime")
	baseURL := fs.String("base-url", "", "when set, print a ready login URL instead of the bare token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	key := *secret
	if key == "" {
		key = os.Getenv("SSO_JWT_SECRET")
	}
	if key == "" {
		key = os.Getenv("SSO_SHARED_SECRET")
	}
	if key == "" {
		return fmt.Errorf("no signing secret: pass -secret or set SSO_JWT_SECRET")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"email": *email,
		"iat":   now.Unix(),
		"exp":   now.Add(*ttl).Unix(),
	}
	if *first != "" {
		claims["firstname"] = *first
	}
	if *last != "" {
		claims["lastname"] = *last
	}
	if *name != "" {
		claims["name"] = *name
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	if *baseURL != "" {
		fmt.Printf("%s/sso-login?token=%s\n", *baseURL, token)
		return nil
	}
	fmt.Println(token)
	return nil
}
