// tokengen mints HS256 bearer tokens for local development and testing.
//
// Usage:
//
//	tokengen -sub admin001 -name admin_user -secret dev-secret -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	sub := flag.String("sub", "", "subject claim (external user id), required")
	name := flag.String("name", "", "name claim (display name), optional")
	issuer := flag.String("iss", "tokengen", "issuer claim")
	secret := flag.String("secret", "dev-secret", "HS256 signing key")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *sub == "" {
		fmt.Fprintln(os.Stderr, "tokengen: -sub is required")
		flag.Usage()
		os.Exit(2)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": *sub,
		"iss": *issuer,
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	}
	if *name != "" {
		claims["name"] = *name
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(*secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "tokengen: sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
