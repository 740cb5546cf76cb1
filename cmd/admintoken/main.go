// Command admintoken prints a bearer token for the /admin routes, signed with JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	jwtmw "stock_dashboard/internal/platform/jwt"
)

func main() {
	subject := flag.String("sub", "operator", "token subject")
	role := flag.String("role", jwtmw.RoleAdmin, "token role")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
	if secret == "" {
		slog.Error("JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := jwtmw.NewGenerator(secret, *ttl).GenerateToken(*subject, *role)
	if err != nil {
		slog.Error("failed to generate token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
