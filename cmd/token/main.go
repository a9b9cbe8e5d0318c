// Command token prints a signed access token for local development.
// Sessions are issued by an external provider in production; this tool
// signs with JWT_SECRET so the API can be exercised with curl.
//
//	go run ./cmd/token -user 3 -role customer
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/iliyamo/waste-pickup-service/internal/model"
	"github.com/iliyamo/waste-pickup-service/internal/utils"
)

func main() {
	_ = godotenv.Load()

	userID := flag.Uint64("user", 0, "user id placed in the sub claim")
	roleArg := flag.String("role", "customer", "role name or number (customer, collector, super_admin, admin)")
	ttl := flag.Int("ttl", 60, "lifetime in minutes")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}
	if *userID == 0 {
		fmt.Fprintln(os.Stderr, "-user is required")
		os.Exit(2)
	}
	role, ok := model.ParseRole(*roleArg)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *roleArg)
		os.Exit(2)
	}

	tok, err := utils.NewAccessToken(secret, *userID, role.Name(), *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
