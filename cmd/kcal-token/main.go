// Command kcal-token prints a bearer token for a user id, signed with
// AUTH_JWT_SECRET.
package main

import (
	"flag"
	"fmt"
	"log"

	"kcal/internal/auth"
	"kcal/internal/config"
)

func main() {
	userID := flag.String("user", "", "user id to put in the token subject")
	flag.Parse()

	if *userID == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.LoadAuth()
	if err != nil {
		log.Fatal(err)
	}
	if !cfg.Enabled() {
		log.Fatal("AUTH_JWT_SECRET is not set")
	}

	tok, err := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL).Sign(*userID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(tok)
}
