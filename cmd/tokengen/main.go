package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"wardenbot/internal/infrastructure/gateway"
	"wardenbot/pkg/config"
)

// tokengen mints a gateway token for a platform adapter client.
func main() {
	clientID := flag.String("client", "", "adapter client id")
	configPath := flag.String("config", "configs/config.yaml", "config file path")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	flag.Parse()

	if *clientID == "" {
		log.Fatal("-client is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	auth := gateway.NewTokenAuthenticator(cfg.Auth.JWTSecret, lifetime)
	token, err := auth.Generate(*clientID)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Println(token)
	fmt.Printf("expires: %s\n", time.Now().Add(lifetime).Format(time.RFC3339))
}
