package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"travel-booking-service/internal/infrastructure/oauth"
	"travel-booking-service/pkg/logger"
)

// Prints a Gmail refresh token with the send scope for GMAIL_REFRESH_TOKEN.
func main() {
	_ = godotenv.Load()

	clientID := flag.String("client-id", os.Getenv("GMAIL_CLIENT_ID"), "OAuth client id")
	clientSecret := flag.String("client-secret", os.Getenv("GMAIL_CLIENT_SECRET"), "OAuth client secret")
	addr := flag.String("addr", "localhost:8090", "callback listen address")
	flag.Parse()

	if *clientID == "" || *clientSecret == "" {
		log.Fatal("client id and secret are required (flags or GMAIL_CLIENT_ID / GMAIL_CLIENT_SECRET)")
	}

	gmailOAuth := oauth.NewGmailOAuth(*clientID, *clientSecret, "", "http://"+*addr+"/oauth2callback", logger.NewLogger())

	// Create a random state
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to generate state: %v", err)
	}
	state := hex.EncodeToString(buf)

	// Start an HTTP server to handle the OAuth callback
	http.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(context.Background(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Printf("\nRefresh Token: %s\n\n", token.RefreshToken)
		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		os.Exit(0)
	})

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL(state))

	log.Fatal(http.ListenAndServe(*addr, nil))
}
