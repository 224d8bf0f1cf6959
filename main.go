package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aiteamhq/billsync/internal/config"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Signs a Stripe event fixture so it can be replayed against a local server:
//
//	go run . -file testdata/invoice_paid.json | sh
func main() {
	file := flag.String("file", "", "path to a Stripe event JSON fixture")
	secret := flag.String("secret", "", "webhook signing secret (defaults to stripe.webhook_secret from config)")
	url := flag.String("url", "http://localhost:8080/webhooks/stripe", "endpoint printed in the curl command")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}

	payload, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Unable to read fixture: %v", err)
	}

	if *secret == "" {
		cfg, err := config.NewConfig()
		if err != nil {
			log.Fatalf("Unable to load config: %v", err)
		}
		*secret = cfg.Stripe.WebhookSecret
	}
	if *secret == "" {
		log.Fatal("no webhook secret configured")
	}

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    *secret,
		Timestamp: time.Now(),
	})

	fmt.Printf("curl -sS -X POST %s -H 'Content-Type: application/json' -H 'Stripe-Signature: %s' --data-binary @%s\n",
		*url, signed.Header, *file)
}
