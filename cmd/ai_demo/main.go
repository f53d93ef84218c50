// README: CLI that sends one booking request to Gemini and prints the parsed intent.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"ridepass/internal/ai"
	"ridepass/internal/modules/location"
	"ridepass/internal/modules/schedule"
)

func main() {
	message := flag.String("message", "내일 오전 8시에 집에서 학교까지 가야 해요", "booking request in free text")
	flag.Parse()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	provider, err := ai.NewGeminiProvider(ctx, apiKey)
	if err != nil {
		log.Fatalf("init gemini: %v", err)
	}
	defer provider.Close()

	hints := ai.Hints{CurrentTime: time.Now().Format("2006-01-02 15:04 Monday")}
	for _, l := range location.Defaults() {
		hints.Locations = append(hints.Locations, l.Name)
	}

	fmt.Printf("User: %s\n", strings.TrimSpace(*message))
	intent, err := provider.ParseBookingIntent(ctx, *message, hints)
	if err != nil {
		log.Fatalf("parse intent: %v", err)
	}

	out, _ := json.MarshalIndent(intent, "", "  ")
	fmt.Println(string(out))
	if intent.Intent == ai.IntentBooking {
		fmt.Printf("Suggested drop-off: %s\n", schedule.DefaultDropoffTime(intent.PickupTime))
	}
}
