// Command ask runs one question through the engine from the terminal.
// Providers are mock-only; set PERPLEXITY_API_KEY to exercise the AI
// handlers. Handy for poking at the pipeline without any infrastructure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/ask-api/internal/engine"
	"github.com/yourorg/ask-api/internal/env"
	"github.com/yourorg/ask-api/internal/property"
	"github.com/yourorg/ask-api/perplexity"
	"github.com/yourorg/ask-api/providers"
)

func main() {
	question := flag.String("q", "", "question to ask (required)")
	address := flag.String("address", "", "street address")
	city := flag.String("city", "", "city")
	state := flag.String("state", "", "state")
	zip := flag.String("zip", "", "zip")
	price := flag.Float64("price", 0, "list price, if known")
	timeout := flag.Duration("timeout", 90*time.Second, "overall timeout")
	flag.Parse()

	if *question == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer logger.Sync()

	eng := &engine.Engine{
		Providers: providers.NewRegistry(providers.Availability{}, nil),
		Log:       logger.Sugar(),
	}
	if key := env.Get("PERPLEXITY_API_KEY", ""); key != "" {
		eng.AI = perplexity.NewClient(key)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out := eng.Answer(ctx, engine.Request{
		Question: *question,
		PropertyContext: &property.Context{
			Address: *address, City: *city, State: *state, Zip: *zip, ListPrice: *price,
		},
	})

	fmt.Println(out.Response.Answer)
	fmt.Println()
	fmt.Printf("confidence: %s  category: %s  %dms\n", out.Response.Confidence, out.Response.Category, out.Response.ResponseTimeMS)
	if len(out.Response.Sources) > 0 {
		fmt.Printf("sources: %s\n", strings.Join(out.Response.Sources, ", "))
	}
}
