// Command cardscout-cli answers a single "which card should I use" query
// against the built-in registry and prints the ranked result. Useful for
// trying out the pipeline without running the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cardscout/cardscout-go/internal/catalog"
	"github.com/cardscout/cardscout-go/internal/domain"
	"github.com/cardscout/cardscout-go/internal/infra/cache"
	"github.com/cardscout/cardscout-go/internal/infra/observability"
	"github.com/cardscout/cardscout-go/internal/infra/source"
	"github.com/cardscout/cardscout-go/internal/normalize"
	"github.com/cardscout/cardscout-go/internal/service"
	"github.com/cardscout/cardscout-go/internal/valuation"
)

func main() {
	maxResults := flag.Int("max", 5, "maximum number of cards to show")
	spend := flag.Float64("spend", 0, "expected spend in dollars (0 = unknown)")
	business := flag.Bool("business", false, "include business cards")
	flag.Parse()

	query := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(query) == "" {
		fmt.Fprintln(os.Stderr, "usage: cardscout-cli [flags] <merchant or category>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx := context.Background()
	logger := observability.NewLogger("error")
	defer logger.Sync()

	registry := source.NewRegistry()
	cards, err := registry.FetchCards(ctx)
	if err != nil {
		fatal(err)
	}
	rules, err := registry.FetchRules(ctx)
	if err != nil {
		fatal(err)
	}

	snap, err := catalog.NewSnapshot(cards, rules)
	if err != nil {
		fatal(err)
	}
	store := catalog.NewStore()
	store.Replace(snap)

	recommender := service.NewRecommender(
		normalize.MustDefault(),
		valuation.MustDefault(),
		store,
		cache.New[*domain.ComputedRecommendation](time.Minute),
		observability.NewMetrics(),
		logger,
		*maxResults,
	)

	rec, err := recommender.Resolve(ctx, query, domain.ResolveOptions{
		MaxResults:      *maxResults,
		IncludeBusiness: *business,
		SpendingAmount:  *spend,
	})
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Query: %s\n", rec.MerchantQuery)
	fmt.Printf("Categories: %s\n\n", strings.Join(rec.ResolvedCategories, ", "))
	if len(rec.CandidateCards) == 0 {
		fmt.Println(rec.Explanation)
		return
	}
	for i, c := range rec.CandidateCards {
		fmt.Printf("%d. %s (%s) - %.2f%%\n", i+1, c.Card.Name, c.Card.Issuer.Name, c.EffectiveRate)
		fmt.Printf("   %s\n", c.Explanation)
		for _, note := range c.Notes {
			fmt.Printf("   * %s\n", note)
		}
	}
	fmt.Printf("\n%s\n", rec.Explanation)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
