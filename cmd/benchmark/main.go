package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"staffrag/config"
	"staffrag/internal/adapter/embedding"
	"staffrag/internal/adapter/encoder"
	"staffrag/internal/adapter/memstore"
	"staffrag/internal/adapter/records"
	"staffrag/internal/domain"
	"staffrag/internal/usecase"
)

var (
	skillPool = []string{
		"Python", "Go", "Java", "TypeScript", "React", "Kubernetes", "Terraform",
		"PostgreSQL", "Machine Learning", "NLP", "Computer Vision", "Spark",
		"AWS", "GCP", "Rust", "C++", "iOS", "Android", "Figma", "Security",
	}
	projectPool = []string{
		"Recommendation engine", "Billing platform", "Mobile banking app",
		"Fraud detection", "Data lake migration", "Customer portal",
		"Search relevance", "Chatbot", "Inventory forecasting", "CI/CD overhaul",
	}
	availabilityPool = []string{"full-time", "part-time", "contract", "available next month"}
)

func main() {
	data := flag.String("data", "", "Employee data source (default: synthetic corpus)")
	size := flag.Int("n", 1000, "Synthetic corpus size")
	dim := flag.Int("dim", 384, "Hash embedding dimension")
	queries := flag.Int("queries", 200, "Number of timed queries")
	query := flag.String("q", "senior python engineer with machine learning experience", "Query to show results for")
	topK := flag.Int("k", 3, "Number of results")
	seed := flag.Int64("seed", 42, "Synthetic corpus seed")
	flag.Parse()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(*seed))

	var recs []domain.Employee
	if *data != "" {
		var err error
		recs, err = records.Load(ctx, *data, config.DefaultConfig().Data.Format, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading data: %v\n", err)
			os.Exit(1)
		}
	} else {
		recs = syntheticCorpus(rng, *size)
	}

	logger := zap.NewNop()
	enc := encoder.New()
	emb := embedding.NewHashEmbedder(*dim)

	fmt.Println("RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Records:   %d\n", len(recs))
	fmt.Printf("Embedder:  %s (%d dimensions)\n", emb.ModelName(), emb.Dimension())
	fmt.Println()

	start := time.Now()
	idx, err := usecase.NewIndexUseCase(emb, enc, 256, logger).Build(ctx, recs, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Index build failed: %v\n", err)
		os.Exit(1)
	}
	buildTime := time.Since(start)
	fmt.Printf("Index build: %s (%.0f records/s)\n", buildTime.Round(time.Millisecond), float64(len(recs))/buildTime.Seconds())

	retriever := usecase.NewRetrieveUseCase(emb, idx, memstore.NewRecordStore(recs), logger)

	latencies := make([]time.Duration, 0, *queries)
	for i := 0; i < *queries; i++ {
		q := randomQuery(rng)
		t := time.Now()
		if _, err := retriever.Retrieve(ctx, q, *topK); err != nil {
			fmt.Fprintf(os.Stderr, "Retrieve error: %v\n", err)
			os.Exit(1)
		}
		latencies = append(latencies, time.Since(t))
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	fmt.Println(strings.Repeat("-", 70))
	fmt.Printf("Queries:   %d (k=%d)\n", len(latencies), *topK)
	fmt.Printf("  p50:     %s\n", percentile(latencies, 0.50))
	fmt.Printf("  p95:     %s\n", percentile(latencies, 0.95))
	fmt.Printf("  p99:     %s\n", percentile(latencies, 0.99))
	fmt.Println()

	fmt.Printf("Query: \"%s\"\n", *query)
	fmt.Println(strings.Repeat("-", 70))
	hits, err := retriever.RetrieveScored(ctx, *query, *topK)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Retrieve error: %v\n", err)
		os.Exit(1)
	}
	for i, h := range hits {
		doc, _ := enc.Render(h.Employee)
		fmt.Printf("%d. [%.4f] %s\n", i+1, h.Distance, doc)
	}
	fmt.Println(strings.Repeat("=", 70))
}

func syntheticCorpus(rng *rand.Rand, n int) []domain.Employee {
	out := make([]domain.Employee, n)
	for i := range out {
		out[i] = domain.Employee{
			Name:            fmt.Sprintf("Employee %04d", i),
			ExperienceYears: domain.Years(rng.Intn(25)),
			Skills:          pick(rng, skillPool, 1+rng.Intn(4)),
			PastProjects:    pick(rng, projectPool, 1+rng.Intn(3)),
			Availability:    availabilityPool[rng.Intn(len(availabilityPool))],
		}
	}
	return out
}

func randomQuery(rng *rand.Rand) string {
	return fmt.Sprintf("%s developer for %s, %s",
		skillPool[rng.Intn(len(skillPool))],
		strings.ToLower(projectPool[rng.Intn(len(projectPool))]),
		availabilityPool[rng.Intn(len(availabilityPool))])
}

func pick(rng *rand.Rand, pool []string, n int) []string {
	perm := rng.Perm(len(pool))[:n]
	out := make([]string, n)
	for i, p := range perm {
		out[i] = pool[p]
	}
	return out
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	i := int(float64(len(sorted)-1) * p)
	return sorted[i]
}
