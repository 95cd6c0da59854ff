package testkit

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// OrdersConfig configures the synthetic orders generator
type OrdersConfig struct {
	Rows      int       `json:"rows"`
	StartDate time.Time `json:"start_date"`
	Seed      int64     `json:"seed"`
	// Satisfaction shifts the mean satisfaction_score; 0 keeps it around 8
	Satisfaction float64 `json:"satisfaction"`
}

// DefaultOrdersConfig returns sensible defaults for orders data generation
func DefaultOrdersConfig() OrdersConfig {
	return OrdersConfig{
		Rows:      120,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Seed:      42,
	}
}

// OrdersColumns is the header row produced by the generator
var OrdersColumns = []string{
	"order_date", "region", "channel", "units", "ad_spend", "revenue",
	"satisfaction_score", "returned", "feedback",
}

var (
	regions  = []string{"north", "south", "east", "west"}
	channels = []string{"web", "store", "partner"}
	comments = []string{
		"Delivery arrived two days early and the packaging was excellent",
		"Delivery was slow but the support team resolved it quickly",
		"Great pricing compared to other vendors we evaluated this quarter",
		"The product quality is consistent and delivery tracking works well",
		"Checkout was confusing on mobile and took several attempts",
	}
)

// OrdersGenerator produces a deterministic e-commerce orders table. Revenue rises with
// ad_spend, so the pair is strongly correlated.
type OrdersGenerator struct {
	config OrdersConfig
	rng    *rand.Rand
}

// NewOrdersGenerator creates a new orders generator
func NewOrdersGenerator(config OrdersConfig) *OrdersGenerator {
	return &OrdersGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Records generates the header and data rows as text cells
func (g *OrdersGenerator) Records() [][]string {
	records := [][]string{OrdersColumns}
	for i := 0; i < g.config.Rows; i++ {
		day := g.config.StartDate.AddDate(0, 0, i%90)
		spend := 100 + g.rng.Float64()*900
		revenue := spend*3.2 + g.rng.NormFloat64()*40
		satisfaction := math.Max(0, math.Min(10, 8+g.config.Satisfaction+g.rng.NormFloat64()*0.8))
		returned := "no"
		if g.rng.Float64() < 0.1 {
			returned = "yes"
		}
		records = append(records, []string{
			day.Format("2006-01-02"),
			regions[i%len(regions)],
			channels[g.rng.Intn(len(channels))],
			strconv.Itoa(1 + g.rng.Intn(9)),
			fmt.Sprintf("%.2f", spend),
			fmt.Sprintf("%.2f", revenue),
			fmt.Sprintf("%.1f", satisfaction),
			returned,
			comments[g.rng.Intn(len(comments))],
		})
	}
	return records
}

// CSV renders the generated table as a CSV upload body
func (g *OrdersGenerator) CSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.WriteAll(g.Records())
	return buf.Bytes()
}

// OrdersCSV is a shortcut for a default-configured CSV body with n rows
func OrdersCSV(n int) []byte {
	cfg := DefaultOrdersConfig()
	cfg.Rows = n
	return NewOrdersGenerator(cfg).CSV()
}

// FeedbackDocument is a customer-feedback memo whose themes match the generated comments
const FeedbackDocument = `Customer Feedback Review

Customers consistently praise delivery speed and packaging. Several noted that delivery
tracking was excellent and helpful. Pricing is seen as great value. A few customers found
mobile checkout confusing. Overall satisfaction is high and customers are happy.`
