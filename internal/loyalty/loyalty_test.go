package loyalty

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"github.com/shopspring/decimal"
)

const catalogYAML = `
tiers:
  - title: Member
    min_points: 0
    max_points: 999
  - title: Insider
    min_points: 1000
    benefits: [Free returns]
    popular: true
rules:
  - key: review_written
    points: 40
  - key: purchase_completed
    label: Order placed
    rate: "0.2"
products:
  - id: 8d0f1a4e-3c1b-4b57-9f0e-2a6c1d9b7e11
    name: Linen throw
    price: "349.99"
    stock: 12
`

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loyalty.yaml")
	if err := os.WriteFile(path, []byte(catalogYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(c.Tiers) != 2 || c.Tiers[1].Title != "Insider" || !c.Tiers[1].Popular {
		t.Fatalf("unexpected tiers: %+v", c.Tiers)
	}

	rules, err := c.PointRules()
	if err != nil {
		t.Fatalf("PointRules() error: %v", err)
	}

	if got, _ := rules.Resolve(points.ActionReviewWritten, decimal.Zero); got != 40 {
		t.Errorf("expected 40 review points, got %d", got)
	}

	if got, _ := rules.Resolve(points.ActionPurchaseCompleted, decimal.NewFromInt(105)); got != 21 {
		t.Errorf("expected 21 purchase points, got %d", got)
	}

	if rules.Label(points.ActionPurchaseCompleted) != "Order placed" {
		t.Errorf("expected overridden label, got %q", rules.Label(points.ActionPurchaseCompleted))
	}

	if got, _ := rules.Resolve(points.ActionDailyLogin, decimal.Zero); got != 2 {
		t.Errorf("expected default daily login rule to survive, got %d", got)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if len(c.Tiers) != 4 || c.Tiers[3].Title != "Platinum" || c.Tiers[3].MinPoints != 10000 {
		t.Errorf("unexpected default tiers: %+v", c.Tiers)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "points and rate", yaml: "rules:\n  - key: shopping\n    points: 1\n    rate: \"0.1\"\n"},
		{name: "neither points nor rate", yaml: "rules:\n  - key: shopping\n"},
		{name: "duplicate tier", yaml: "tiers:\n  - title: A\n  - title: A\n"},
		{name: "max below min", yaml: "tiers:\n  - title: A\n    min_points: 10\n    max_points: 5\n"},
		{name: "no zero tier", yaml: "tiers:\n  - title: A\n    min_points: 100\n"},
		{name: "bad product price", yaml: "products:\n  - name: Lamp\n    price: cheap\n"},
		{name: "bad product id", yaml: "products:\n  - id: lamp\n    name: Lamp\n    price: \"10\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPointRulesRejectsNegativeRate(t *testing.T) {
	c, err := Parse([]byte("rules:\n  - key: shopping\n    rate: \"-0.5\"\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if _, err := c.PointRules(); err == nil {
		t.Error("expected error for negative rate")
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemoryStorage()

	c, err := Parse([]byte(catalogYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := Seed(ctx, repo, c); err != nil {
			t.Fatalf("Seed() error: %v", err)
		}
	}

	memberships, _ := repo.GetMemberships(ctx)
	if len(memberships) != 2 || memberships[0].Title != "Member" {
		t.Errorf("expected two seeded tiers, got %+v", memberships)
	}

	product, err := repo.GetProduct(ctx, "8d0f1a4e-3c1b-4b57-9f0e-2a6c1d9b7e11")
	if err != nil {
		t.Fatalf("expected seeded product, got: %v", err)
	}

	if !product.Price.Equal(decimal.RequireFromString("349.99")) || product.Stock != 12 {
		t.Errorf("unexpected product: %+v", product)
	}
}
