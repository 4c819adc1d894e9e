// Package loyalty loads the membership tiers, point rules and starter
// products of the storefront from a YAML file.
package loyalty

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/entities"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/points"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/services/tier"
	"github.com/senzo-zwelihle-masango/elysian-emporium/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Tier is a membership tier. A zero MaxPoints means open ended.
type Tier struct {
	Title     string   `yaml:"title"`
	MinPoints int      `yaml:"min_points"`
	MaxPoints int      `yaml:"max_points"`
	Benefits  []string `yaml:"benefits"`
	Popular   bool     `yaml:"popular"`
	Crown     string   `yaml:"crown"`
}

// Rule sets exactly one of Points or Rate.
type Rule struct {
	Key    string `yaml:"key"`
	Label  string `yaml:"label"`
	Points *int   `yaml:"points"`
	Rate   string `yaml:"rate"`
}

type Product struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price string `yaml:"price"`
	Stock int    `yaml:"stock"`
}

type Catalog struct {
	Tiers    []Tier    `yaml:"tiers"`
	Rules    []Rule    `yaml:"rules"`
	Products []Product `yaml:"products"`
}

func DefaultTiers() []Tier {
	return []Tier{
		{Title: "Bronze", MinPoints: 0, MaxPoints: 499, Benefits: []string{"Member prices"}, Crown: "bronze"},
		{Title: "Silver", MinPoints: 500, MaxPoints: 1999, Benefits: []string{"Member prices", "Birthday voucher"}, Popular: true, Crown: "silver"},
		{Title: "Gold", MinPoints: 2000, MaxPoints: 9999, Benefits: []string{"Member prices", "Birthday voucher", "Early access"}, Crown: "gold"},
		{Title: "Platinum", MinPoints: 10000, Benefits: []string{"Member prices", "Birthday voucher", "Early access", "Personal stylist"}, Crown: "platinum"},
	}
}

func Default() *Catalog {
	return &Catalog{Tiers: DefaultTiers()}
}

// Load reads the catalog at path. An empty path yields the default catalog.
// Tiers in the file replace the default tiers, rules override the default rule
// of the same key.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading loyalty catalog %s: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing loyalty catalog: %w", err)
	}

	if len(c.Tiers) == 0 {
		c.Tiers = DefaultTiers()
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Catalog) validate() error {
	titles := make(map[string]bool, len(c.Tiers))
	for _, t := range c.Tiers {
		if t.Title == "" {
			return errors.New("tier title is required")
		}
		if titles[t.Title] {
			return fmt.Errorf("tier %q: duplicate title", t.Title)
		}
		if t.MinPoints < 0 {
			return fmt.Errorf("tier %q: min_points must not be negative", t.Title)
		}
		if t.MaxPoints != 0 && t.MaxPoints < t.MinPoints {
			return fmt.Errorf("tier %q: max_points below min_points", t.Title)
		}
		titles[t.Title] = true
	}

	if lowest, ok := tier.Lowest(c.Memberships()); ok && lowest.MinPoints != 0 {
		return fmt.Errorf("tier %q: the lowest tier must start at 0 points", lowest.Title)
	}

	for _, r := range c.Rules {
		if r.Key == "" {
			return errors.New("rule key is required")
		}
		if (r.Points == nil) == (r.Rate == "") {
			return fmt.Errorf("rule %q: exactly one of points or rate is required", r.Key)
		}
	}

	for _, p := range c.Products {
		if p.ID != "" {
			if _, err := uuid.Parse(p.ID); err != nil {
				return fmt.Errorf("product %q: invalid id: %w", p.Name, err)
			}
		}
		if _, err := decimal.NewFromString(p.Price); err != nil {
			return fmt.Errorf("product %q: invalid price: %w", p.Name, err)
		}
		if p.Stock < 0 {
			return fmt.Errorf("product %q: stock must not be negative", p.Name)
		}
	}

	return nil
}

// PointRules returns the default rules with the catalog rules applied on top.
func (c *Catalog) PointRules() (points.Rules, error) {
	rules := points.DefaultRules()

	for _, r := range c.Rules {
		label := r.Label
		if label == "" {
			label = rules.Label(r.Key)
		}

		if r.Points != nil {
			if *r.Points < 0 {
				return nil, fmt.Errorf("rule %q: points must not be negative", r.Key)
			}

			rules[r.Key] = points.Entry{Label: label, Rule: points.Flat(*r.Points)}
			continue
		}

		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return nil, fmt.Errorf("rule %q: invalid rate: %w", r.Key, err)
		}
		if rate.IsNegative() {
			return nil, fmt.Errorf("rule %q: rate must not be negative", r.Key)
		}

		rules[r.Key] = points.Entry{Label: label, Rule: points.PerAmount{Rate: rate}}
	}

	return rules, nil
}

func (c *Catalog) Memberships() []entities.Membership {
	memberships := make([]entities.Membership, 0, len(c.Tiers))
	for _, t := range c.Tiers {
		memberships = append(memberships, entities.Membership{
			Title:     t.Title,
			MinPoints: t.MinPoints,
			MaxPoints: t.MaxPoints,
			Benefits:  append([]string{}, t.Benefits...),
			Popular:   t.Popular,
			Crown:     t.Crown,
		})
	}

	return memberships
}

// Seed writes the tiers and products into an empty store. A store that already
// has tiers is left untouched.
func Seed(ctx context.Context, repo storage.Repository, c *Catalog) error {
	return repo.WithinTx(ctx, func(repo storage.Repository) error {
		existing, err := repo.GetMemberships(ctx)
		if err != nil {
			return fmt.Errorf("error get memberships: %w", err)
		}

		if len(existing) > 0 {
			zap.L().Info("loyalty catalog already seeded", zap.Int("tiers", len(existing)))
			return nil
		}

		for _, membership := range c.Memberships() {
			if _, err := repo.CreateMembership(ctx, membership); err != nil {
				return fmt.Errorf("error create membership %s: %w", membership.Title, err)
			}
		}

		for _, p := range c.Products {
			id, err := repo.CreateProduct(ctx, entities.Product{
				ID:    p.ID,
				Name:  p.Name,
				Price: decimal.RequireFromString(p.Price),
				Stock: p.Stock,
			})
			if err != nil {
				return fmt.Errorf("error create product %s: %w", p.Name, err)
			}

			zap.L().Info("seeded product", zap.String("id", id), zap.String("name", p.Name))
		}

		zap.L().Info("loyalty catalog seeded", zap.Int("tiers", len(c.Tiers)), zap.Int("products", len(c.Products)))

		return nil
	})
}
