package main

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// money é armazenado em centavos; na resposta vira {"amount": 12.5, "currency": "BRL"}.
type money struct {
	cents    int64
	currency string
}

func (m money) PlainValue() (any, error) {
	return map[string]any{
		"amount":   float64(m.cents) / 100,
		"currency": m.currency,
	}, nil
}

type product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     money     `json:"price"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	// custo é dado interno, nunca sai na resposta
	Cost money `json:"-"`
	// visível só quando TRANSFORM_PLAIN_GROUPS inclui "admin"
	Supplier string `json:"supplier,omitempty" plain:"groups=admin"`
}

// Margin é comportamento do tipo; a conversão descarta métodos.
func (p product) Margin() int64 { return p.Price.cents - p.Cost.cents }

type newProduct struct {
	Name       string   `json:"name"`
	PriceCents int64    `json:"priceCents"`
	CostCents  int64    `json:"costCents"`
	Currency   string   `json:"currency"`
	Tags       []string `json:"tags"`
	Supplier   string   `json:"supplier"`
}

// catalog é um repositório em memória usado pelas rotas de exemplo.
type catalog struct {
	mu    sync.RWMutex
	items map[string]*product
	now   func() time.Time
}

func newCatalog() *catalog {
	return &catalog{items: make(map[string]*product), now: time.Now}
}

func (c *catalog) add(in newProduct) *product {
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "BRL"
	}
	p := &product{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Price:     money{cents: in.PriceCents, currency: currency},
		Cost:      money{cents: in.CostCents, currency: currency},
		Tags:      in.Tags,
		Supplier:  in.Supplier,
		CreatedAt: c.now().UTC(),
	}

	c.mu.Lock()
	c.items[p.ID] = p
	c.mu.Unlock()
	return p
}

func (c *catalog) get(id string) (*product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.items[id]
	return p, ok
}

func (c *catalog) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

func (c *catalog) list() []*product {
	c.mu.RLock()
	out := make([]*product, 0, len(c.items))
	for _, p := range c.items {
		out = append(out, p)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
