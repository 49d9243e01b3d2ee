package costing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vsinha/presupuesto/pkg/domain/entities"
)

// priceNamespace scopes the name-based identifiers of new catalog entries
var priceNamespace = uuid.MustParse("6f1c2b0e-5d8a-4c1e-9a57-3b2f0d4e8c71")

// PriceIDFor returns the deterministic identifier of a budget's shared price for a resource
func PriceIDFor(budgetID entities.BudgetID, resourceID entities.ResourceID) entities.PriceID {
	return entities.PriceID(uuid.NewSHA1(priceNamespace, []byte(string(budgetID)+"/"+string(resourceID))).String())
}

// PriceCatalog is the budget-scoped shared price map, keyed by resource.
// It is passed explicitly through a computation and returned with the result.
type PriceCatalog struct {
	budgetID entities.BudgetID
	entries  map[entities.ResourceID]entities.SharedPrice
	order    []entities.ResourceID
}

// NewPriceCatalog builds a catalog from stored entries. The first entry for a
// resource wins.
func NewPriceCatalog(budgetID entities.BudgetID, prices []entities.SharedPrice) *PriceCatalog {
	c := &PriceCatalog{
		budgetID: budgetID,
		entries:  make(map[entities.ResourceID]entities.SharedPrice, len(prices)),
		order:    make([]entities.ResourceID, 0, len(prices)),
	}
	for _, p := range prices {
		if _, exists := c.entries[p.ResourceID]; exists {
			continue
		}
		p.BudgetID = budgetID
		c.entries[p.ResourceID] = p
		c.order = append(c.order, p.ResourceID)
	}
	return c
}

// Lookup returns the shared price of a resource
func (c *PriceCatalog) Lookup(resourceID entities.ResourceID) (decimal.Decimal, bool) {
	entry, ok := c.entries[resourceID]
	if !ok {
		return decimal.Zero, false
	}
	return entry.Price, true
}

// Set creates or updates the shared price of a resource
func (c *PriceCatalog) Set(resourceID entities.ResourceID, price decimal.Decimal) {
	entry, ok := c.entries[resourceID]
	if !ok {
		entry = entities.SharedPrice{
			ID:         PriceIDFor(c.budgetID, resourceID),
			BudgetID:   c.budgetID,
			ResourceID: resourceID,
		}
		c.order = append(c.order, resourceID)
	}
	entry.Price = price
	c.entries[resourceID] = entry
}

// Resolve decides the price a line uses and writes it onto the line.
//
// Overridden lines keep their pinned price and never touch the catalog.
// A following line takes the catalog price, or seeds the catalog with its
// own price when the resource has no entry yet. Derived lines are left alone.
func (c *PriceCatalog) Resolve(line *entities.ResourceLine) decimal.Decimal {
	if line.IsDraft() || line.IsNested() || line.IsPercentOfLabor() {
		return line.Price
	}
	if line.Override {
		return line.OverridePrice
	}
	if price, ok := c.Lookup(line.ResourceID); ok {
		line.Price = price
		return price
	}
	c.Set(line.ResourceID, line.Price)
	return line.Price
}

// Entries returns the catalog in first-seen order
func (c *PriceCatalog) Entries() []entities.SharedPrice {
	out := make([]entities.SharedPrice, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// Len returns the number of resources priced in the catalog
func (c *PriceCatalog) Len() int {
	return len(c.order)
}
