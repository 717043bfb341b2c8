package domain

import (
	"fmt"
	"strings"
)

// MaxSkuItems is the gateway limit on SKU rows per cart
const MaxSkuItems = 5

// SkuRow is one operator-entered cart line before normalization
type SkuRow struct {
	SkuID        string
	SkuName      string
	AmountPerSku float64
	Quantity     int
	OfferKey     string // raw input; comma-separated keys allowed
}

// skuItem is the normalized JSON shape of one cart line
type skuItem struct {
	SkuID          string   `json:"sku_id"`
	SkuName        string   `json:"sku_name"`
	AmountPerSku   float64  `json:"amount_per_sku"`
	Quantity       int      `json:"quantity"`
	OfferKey       []string `json:"offer_key"` // nil marshals as null
	OfferAutoApply bool     `json:"offer_auto_apply"`
}

// SkuCart is the bank-offer cart document. Aggregates are derived from the
// rows; float64 arithmetic is deliberate so the emitted numbers match what
// the gateway-side verifier computes from the same inputs.
type SkuCart struct {
	Surcharges  string
	PreDiscount float64
	Rows        []SkuRow
}

func (c *SkuCart) Kind() SubDocumentKind { return SubDocumentCart }

// ParseOfferKeys splits a raw offer-key input on commas, trimming blanks.
// A non-empty input always forces offer_auto_apply=false; an empty input
// keeps auto-apply and a null offer_key.
func ParseOfferKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, ",") {
		return []string{raw}
	}
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Validate enforces the SKU row limit and row completeness
func (c *SkuCart) Validate() error {
	if len(c.Rows) > MaxSkuItems {
		return NewDomainError(ErrorCodeSubDocCartInvalid,
			fmt.Sprintf("at most %d SKU items are allowed, got %d", MaxSkuItems, len(c.Rows)))
	}
	if len(c.items()) == 0 {
		return NewDomainError(ErrorCodeSubDocCartInvalid,
			"at least one SKU item with id and name is required")
	}
	return nil
}

// items normalizes rows, skipping those without both id and name
func (c *SkuCart) items() []skuItem {
	out := make([]skuItem, 0, len(c.Rows))
	for _, r := range c.Rows {
		id := strings.TrimSpace(r.SkuID)
		name := strings.TrimSpace(r.SkuName)
		if id == "" || name == "" {
			continue
		}
		qty := r.Quantity
		if qty <= 0 {
			qty = 1
		}
		keys := ParseOfferKeys(r.OfferKey)
		out = append(out, skuItem{
			SkuID:          id,
			SkuName:        name,
			AmountPerSku:   r.AmountPerSku,
			Quantity:       qty,
			OfferKey:       keys,
			OfferAutoApply: keys == nil,
		})
	}
	return out
}

// Amount returns the derived cart total: sum of amount_per_sku x quantity
func (c *SkuCart) Amount() float64 {
	var total float64
	for _, it := range c.items() {
		total += it.AmountPerSku * float64(it.Quantity)
	}
	return total
}

// ItemCount returns the derived quantity total
func (c *SkuCart) ItemCount() int {
	var n int
	for _, it := range c.items() {
		n += it.Quantity
	}
	return n
}

// cartDocument fixes the JSON key order of the emitted cart
type cartDocument struct {
	Amount      float64   `json:"amount"`
	Items       int       `json:"items"`
	Surcharges  string    `json:"surcharges"`
	PreDiscount float64   `json:"pre_discount"`
	SkuDetails  []skuItem `json:"sku_details"`
}

func (c *SkuCart) CanonicalJSON() (string, error) {
	items := c.items()
	if len(items) == 0 {
		return "", NewDomainError(ErrorCodeSubDocCartInvalid,
			"at least one SKU item with id and name is required")
	}
	return marshalCanonical(cartDocument{
		Amount:      c.Amount(),
		Items:       c.ItemCount(),
		Surcharges:  c.Surcharges,
		PreDiscount: c.PreDiscount,
		SkuDetails:  items,
	})
}
