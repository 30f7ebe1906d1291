package domain

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Number is a float64 that also accepts string-encoded values during JSON
// decoding. Form layers submit stock and price as strings; coercion happens
// here, at the boundary, so the rest of the core only ever sees numbers.
type Number float64

// UnmarshalJSON accepts a JSON number or a numeric string. Empty strings and
// JSON null decode to zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid numeric string %s: %w", data, err)
		}
		if unquoted == "" {
			*n = 0
			return nil
		}
		parsed, err := strconv.ParseFloat(unquoted, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q: %w", unquoted, err)
		}
		*n = Number(parsed)
		return nil
	}
	parsed, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", data, err)
	}
	*n = Number(parsed)
	return nil
}

// SizeInput is a client-submitted size row. Pointer fields distinguish a key
// the client omitted (nil, falls back to history) from one it sent
// explicitly, which matters for IsDefault: an explicit false clears a
// persisted default, a missing key preserves it.
type SizeInput struct {
	Size      string  `json:"size"`
	Stock     *Number `json:"stock"`
	SKU       *string `json:"sku"`
	Price     *Number `json:"price"`
	IsDefault *bool   `json:"is_default"`
}

// VariantInput is a client-submitted variant row.
type VariantInput struct {
	Color     string      `json:"color"`
	ColorCode *string     `json:"color_code"`
	IsDefault *bool       `json:"is_default"`
	Sizes     []SizeInput `json:"sizes"`
}

type oldVariantEntry struct {
	variant Variant
	sizes   map[string]Size
}

func indexOldVariants(oldVariants []Variant) map[string]oldVariantEntry {
	index := make(map[string]oldVariantEntry, len(oldVariants))
	for _, v := range oldVariants {
		sizes := make(map[string]Size, len(v.Sizes))
		for _, s := range v.Sizes {
			sizes[NormalizeKey(s.Size)] = s
		}
		index[NormalizeKey(v.Color)] = oldVariantEntry{variant: v, sizes: sizes}
	}
	return index
}

// MergeVariants reconciles a client-submitted variant matrix against the
// persisted one. The new list is authoritative for membership: variants and
// sizes absent from it are dropped, and output order follows the input. Only
// per-field values fall back to history, matched by normalized color and size
// name. The merge performs no validation; its output must go through
// ValidateVariants before being persisted.
func MergeVariants(newVariants []VariantInput, oldVariants []Variant) []Variant {
	oldIndex := indexOldVariants(oldVariants)

	merged := make([]Variant, 0, len(newVariants))
	for _, in := range newVariants {
		old, hadOld := oldIndex[NormalizeKey(in.Color)]
		merged = append(merged, mergeVariant(in, old, hadOld))
	}
	return merged
}

func mergeVariant(in VariantInput, old oldVariantEntry, hadOld bool) Variant {
	out := Variant{
		Color: trimmed(in.Color),
		Sizes: make([]Size, 0, len(in.Sizes)),
	}

	switch {
	case in.ColorCode != nil && *in.ColorCode != "":
		out.ColorCode = trimmed(*in.ColorCode)
	case hadOld:
		out.ColorCode = old.variant.ColorCode
	}

	switch {
	case in.IsDefault != nil:
		out.IsDefault = *in.IsDefault
	case hadOld:
		out.IsDefault = old.variant.IsDefault
	}

	for _, sizeIn := range in.Sizes {
		var oldSize Size
		hadOldSize := false
		if hadOld {
			oldSize, hadOldSize = old.sizes[NormalizeKey(sizeIn.Size)]
		}
		out.Sizes = append(out.Sizes, mergeSize(sizeIn, oldSize, hadOldSize))
	}
	return out
}

func mergeSize(in SizeInput, old Size, hadOld bool) Size {
	out := Size{Size: trimmed(in.Size)}

	switch {
	case in.Stock != nil && *in.Stock >= 0:
		out.Stock = int(*in.Stock)
	case hadOld:
		out.Stock = old.Stock
	}

	switch {
	case in.Price != nil && *in.Price > 0:
		out.Price = float64(*in.Price)
	case hadOld:
		out.Price = old.Price
	}

	switch {
	case in.SKU != nil && *in.SKU != "":
		out.SKU = trimmed(*in.SKU)
	case hadOld:
		out.SKU = old.SKU
	}

	switch {
	case in.IsDefault != nil:
		out.IsDefault = *in.IsDefault
	case hadOld:
		out.IsDefault = old.IsDefault
	}

	return out
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
