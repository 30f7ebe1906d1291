package domain

import (
	"fmt"
	"math"
	"strings"
)

// Size is one purchasable option under a color variant. Its identity within
// the variant is the normalized size name.
type Size struct {
	Size      string  `json:"size"`
	Stock     int     `json:"stock"`
	SKU       string  `json:"sku"`
	Price     float64 `json:"price"`
	IsDefault bool    `json:"is_default"`
}

// Variant is a color-level grouping of a product's options. Its identity
// within the product is the normalized color name.
type Variant struct {
	Color     string `json:"color"`
	ColorCode string `json:"color_code"`
	IsDefault bool   `json:"is_default"`
	Sizes     []Size `json:"sizes"`
}

// NormalizeKey produces the case-insensitive identity key used for color and
// size names.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidationResult holds the outcome of a variant matrix validation. Errors
// carries every violation found, never just the first one.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// variantLabel names a variant in error messages, falling back to its index
// when the color is blank.
func variantLabel(v Variant, index int) string {
	if strings.TrimSpace(v.Color) != "" {
		return fmt.Sprintf("%q", v.Color)
	}
	return fmt.Sprintf("at index %d", index)
}

// ValidateVariants checks a variant matrix against the cross-cutting
// invariants: unique colors, non-empty sizes with unique names and
// non-negative stock, at most one default variant, exactly one default size
// under the default variant and none elsewhere. All violations are
// accumulated; validity is simply the absence of errors.
func ValidateVariants(variants []Variant) ValidationResult {
	var errs []string

	colorSeen := make(map[string]bool, len(variants))
	for i, v := range variants {
		if strings.TrimSpace(v.Color) == "" {
			errs = append(errs, fmt.Sprintf("variant at index %d is missing a valid color", i))
		} else {
			key := NormalizeKey(v.Color)
			if colorSeen[key] {
				errs = append(errs, fmt.Sprintf("duplicate color %q found at index %d", v.Color, i))
			}
			colorSeen[key] = true
		}

		if len(v.Sizes) == 0 {
			errs = append(errs, fmt.Sprintf("variant %s must have at least one size", variantLabel(v, i)))
			continue
		}

		sizeSeen := make(map[string]bool, len(v.Sizes))
		for j, s := range v.Sizes {
			if strings.TrimSpace(s.Size) == "" {
				errs = append(errs, fmt.Sprintf("variant %s has invalid size at index %d (missing size name)", variantLabel(v, i), j))
			} else {
				key := NormalizeKey(s.Size)
				if sizeSeen[key] {
					errs = append(errs, fmt.Sprintf("variant %s has duplicate size %q", variantLabel(v, i), s.Size))
				}
				sizeSeen[key] = true
			}

			if s.Stock < 0 {
				errs = append(errs, fmt.Sprintf("variant %s size %q has invalid stock (must be a number >= 0)", variantLabel(v, i), s.Size))
			}
		}
	}

	defaultCount := 0
	var defaultVariant *Variant
	for i := range variants {
		if variants[i].IsDefault {
			defaultCount++
			defaultVariant = &variants[i]
		}
	}
	if defaultCount > 1 {
		errs = append(errs, "only one color variant can be marked as default")
	}
	if defaultCount == 1 {
		defaultSizes := 0
		for _, s := range defaultVariant.Sizes {
			if s.IsDefault {
				defaultSizes++
			}
		}
		switch {
		case defaultSizes == 0:
			errs = append(errs, "the default color variant must have exactly one default size")
		case defaultSizes > 1:
			errs = append(errs, "the default color variant can only have one default size")
		}
	}

	for i, v := range variants {
		if v.IsDefault {
			continue
		}
		for _, s := range v.Sizes {
			if s.IsDefault {
				errs = append(errs, fmt.Sprintf("non-default color variant %s cannot have a default size", variantLabel(v, i)))
				break
			}
		}
	}

	return ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// TotalStock sums the stock of every size across every variant.
func TotalStock(variants []Variant) int {
	total := 0
	for _, v := range variants {
		for _, s := range v.Sizes {
			total += s.Stock
		}
	}
	return total
}

// RoundCents rounds a monetary amount to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
