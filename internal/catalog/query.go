package catalog

import (
	"sort"
	"strings"

	"github.com/Arisudan/Varshini-Industrries/internal/models"
)

// CategoryOrder is the storefront display order of the pump families.
var CategoryOrder = []string{
	"Self-Priming Monoblock Pumps",
	"Supersuction Pumps",
	"Centrifugal Monoblock Pumps",
	"Openwell Submersible Pumps",
	"Shallow Well Pumps",
	"Mini Booster Pumps",
	"Borewell Submersible Pumps",
}

// OtherProducts collects products with no category.
const OtherProducts = "Other Products"

// comingSoon categories render a placeholder instead of a product list.
var comingSoon = map[string]bool{
	"DC Series":    true,
	"Micro Motors": true,
}

// IsComingSoon reports whether category is announced but not yet stocked.
func IsComingSoon(category string) bool { return comingSoon[category] }

// CategoryGroup is one heading of the grouped catalog.
type CategoryGroup struct {
	Category string           `json:"category"`
	Products []models.Product `json:"products"`
}

// GroupByCategory groups products in CategoryOrder, then unknown categories in
// first-seen order, then uncategorised products.
func GroupByCategory(products []models.Product) []CategoryGroup {
	buckets := make(map[string][]models.Product)
	var extra []string
	known := make(map[string]bool, len(CategoryOrder))
	for _, c := range CategoryOrder {
		known[c] = true
	}

	for _, p := range products {
		cat := strings.TrimSpace(p.Category)
		if cat == "" {
			cat = OtherProducts
		}
		if _, seen := buckets[cat]; !seen && !known[cat] && cat != OtherProducts {
			extra = append(extra, cat)
		}
		buckets[cat] = append(buckets[cat], p)
	}

	order := append(append(append([]string{}, CategoryOrder...), extra...), OtherProducts)
	groups := make([]CategoryGroup, 0, len(buckets))
	for _, cat := range order {
		if ps, ok := buckets[cat]; ok {
			groups = append(groups, CategoryGroup{Category: cat, Products: ps})
		}
	}
	return groups
}

// Search matches q case-insensitively against name, series and category.
// A blank query returns products unchanged.
func Search(products []models.Product, q string) []models.Product {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return products
	}
	out := make([]models.Product, 0)
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Series), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// FilterByCategory returns products whose category equals cat exactly.
// "All" and "" return everything.
func FilterByCategory(products []models.Product, cat string) []models.Product {
	if cat == "" || cat == "All" {
		return products
	}
	out := make([]models.Product, 0)
	for _, p := range products {
		if p.Category == cat {
			out = append(out, p)
		}
	}
	return out
}

// SpecQuery is a spec finder request. At least one field must be set.
type SpecQuery struct {
	PipeSize string `form:"pipe" json:"pipe_size"`
	HPKW     string `form:"hpkw" json:"hp_kw"`
}

func (q SpecQuery) empty() bool {
	return strings.TrimSpace(q.PipeSize) == "" && strings.TrimSpace(q.HPKW) == ""
}

// MatchSpec reports whether p satisfies every criterion present in q.
// Products without table data never match.
func MatchSpec(p models.Product, q SpecQuery) bool {
	if p.TableData == nil {
		return false
	}
	if v := strings.TrimSpace(q.PipeSize); v != "" && p.TableData.PipeSize != v {
		return false
	}
	if v := strings.TrimSpace(q.HPKW); v != "" && p.TableData.HPKW != v {
		return false
	}
	return true
}

// SpecOptions lists the distinct finder values, sorted, without "N/A".
type SpecOptions struct {
	PipeSizes []string `json:"pipe_sizes"`
	HPKW      []string `json:"hp_kw"`
}

func collectSpecOptions(products []models.Product) SpecOptions {
	pipes := map[string]bool{}
	powers := map[string]bool{}
	for _, p := range products {
		if p.TableData == nil {
			continue
		}
		if v := p.TableData.PipeSize; v != "" && v != "N/A" {
			pipes[v] = true
		}
		if v := p.TableData.HPKW; v != "" && v != "N/A" {
			powers[v] = true
		}
	}
	return SpecOptions{PipeSizes: sortedKeys(pipes), HPKW: sortedKeys(powers)}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
