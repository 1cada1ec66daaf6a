package service

import (
	"fmt"
	"math"

	"github.com/zhengqian8958/Solari/internal/config"
	"github.com/zhengqian8958/Solari/internal/domain/entity"
)

// OtherAssetID identifies the synthetic long-tail aggregate entry. It is
// non-removable: the tombstone path skips it.
const OtherAssetID = "other"

// CollapsePolicy maps an investment-type id to the identifiers allowed to
// stand alone in its asset list. Everything else folds into one "Other" entry.
type CollapsePolicy map[string]map[string]struct{}

// NewCollapsePolicy builds a policy from configuration rules.
func NewCollapsePolicy(rules []config.CollapseRuleConfig) CollapsePolicy {
	policy := make(CollapsePolicy, len(rules))
	for _, rule := range rules {
		featured := make(map[string]struct{}, len(rule.FeaturedIDs))
		for _, id := range rule.FeaturedIDs {
			featured[id] = struct{}{}
		}
		policy[rule.InvestmentTypeID] = featured
	}
	return policy
}

// CollapseLongTail folds every asset not in the category's featured set into a
// single synthetic "Other" aggregate with summed value, change and percentage.
// Categories without a policy entry pass through untouched. Featured matching
// considers both the asset id and its mint, since the native asset may carry
// an account address as its id.
func CollapseLongTail(investmentTypeID string, assets []entity.Asset, policy CollapsePolicy) []entity.Asset {
	featured, ok := policy[investmentTypeID]
	if !ok || len(assets) == 0 {
		return assets
	}

	out := make([]entity.Asset, 0, len(assets))
	var other entity.Asset
	var tail int
	for _, a := range assets {
		_, byID := featured[a.ID]
		_, byMint := featured[a.Mint]
		if byID || byMint {
			out = append(out, a)
			continue
		}
		tail++
		other.Value += a.Value
		other.Change += a.Change
		other.Percentage += a.Percentage
	}

	if tail == 0 {
		return out
	}

	other.ID = OtherAssetID
	other.Name = "Other"
	other.Symbol = "OTHER"
	other.InvestmentTypeID = investmentTypeID
	other.ChangePercentage = guardedChangePercentage(other.Value, other.Change)
	return append(out, other)
}

// investmentColorFamilies are the predefined shade ramps per investment type,
// base color first, progressively darker.
var investmentColorFamilies = map[string][]string{
	"stock":       {"#72d5ff", "#5ab8e6", "#429bcc", "#3a8ab8", "#2a6a8f", "#1a4a6f"},
	"crypto":      {"#b794f4", "#9f7ad9", "#8760be", "#7550a8", "#5c3d85", "#432a62"},
	"real_estate": {"#81e6d9", "#6ac9be", "#53aca3", "#3c8f88", "#2d6b66", "#1e4744"},
	"bonds":       {"#fbd38d", "#e8ba6f", "#d4a151", "#c18833", "#a36f15", "#855600"},
	"commodities": {"#ffb37e", "#e69760", "#cc7b42", "#b35f24", "#994306", "#802700"},
	"cash":        {"#ff85a2", "#e66884", "#cc4b66", "#b32e48", "#99112a", "#80000c"},
}

// AssetShades returns count color shades for rendering a category's assets.
// Predefined family ramps are used when long enough; otherwise shades are
// generated by darkening the family's base color in 15% steps.
func AssetShades(investmentTypeID string, count int) []string {
	if count <= 0 {
		count = 6
	}
	family := investmentColorFamilies[investmentTypeID]
	if len(family) >= count {
		return append([]string(nil), family[:count]...)
	}

	base := "#72d5ff"
	if len(family) > 0 {
		base = family[0]
	}
	return generateColorShades(base, count)
}

// generateColorShades darkens a hex base color into count variations.
func generateColorShades(baseColor string, count int) []string {
	var r, g, b int
	if _, err := fmt.Sscanf(baseColor, "#%02x%02x%02x", &r, &g, &b); err != nil {
		r, g, b = 0x72, 0xd5, 0xff
	}

	shades := make([]string, 0, count)
	for i := 0; i < count; i++ {
		factor := 1 - float64(i)*0.15
		shades = append(shades, fmt.Sprintf("#%02x%02x%02x",
			clampChannel(float64(r)*factor),
			clampChannel(float64(g)*factor),
			clampChannel(float64(b)*factor)))
	}
	return shades
}

func clampChannel(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}
