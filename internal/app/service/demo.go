package service

import (
	"fmt"

	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/infrastructure/registry"
)

// GenerateDemoPortfolio builds a Portfolio from the compiled-in starter assets
// of the given investment types. Used for first-run and demo screens only;
// production reconciliation never touches the starter data.
func GenerateDemoPortfolio(activeIDs []string) entity.Portfolio {
	types := make([]entity.InvestmentType, 0, len(activeIDs))
	for _, typeID := range activeIDs {
		template, ok := registry.SystemInvestmentTypeByID(typeID)
		if !ok {
			continue
		}

		assets := make([]entity.Asset, 0, len(template.DefaultAssets))
		var totalValue, totalChange float64
		for i, a := range template.DefaultAssets {
			asset := a
			asset.ID = fmt.Sprintf("%s_asset_%d", typeID, i+1)
			asset.InvestmentTypeID = typeID
			assets = append(assets, asset)
			totalValue += asset.Value
			totalChange += asset.Change
		}

		types = append(types, entity.InvestmentType{
			ID:               template.ID,
			Name:             template.Name,
			Icon:             template.Icon,
			Color:            template.Color,
			TotalValue:       totalValue,
			Change:           totalChange,
			ChangePercentage: guardedChangePercentage(totalValue, totalChange),
			Assets:           assets,
		})
	}

	var portfolioTotal, portfolioChange float64
	for _, t := range types {
		portfolioTotal += t.TotalValue
		portfolioChange += t.Change
	}
	for i := range types {
		if portfolioTotal > 0 {
			types[i].Percentage = types[i].TotalValue / portfolioTotal * 100
		}
	}

	return entity.Portfolio{
		TotalValue:            portfolioTotal,
		TotalChange:           portfolioChange,
		TotalChangePercentage: guardedChangePercentage(portfolioTotal, portfolioChange),
		InvestmentTypes:       types,
	}
}
