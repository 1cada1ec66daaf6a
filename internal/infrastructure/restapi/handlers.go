package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zhengqian8958/Solari/internal/app/service"
	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/infrastructure/registry"
)

// PortfolioResponse is the envelope for portfolio reads. Source distinguishes
// a live reconciled result from the persisted cold-start cache.
type PortfolioResponse struct {
	Data          entity.Portfolio `json:"data"`
	Source        string           `json:"source"` // "live", "cache" or "demo"
	StatusMessage string           `json:"status_message"`
}

// InvestmentTypeResponse is the envelope for a single category view. Assets
// have the collapse policy applied and carry rendering shades side by side.
type InvestmentTypeResponse struct {
	Data   entity.InvestmentType `json:"data"`
	Shades []string              `json:"shades"`
}

// PortfolioHandler serves the portfolio and customization endpoints.
type PortfolioHandler struct {
	portfolio *service.PortfolioService
	worker    *service.RefreshWorker
	collapse  service.CollapsePolicy
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolio *service.PortfolioService, worker *service.RefreshWorker, collapse service.CollapsePolicy) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		worker:    worker,
		collapse:  collapse,
	}
}

// GetPortfolioHandler returns the latest reconciled portfolio, falling back to
// the persisted cache when no pass has completed yet. A true first run with
// neither reports 404 so the client can show its empty state.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	if portfolio, ok := h.portfolio.Portfolio(); ok {
		c.JSON(http.StatusOK, PortfolioResponse{
			Data:          portfolio,
			Source:        "live",
			StatusMessage: "Portfolio retrieved successfully.",
		})
		return
	}

	if cached, ok := h.portfolio.CachedPortfolio(c.Request.Context()); ok {
		c.JSON(http.StatusOK, PortfolioResponse{
			Data:          cached,
			Source:        "cache",
			StatusMessage: "Live data not available yet; serving last cached portfolio.",
		})
		return
	}

	c.JSON(http.StatusNotFound, gin.H{"status_message": "No portfolio data available yet."})
}

// RefreshPortfolioHandler triggers an explicit wallet refresh. Overlapping
// requests share one in-flight fetch.
func (h *PortfolioHandler) RefreshPortfolioHandler(c *gin.Context) {
	portfolio := h.worker.Refresh(c.Request.Context())
	c.JSON(http.StatusOK, PortfolioResponse{
		Data:          portfolio,
		Source:        "live",
		StatusMessage: "Portfolio refreshed successfully.",
	})
}

// GetDemoPortfolioHandler returns the starter-asset portfolio for the active
// categories.
func (h *PortfolioHandler) GetDemoPortfolioHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PortfolioResponse{
		Data:          service.GenerateDemoPortfolio(h.portfolio.ActiveInvestmentTypeIDs()),
		Source:        "demo",
		StatusMessage: "Demo portfolio generated.",
	})
}

// GetInvestmentTypeHandler returns one reconciled category with the collapse
// policy applied, and records it as the currently-viewed category.
func (h *PortfolioHandler) GetInvestmentTypeHandler(c *gin.Context) {
	id := c.Param("id")
	investmentType, ok := h.portfolio.InvestmentType(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"status_message": "Investment type not found or not active."})
		return
	}

	h.portfolio.SetSelectedInvestmentType(id)
	investmentType.Assets = service.CollapseLongTail(id, investmentType.Assets, h.collapse)
	shadeCount := len(investmentType.Assets)
	c.JSON(http.StatusOK, InvestmentTypeResponse{
		Data:   investmentType,
		Shades: service.AssetShades(id, shadeCount),
	})
}

type addInvestmentTypeRequest struct {
	ID string `json:"id" binding:"required"`
}

// AddInvestmentTypeHandler activates a system investment type.
func (h *PortfolioHandler) AddInvestmentTypeHandler(c *gin.Context) {
	var req addInvestmentTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": "Request body must include an investment type id."})
		return
	}
	if _, ok := registry.SystemInvestmentTypeByID(req.ID); !ok {
		c.JSON(http.StatusNotFound, gin.H{"status_message": "Unknown investment type id."})
		return
	}

	portfolio := h.portfolio.AddInvestmentType(c.Request.Context(), req.ID)
	c.JSON(http.StatusOK, PortfolioResponse{
		Data:          portfolio,
		Source:        "live",
		StatusMessage: "Investment type activated.",
	})
}

// RemoveInvestmentTypeHandler deactivates an investment type.
func (h *PortfolioHandler) RemoveInvestmentTypeHandler(c *gin.Context) {
	portfolio := h.portfolio.RemoveInvestmentType(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, PortfolioResponse{
		Data:          portfolio,
		Source:        "live",
		StatusMessage: "Investment type deactivated.",
	})
}

type addAssetRequest struct {
	Name   string  `json:"name" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// AddAssetHandler registers a manually-entered asset under a category.
func (h *PortfolioHandler) AddAssetHandler(c *gin.Context) {
	id := c.Param("id")
	if _, ok := registry.SystemInvestmentTypeByID(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"status_message": "Unknown investment type id."})
		return
	}

	var req addAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": "Request body must include a name and a positive amount."})
		return
	}

	portfolio := h.portfolio.AddAsset(c.Request.Context(), id, req.Name, req.Amount)
	c.JSON(http.StatusOK, PortfolioResponse{
		Data:          portfolio,
		Source:        "live",
		StatusMessage: "Custom asset added.",
	})
}

// RemoveAssetHandler tombstones an asset within a category. The synthetic
// "Other" aggregate cannot be removed.
func (h *PortfolioHandler) RemoveAssetHandler(c *gin.Context) {
	assetID := c.Param("assetId")
	if assetID == service.OtherAssetID {
		c.JSON(http.StatusBadRequest, gin.H{"status_message": "The aggregated entry cannot be removed."})
		return
	}

	portfolio := h.portfolio.RemoveAsset(c.Request.Context(), c.Param("id"), assetID)
	c.JSON(http.StatusOK, PortfolioResponse{
		Data:          portfolio,
		Source:        "live",
		StatusMessage: "Asset removed.",
	})
}
