package handlers

import (
	"context"
	"errors"
	"net/http"

	"assetfolio/internal/database"
	"assetfolio/internal/models"
	"assetfolio/internal/refresh"
	"assetfolio/internal/valuation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Store is what the handlers need from persistence.
type Store interface {
	Create(ctx context.Context, a *models.Asset) error
	FindAllByOwner(ctx context.Context, ownerID string) ([]models.Asset, error)
	FindOneByOwnerAndID(ctx context.Context, ownerID, id string) (models.Asset, error)
	Save(ctx context.Context, a *models.Asset) error
	Delete(ctx context.Context, ownerID, id string) error
	EnsureUserExists(ctx context.Context, userID, name string) error
}

type Handler struct {
	store     Store
	valuator  *valuation.Valuator
	refresher *refresh.Refresher
	log       *logrus.Logger
}

func NewHandler(store Store, v *valuation.Valuator, r *refresh.Refresher, log *logrus.Logger) *Handler {
	return &Handler{store: store, valuator: v, refresher: r, log: log}
}

func (h *Handler) Register(rg *gin.Engine) {
	authed := rg.Group("/", RequireUser())
	authed.GET("/assets", h.ListAssets)
	authed.POST("/assets", h.CreateAsset)
	authed.PUT("/assets/:id", h.UpdateAsset)
	authed.DELETE("/assets/:id", h.DeleteAsset)
	authed.POST("/assets/refresh", h.RefreshAssets)
	authed.GET("/portfolio", h.GetPortfolio)
}

type AssetRequest struct {
	Name        string `json:"name" binding:"required"`
	Type        string `json:"type" binding:"required"`
	Symbol      string `json:"symbol"`
	Quantity    string `json:"quantity"`
	ManualValue string `json:"manual_value"`
}

type AssetUpdateRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	Symbol      *string `json:"symbol"`
	Quantity    *string `json:"quantity"`
	ManualValue *string `json:"manual_value"`
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New("invalid " + field + " format")
	}
	return d, nil
}

func (h *Handler) ListAssets(c *gin.Context) {
	assets, err := h.store.FindAllByOwner(context.Background(), currentUser(c))
	if err != nil {
		h.log.Errorf("list assets failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, assets)
}

func (h *Handler) CreateAsset(c *gin.Context) {
	var req AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid post body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qty, err := parseAmount(req.Quantity, "quantity")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	manual, err := parseAmount(req.ManualValue, "manual_value")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := models.Asset{
		OwnerID:     currentUser(c),
		Name:        req.Name,
		Type:        models.AssetType(req.Type),
		Symbol:      req.Symbol,
		Quantity:    qty,
		ManualValue: manual,
	}
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()
	if err := h.store.EnsureUserExists(ctx, a.OwnerID, ""); err != nil {
		h.log.Warnf("ensure user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	// Priced assets get their first quote right away; a provider outage shows
	// up as a zero market value, not as a failed create.
	if err := h.valuator.Valuate(ctx, &a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Create(ctx, &a); err != nil {
		if errors.Is(err, database.ErrUnknownOwner) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Errorf("create asset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	var req AssetUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warnf("invalid update body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := context.Background()
	a, err := h.store.FindOneByOwnerAndID(ctx, currentUser(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		h.log.Errorf("find asset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.Type != nil {
		a.Type = models.AssetType(*req.Type)
	}
	if req.Symbol != nil {
		a.Symbol = *req.Symbol
	}
	if req.Quantity != nil {
		qty, err := parseAmount(*req.Quantity, "quantity")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.Quantity = qty
	}
	if req.ManualValue != nil {
		manual, err := parseAmount(*req.ManualValue, "manual_value")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a.ManualValue = manual
	}

	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Edits re-fetch the quote so a changed symbol or type is priced
	// immediately.
	if err := h.valuator.Valuate(ctx, &a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.Save(ctx, &a); err != nil {
		h.log.Errorf("save asset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	err := h.store.Delete(context.Background(), currentUser(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset not found"})
			return
		}
		h.log.Errorf("delete asset failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type RefreshedAsset struct {
	models.Asset
	Error string `json:"error,omitempty"`
}

// RefreshAssets re-prices the whole portfolio. The response is best effort:
// every asset comes back, each with its own error if it had one.
func (h *Handler) RefreshAssets(c *gin.Context) {
	outcomes, err := h.refresher.RefreshAll(context.Background(), currentUser(c))
	if err != nil {
		h.log.Errorf("batch refresh failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "refresh failed"})
		return
	}
	res := make([]RefreshedAsset, 0, len(outcomes))
	for _, o := range outcomes {
		ra := RefreshedAsset{Asset: o.Asset}
		if o.Err != nil {
			ra.Error = o.Err.Error()
		}
		res = append(res, ra)
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	assets, err := h.store.FindAllByOwner(context.Background(), currentUser(c))
	if err != nil {
		h.log.Errorf("get portfolio failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	summary := valuation.Aggregate(assets)
	byType := map[string]string{}
	for typ, v := range summary.ByType {
		byType[string(typ)] = v.StringFixed(4)
	}
	c.JSON(http.StatusOK, gin.H{
		"assets":  assets,
		"total":   summary.Total.StringFixed(4),
		"by_type": byType,
	})
}
