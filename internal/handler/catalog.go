package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

// CatalogHandler handles structured catalog HTTP requests
type CatalogHandler struct {
	catalog      *service.CatalogHolder
	aliases      *service.AliasTables
	thresholds   service.MatchThresholds
	defaultLimit int
	maxLimit     int
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog *service.CatalogHolder, aliases *service.AliasTables, thresholds service.MatchThresholds, defaultLimit, maxLimit int) *CatalogHandler {
	if aliases == nil {
		aliases = service.DefaultAliases()
	}
	if thresholds == (service.MatchThresholds{}) {
		thresholds = service.DefaultMatchThresholds()
	}
	return &CatalogHandler{
		catalog:      catalog,
		aliases:      aliases,
		thresholds:   thresholds,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// GetCar handles GET /api/v1/cars/:id
func (h *CatalogHandler) GetCar(c *gin.Context) {
	item, ok := h.catalog.Current().Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
		return
	}
	c.JSON(http.StatusOK, item)
}

// Search handles POST /api/v1/cars/search
func (h *CatalogHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Validate and cap limits
	if req.Limit <= 0 {
		req.Limit = h.defaultLimit
	}
	if req.Limit > h.maxLimit {
		req.Limit = h.maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	// pin one snapshot for the whole request
	cat := h.catalog.Current()
	resolver := service.NewResolver(cat.Vocabulary(), h.aliases, h.thresholds)

	var filters model.FilterSet
	if q := strings.TrimSpace(req.Query); q != "" {
		filters = service.ExtractFilters(q, resolver, model.FilterSet{}).Filters
		filters.FreeText = ""
	}
	overlayExplicit(&filters, req)
	filters = resolver.Validate(filters)

	resp := model.SearchResponse{
		Offset:  req.Offset,
		Limit:   req.Limit,
		Filters: filters,
		Items:   []model.CatalogItem{},
	}
	// an explicit name that matches nothing in the catalog yields no rows
	if unresolved(req, filters) {
		c.JSON(http.StatusOK, resp)
		return
	}

	rows := cat.Search(filters)
	resp.Total = len(rows)
	resp.Items = service.Window(rows, req.Offset, req.Limit)
	c.JSON(http.StatusOK, resp)
}

func overlayExplicit(f *model.FilterSet, req model.SearchRequest) {
	if s := strings.TrimSpace(req.Brand); s != "" {
		f.Brand = model.Str(s)
	}
	if s := strings.TrimSpace(req.Model); s != "" {
		f.Model = model.Str(s)
	}
	if s := strings.TrimSpace(req.Version); s != "" {
		f.Version = model.Str(s)
	}
	if req.YearMin != nil {
		f.YearMin = req.YearMin
	}
	if req.YearMax != nil {
		f.YearMax = req.YearMax
	}
	if req.PriceMin != nil {
		f.PriceMin = req.PriceMin
	}
	if req.PriceMax != nil {
		f.PriceMax = req.PriceMax
	}
	if req.KmMax != nil {
		f.KmMax = req.KmMax
	}
}

func unresolved(req model.SearchRequest, f model.FilterSet) bool {
	return (strings.TrimSpace(req.Brand) != "" && f.Brand == nil) ||
		(strings.TrimSpace(req.Model) != "" && f.Model == nil) ||
		(strings.TrimSpace(req.Version) != "" && f.Version == nil)
}
