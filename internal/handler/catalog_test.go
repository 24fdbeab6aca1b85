package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kavak-agent/internal/model"
	"kavak-agent/internal/service"
)

func testCatalog() *service.CatalogHolder {
	return service.NewCatalogHolder(service.NewCatalog([]model.CatalogItem{
		{ID: "1", Brand: "Nissan", Model: "Versa", Version: "Sense", Year: 2020, Km: 40000, Price: 200000, Location: "CDMX"},
		{ID: "2", Brand: "Nissan", Model: "Sentra", Version: "Advance", Year: 2021, Km: 30000, Price: 290000, Location: "CDMX"},
		{ID: "3", Brand: "Toyota", Model: "Yaris", Version: "S", Year: 2019, Km: 60000, Price: 230000, Location: "Monterrey"},
		{ID: "4", Brand: "Nissan", Model: "Versa", Version: "Exclusive", Year: 2022, Km: 15000, Price: 320000, Location: "Puebla"},
	}))
}

func newCatalogRouter() *gin.Engine {
	h := NewCatalogHandler(testCatalog(), nil, service.MatchThresholds{}, 5, 50)
	r := gin.New()
	r.GET("/api/v1/cars/:id", h.GetCar)
	r.POST("/api/v1/cars/search", h.Search)
	return r
}

func itemIDs(items []model.CatalogItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestCatalogHandler_GetCar(t *testing.T) {
	r := newCatalogRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cars/3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	item := decode[model.CatalogItem](t, w)
	assert.Equal(t, "Yaris", item.Model)
	assert.Equal(t, "Monterrey", item.Location)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/cars/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandler_Search(t *testing.T) {
	r := newCatalogRouter()

	t.Run("explicit brand is canonicalized", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Brand: "nissan"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[model.SearchResponse](t, w)
		assert.Equal(t, 3, resp.Total)
		require.NotNil(t, resp.Filters.Brand)
		assert.Equal(t, "Nissan", *resp.Filters.Brand)
		assert.ElementsMatch(t, []string{"1", "2", "4"}, itemIDs(resp.Items))
	})

	t.Run("free text query", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Query: "nissan menos de 300 mil"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[model.SearchResponse](t, w)
		require.NotNil(t, resp.Filters.Brand)
		assert.Equal(t, "Nissan", *resp.Filters.Brand)
		require.NotNil(t, resp.Filters.PriceMax)
		assert.Equal(t, 300000.0, *resp.Filters.PriceMax)
		assert.Equal(t, 2, resp.Total)
		assert.ElementsMatch(t, []string{"1", "2"}, itemIDs(resp.Items))
	})

	t.Run("numeric bounds", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{YearMin: model.Int(2021)})
		resp := decode[model.SearchResponse](t, w)
		assert.ElementsMatch(t, []string{"2", "4"}, itemIDs(resp.Items))
	})

	t.Run("unknown brand matches nothing", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Brand: "Ferrari"})
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[model.SearchResponse](t, w)
		assert.Zero(t, resp.Total)
		assert.Empty(t, resp.Items)
	})

	t.Run("limits", func(t *testing.T) {
		resp := decode[model.SearchResponse](t, postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Limit: 500}))
		assert.Equal(t, 50, resp.Limit)
		assert.Len(t, resp.Items, 4)

		resp = decode[model.SearchResponse](t, postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Limit: 2, Offset: -3}))
		assert.Equal(t, 0, resp.Offset)
		assert.Equal(t, 4, resp.Total)
		assert.Len(t, resp.Items, 2)

		resp = decode[model.SearchResponse](t, postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Offset: 10}))
		assert.Equal(t, 5, resp.Limit)
		assert.Empty(t, resp.Items)
	})

	t.Run("pages are consistent", func(t *testing.T) {
		all := decode[model.SearchResponse](t, postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{}))
		first := decode[model.SearchResponse](t, postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Limit: 2}))
		second := decode[model.SearchResponse](t, postJSON(t, r, "/api/v1/cars/search", model.SearchRequest{Limit: 2, Offset: 2}))
		assert.Equal(t, itemIDs(all.Items), append(itemIDs(first.Items), itemIDs(second.Items)...))
	})

	t.Run("bad body", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/cars/search", `{"limit": "ten"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
