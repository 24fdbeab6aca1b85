package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"kavak-agent/internal/model"
)

func TestRenderResults(t *testing.T) {
	items := fixtureCatalog().Search(model.FilterSet{Model: model.Str("Sentra")})

	out := RenderResults(model.FilterSet{YearMin: model.Int(2019)}, items, 1, 2)
	// brand and model are echoed when every shown item shares them
	assert.True(t, strings.HasPrefix(out, "🔎 Búsqueda: Nissan • Sentra • año desde 2019 | 2 resultados\n\n*Te recomiendo:*\n\n"))
	assert.Contains(t, out, "1) Nissan Sentra Advance 2021 — $270,000\n   25,000 km • Online • ID 330001\n   Acciones: cotiza 1 con 40k")
	assert.Contains(t, out, "No hay más resultados para mostrar.")
	assert.True(t, strings.HasSuffix(out, quoteCTA))

	out = RenderResults(model.FilterSet{}, items[:1], 1, 12)
	assert.Contains(t, out, "| 12 resultados")
	assert.Contains(t, out, "Ver 5 más: escribe `ver 5 más` (quedan 11).")

	out = RenderResults(model.FilterSet{}, items[1:], 12, 12)
	assert.Contains(t, out, "12) Nissan Sentra Exclusive 2019")
	assert.NotContains(t, out, "Ver ")
}

func TestRenderResults_MixedItemsHaveNoEcho(t *testing.T) {
	cat := fixtureCatalog()
	a, _ := cat.Get("340001")
	b, _ := cat.Get("350001")
	out := RenderResults(model.FilterSet{}, []model.CatalogItem{a, b}, 1, 2)
	assert.Contains(t, out, "🔎 Búsqueda: Todos los autos | 2 resultados")
}

func TestRenderNoResults(t *testing.T) {
	out := RenderResults(model.FilterSet{Brand: model.Str("Nissan"), PriceMax: model.Float(100000)}, nil, 1, 0)
	assert.Equal(t, "🔎 Búsqueda: Nissan • hasta $100,000 | 0 resultados\n\n"+
		"No encontré autos con esos criterios. No hay unidades por debajo de $100,000.\n"+
		"¿Ajustamos presupuesto o marca/modelo?", out)

	out = RenderNoResults(model.FilterSet{})
	assert.NotContains(t, out, "por debajo")
	assert.NotEqual(t, endOfResultsText, out)
}

func TestRenderQuoteAndDetails(t *testing.T) {
	item, _ := fixtureCatalog().Get("322722")
	out := RenderQuote(item, 40000, 36, 0.10, 7292.35)
	assert.Equal(t, "*Cotización #322722*\nNissan Versa Sense 2020\nPrecio: $265,999 • Enganche: $40,000\n"+
		"Plazo: 36 meses • Tasa anual: 10.0%\n*Mensualidad aprox:* $7,292\n\n¿Te comparto el detalle y requisitos?", out)

	details := RenderDetails(model.LastAction{Kind: model.ActionQuote, DownPayment: 40000, TermMonths: 36, AnnualRate: 0.10})
	assert.Contains(t, details, "• Enganche desde $40,000 (sujeto a aprobación).")
	assert.Contains(t, details, "• Plazo seleccionado: 36 meses • Tasa ref.: 10.0% anual.")
}

func TestRenderFinancePlan(t *testing.T) {
	plan := model.FinancePlan{{TermMonths: 36, MonthlyPayment: 9680.16}, {TermMonths: 72, MonthlyPayment: 5557.6}}
	assert.Equal(t, "*Mensualidades aproximadas:*\nPrecio $350,000 • Enganche $50,000\n- 36 meses: $9,680\n- 72 meses: $5,558",
		RenderFinancePlan(350000, 50000, plan))
}

func TestRenderLeadSummary(t *testing.T) {
	assert.Equal(t, "¡Listo! Un asesor te contactará en breve.\nNombre: Ana | Email: ana@mail.com | Interés en ID #322722",
		RenderLeadSummary(model.Lead{Name: "Ana", Email: "ana@mail.com", CarID: "322722"}))
	assert.Equal(t, "¡Listo! Un asesor te contactará en breve.\nNombre: (sin nombre) | Tel: +525512345678",
		RenderLeadSummary(model.Lead{Phone: "+525512345678"}))
}
