package service

import (
	"fmt"
	"strconv"
	"strings"

	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

const quoteCTA = "Para cotizar: `cotiza <número de opción> con 40 mil pesos` o `cotiza <ID del auto> con 40 mil pesos`."

func money(v float64) string {
	return "$" + utils.FormatThousands(v)
}

// chipLine renders the filter header. Brand, model and version are echoed
// from the shown items when they all share one value.
func chipLine(f model.FilterSet, shown []model.CatalogItem) string {
	f = f.Clone()
	if len(shown) > 0 {
		if f.Brand == nil {
			f.Brand = sharedValue(shown, func(it model.CatalogItem) string { return it.Brand })
		}
		if f.Model == nil {
			f.Model = sharedValue(shown, func(it model.CatalogItem) string { return it.Model })
		}
		if f.Version == nil {
			f.Version = sharedValue(shown, func(it model.CatalogItem) string { return it.Version })
		}
	}
	chips := f.Chips()
	if len(chips) == 0 {
		return "Todos los autos"
	}
	return strings.Join(chips, " • ")
}

func sharedValue(items []model.CatalogItem, field func(model.CatalogItem) string) *string {
	first := field(items[0])
	if first == "" {
		return nil
	}
	for _, it := range items[1:] {
		if looseKey(field(it)) != looseKey(first) {
			return nil
		}
	}
	return &first
}

func resultsLabel(total int) string {
	if total == 1 {
		return "1 resultado"
	}
	return strconv.Itoa(total) + " resultados"
}

func renderCard(idx int, it model.CatalogItem) string {
	return fmt.Sprintf("%d) %s — %s\n   %s km • %s • ID %s\n   Acciones: cotiza %d con 40k",
		idx, it.Title(), money(it.Price), utils.FormatThousands(float64(it.Km)), it.Location, it.ID, idx)
}

// RenderResults renders one page of a search. firstIndex is the display
// number of the first item on the page; total is the full match count.
func RenderResults(f model.FilterSet, page []model.CatalogItem, firstIndex, total int) string {
	if total == 0 {
		return RenderNoResults(f)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 Búsqueda: %s | %s\n\n*Te recomiendo:*\n\n", chipLine(f, page), resultsLabel(total))
	for i, it := range page {
		b.WriteString(renderCard(firstIndex+i, it))
		b.WriteString("\n\n")
	}

	remaining := total - (firstIndex - 1) - len(page)
	if remaining > 0 {
		next := min(remaining, model.DefaultPageSize)
		fmt.Fprintf(&b, "Ver %d más: escribe `ver %d más` (quedan %d).\n", next, next, remaining)
	} else {
		b.WriteString("No hay más resultados para mostrar. ¿Ajustamos la búsqueda (precio, año, marca/modelo)?\n")
	}
	b.WriteString(quoteCTA)
	return b.String()
}

// RenderNoResults is the zero-match reply. It differs from the
// end-of-results reply given when paging past the last item.
func RenderNoResults(f model.FilterSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 Búsqueda: %s | 0 resultados\n\nNo encontré autos con esos criterios.", chipLine(f, nil))
	if f.PriceMax != nil {
		fmt.Fprintf(&b, " No hay unidades por debajo de %s.", money(*f.PriceMax))
	}
	b.WriteString("\n¿Ajustamos presupuesto o marca/modelo?")
	return b.String()
}

// RenderQuote renders a single-car quote.
func RenderQuote(it model.CatalogItem, down float64, term int, annualRate float64, monthly float64) string {
	return fmt.Sprintf("*Cotización #%s*\n%s\nPrecio: %s • Enganche: %s\nPlazo: %d meses • Tasa anual: %.1f%%\n*Mensualidad aprox:* %s\n\n¿Te comparto el detalle y requisitos?",
		it.ID, it.Title(), money(it.Price), money(down), term, annualRate*100, money(monthly))
}

// RenderDetails is the follow-up to a confirmed quote.
func RenderDetails(last model.LastAction) string {
	return fmt.Sprintf(detailsAfterQuoteFormat, utils.FormatThousands(last.DownPayment), last.TermMonths, last.AnnualRate*100)
}

// RenderFinancePlan lists the monthly payment per term.
func RenderFinancePlan(price, down float64, plan model.FinancePlan) string {
	lines := []string{"*Mensualidades aproximadas:*", fmt.Sprintf("Precio %s • Enganche %s", money(price), money(down))}
	for _, p := range plan {
		lines = append(lines, fmt.Sprintf("- %d meses: %s", p.TermMonths, money(p.MonthlyPayment)))
	}
	return strings.Join(lines, "\n")
}

// RenderLeadSummary confirms a captured lead.
func RenderLeadSummary(l model.Lead) string {
	name := l.Name
	if name == "" {
		name = "(sin nombre)"
	}
	parts := []string{"Nombre: " + name}
	if l.Email != "" {
		parts = append(parts, "Email: "+l.Email)
	}
	if l.Phone != "" {
		parts = append(parts, "Tel: "+l.Phone)
	}
	if l.CarID != "" {
		parts = append(parts, "Interés en ID #"+l.CarID)
	}
	return "¡Listo! Un asesor te contactará en breve.\n" + strings.Join(parts, " | ")
}
