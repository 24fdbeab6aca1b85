package service

import (
	"regexp"
	"strconv"
	"strings"

	"kavak-agent/internal/model"
	"kavak-agent/internal/utils"
)

var (
	greetRe      = regexp.MustCompile(`^\s*(?:hola+|buenas|buenos dias|hey|hi|hello|menu|start|inicio)\b`)
	helpRe       = regexp.MustCompile(`\b(?:ayuda|help|que puedes|como me ayudas)\b`)
	yesRe        = regexp.MustCompile(`^(?:si|sip|claro|vale|ok|okay|dale|de acuerdo|correcto|adelante|por favor|si por favor|me interesa)$`)
	noRe         = regexp.MustCompile(`^(?:no|nop|no gracias|luego|despues|gracias|mas tarde)$`)
	contactRe    = regexp.MustCompile(`(?i)^\s*(contact(?:o|arme|ame)|asesor|ll[aá]mame|llamada)\b(.*)$`)
	quoteRe      = regexp.MustCompile(`(?:^|\s)cotiza(?:r|me)?\s+(?:(?:el|la|id|opcion|auto|numero)\s+)*#?(\d{1,9})\s+(?:con\s+)?(?:un\s+)?(?:enganche\s+de\s+)?(` + utils.MoneyPattern + `)`)
	termRe       = regexp.MustCompile(`(?:a|en)\s*(\d{2,3})\s*mes(?:es)?\b`)
	rateRe       = regexp.MustCompile(`(?:tasa|interes)\s*(?:de\s*)?\d`)
	paginateRe   = regexp.MustCompile(`\bver\s+(?:(\d+)\s*mas|mas(?:\s+(\d+))?)\b|^(?:siguientes?|mas resultados)(?:\s+(\d+))?\b`)
	financeRe    = regexp.MustCompile(`mensualidad|enganche|plazo|financia`)
	knowledgeRe  = regexp.MustCompile(`garanti|devoluc|proceso|entrega|tiempo|politica`)
	searchWordRe = regexp.MustCompile(`\b(?:busca|busco|buscar|buscame|encuentra|quiero|necesito|muestrame|ensename|recomienda|recomiendame|tienes|hay|me interesa)\b`)
	emailRe      = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)
	phoneRe      = regexp.MustCompile(`\+?\d[\d\s-]{5,}\d`)
)

var valuePropPhrases = []string{
	"propuesta de valor",
	"propuesta valor",
	"valor de kavak",
	"por que kavak",
	"porque kavak",
	"por que elegir kavak",
	"porque elegir kavak",
	"por que elegir a kavak",
	"por que comprar en kavak",
	"por que comprar con kavak",
	"por que en kavak",
	"que ofrece kavak",
	"por que confiar en kavak",
	"porque confiar en kavak",
}

// TermSet answers whether a token names something in the catalog.
type TermSet interface {
	HasTerm(tok string) bool
}

// Classifier maps a message to an intent. It is stateless and the first
// matching rule wins.
type Classifier struct {
	aliases *AliasTables
}

func NewClassifier(aliases *AliasTables) *Classifier {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Classifier{aliases: aliases}
}

// Classify returns the intent of raw. terms may be nil.
func (c *Classifier) Classify(raw string, terms TermSet) model.Intent {
	norm := utils.Normalize(raw)
	bare := strings.Trim(norm, " ¡!¿?.,…")

	switch {
	case matchesValueProp(norm):
		return model.IntentValueProp
	case greetRe.MatchString(bare):
		return model.IntentGreet
	case helpRe.MatchString(norm):
		return model.IntentHelp
	case yesRe.MatchString(bare):
		return model.IntentConfirmYes
	case noRe.MatchString(bare):
		return model.IntentConfirmNo
	case contactRe.MatchString(raw):
		return model.IntentContact
	case quoteRe.MatchString(norm):
		return model.IntentQuote
	case paginateRe.MatchString(bare):
		return model.IntentPaginate
	case financeRe.MatchString(norm):
		return model.IntentFinance
	case knowledgeRe.MatchString(norm):
		return model.IntentKnowledge
	case c.looksLikeSearch(norm, terms):
		return model.IntentSearch
	default:
		return model.IntentHelp
	}
}

func matchesValueProp(norm string) bool {
	for _, p := range valuePropPhrases {
		if strings.Contains(norm, p) {
			return true
		}
	}
	return false
}

func (c *Classifier) looksLikeSearch(norm string, terms TermSet) bool {
	if searchWordRe.MatchString(norm) || removalRe.MatchString(norm) {
		return true
	}
	if _, ok := utils.ExtractYear(norm); ok {
		return true
	}
	if lo, hi := utils.ExtractPriceBounds(norm); lo != nil || hi != nil {
		return true
	}
	if _, ok := utils.ExtractKmMax(norm); ok {
		return true
	}
	for _, tok := range strings.Fields(looseKey(norm)) {
		if _, ok := c.aliases.Brand[tok]; ok {
			return true
		}
		if _, ok := c.aliases.Model[tok]; ok {
			return true
		}
		if terms != nil && terms.HasTerm(tok) {
			return true
		}
	}
	return false
}

// QuoteRequest is a parsed "cotiza <ref> con <enganche> [a <n> meses]".
type QuoteRequest struct {
	CarRef       string
	DownPayment  float64
	TermMonths   int // 0 when not given
	MentionsRate bool
}

// ParseQuote extracts a quote request from raw.
func ParseQuote(raw string) (QuoteRequest, bool) {
	norm := utils.Normalize(raw)
	m := quoteRe.FindStringSubmatch(norm)
	if m == nil {
		return QuoteRequest{}, false
	}
	down, ok := utils.ParseMoney(m[2])
	if !ok {
		return QuoteRequest{}, false
	}
	return QuoteRequest{
		CarRef:       m[1],
		DownPayment:  down,
		TermMonths:   parseTerm(norm),
		MentionsRate: rateRe.MatchString(norm),
	}, true
}

func parseTerm(norm string) int {
	m := termRe.FindStringSubmatch(norm)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// ParsePagination returns the requested count of "ver N más", or 0 when
// no count was given.
func ParsePagination(raw string) (int, bool) {
	bare := strings.Trim(utils.Normalize(raw), " ¡!¿?.,…")
	m := paginateRe.FindStringSubmatch(bare)
	if m == nil {
		return 0, false
	}
	for _, g := range m[1:] {
		if g == "" {
			continue
		}
		if n, err := strconv.Atoi(g); err == nil {
			return n, true
		}
	}
	return 0, true
}

// ContactRequest is the contact data found in a contact message.
type ContactRequest struct {
	Name  string
	Email string
	Phone string
}

var contactFiller = map[string]struct{}{
	"al": {}, "a": {}, "mi": {}, "es": {}, "soy": {}, "nombre": {}, "correo": {},
	"email": {}, "telefono": {}, "teléfono": {}, "tel": {}, "numero": {}, "número": {},
	"y": {}, "con": {}, "por": {}, "favor": {}, "me": {}, "llamo": {},
}

// ParseContact extracts name, email and phone from a contact message. The
// phone must carry 7 to 15 digits.
func ParseContact(raw string) (ContactRequest, bool) {
	m := contactRe.FindStringSubmatch(raw)
	if m == nil {
		return ContactRequest{}, false
	}
	tail := strings.TrimSpace(m[2])

	var req ContactRequest
	if e := emailRe.FindString(tail); e != "" {
		req.Email = e
		tail = strings.Replace(tail, e, " ", 1)
	}
	for _, p := range phoneRe.FindAllString(tail, -1) {
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, p)
		if len(digits) < 7 || len(digits) > 15 {
			continue
		}
		req.Phone = digits
		if strings.HasPrefix(strings.TrimSpace(p), "+") {
			req.Phone = "+" + digits
		}
		tail = strings.Replace(tail, p, " ", 1)
		break
	}

	var name []string
	for _, w := range strings.Fields(tail) {
		w = strings.Trim(w, ",;:.!¡¿?")
		if w == "" {
			continue
		}
		if _, filler := contactFiller[strings.ToLower(w)]; filler {
			continue
		}
		name = append(name, w)
	}
	req.Name = strings.Join(name, " ")
	return req, true
}

var (
	financeDownRe  = regexp.MustCompile(`(?:enganche\s+de|con(?:\s+un)?(?:\s+enganche\s+de)?)\s*(` + utils.MoneyPattern + `)`)
	financeMoneyRe = regexp.MustCompile(utils.MoneyPattern)
)

// FinanceRequest is a parsed "mensualidades de <precio> con <enganche>".
type FinanceRequest struct {
	Price       float64
	DownPayment float64
	TermMonths  int // 0 when not given
}

// ParseFinance reads price, down payment and an optional term. It fails
// when price or down payment is missing.
func ParseFinance(raw string) (FinanceRequest, bool) {
	norm := utils.Normalize(raw)
	req := FinanceRequest{TermMonths: parseTerm(norm)}

	rest := termRe.ReplaceAllString(norm, " ")
	if m := financeDownRe.FindStringSubmatchIndex(rest); m != nil {
		if v, ok := utils.ParseMoney(rest[m[2]:m[3]]); ok {
			req.DownPayment = v
			rest = rest[:m[0]] + " " + rest[m[1]:]
		} else {
			return req, false
		}
	} else {
		return req, false
	}

	for _, tok := range financeMoneyRe.FindAllString(rest, -1) {
		if v, ok := utils.ParseMoney(tok); ok && v >= 1000 {
			req.Price = v
			return req, true
		}
	}
	return req, false
}
