package handler

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/xml"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kavak-agent/internal/service"
)

// DefaultChunkSize is the longest WhatsApp message sent in one piece.
const DefaultChunkSize = 1200

// WhatsAppOptions configures the Twilio webhook.
type WhatsAppOptions struct {
	ValidateSignature bool
	AuthToken         string
	// PublicBaseURL is the externally visible scheme://host the signature
	// was computed against. Empty means derive it from the request.
	PublicBaseURL string
	ChunkSize     int
}

// WhatsAppHandler handles the Twilio WhatsApp webhook
type WhatsAppHandler struct {
	chat   TurnHandler
	opts   WhatsAppOptions
	logger *zap.Logger
}

// NewWhatsAppHandler creates a new WhatsApp webhook handler
func NewWhatsAppHandler(chat TurnHandler, opts WhatsAppOptions, logger *zap.Logger) *WhatsAppHandler {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &WhatsAppHandler{chat: chat, opts: opts, logger: logger}
}

type twimlResponse struct {
	XMLName  xml.Name `xml:"Response"`
	Messages []string `xml:"Message"`
}

// Webhook handles POST /webhooks/whatsapp
func (h *WhatsAppHandler) Webhook(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form: " + err.Error()})
		return
	}
	form := c.Request.PostForm

	if h.opts.ValidateSignature {
		sig := c.GetHeader("X-Twilio-Signature")
		if !ValidTwilioSignature(h.opts.AuthToken, h.webhookURL(c), form, sig) {
			h.logger.Warn("rejected webhook with invalid signature", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
			return
		}
	}

	sender := strings.TrimSpace(form.Get("WaId"))
	if sender == "" {
		sender = strings.TrimPrefix(strings.TrimSpace(form.Get("From")), "whatsapp:")
	}
	if sender == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing sender"})
		return
	}

	reply := h.chat.Handle(c.Request.Context(), "whatsapp:"+sender, form.Get("Body"))
	if strings.TrimSpace(reply) == "" {
		reply = service.WelcomeText
	}

	out, err := xml.Marshal(twimlResponse{Messages: ChunkMessage(reply, h.opts.ChunkSize)})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode reply"})
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

func (h *WhatsAppHandler) webhookURL(c *gin.Context) string {
	if h.opts.PublicBaseURL != "" {
		return h.opts.PublicBaseURL + c.Request.URL.RequestURI()
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

// TwilioSignature computes the X-Twilio-Signature for a form POST: the URL
// followed by every key and value sorted by key, HMAC-SHA1 with the auth
// token, base64 encoded.
func TwilioSignature(authToken, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		vals := append([]string(nil), form[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// ValidTwilioSignature reports whether sig matches the expected signature.
func ValidTwilioSignature(authToken, fullURL string, form url.Values, sig string) bool {
	if authToken == "" || sig == "" {
		return false
	}
	want := TwilioSignature(authToken, fullURL, form)
	return hmac.Equal([]byte(want), []byte(sig))
}

// ChunkMessage splits text into pieces of at most size runes, breaking at
// the last newline in the second half of a piece when there is one.
func ChunkMessage(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out []string
	rest := []rune(text)
	for len(rest) > size {
		cut := size
		for i := size; i > size/2; i-- {
			if rest[i-1] == '\n' {
				cut = i
				break
			}
		}
		if piece := strings.TrimRight(string(rest[:cut]), "\n"); piece != "" {
			out = append(out, piece)
		}
		rest = rest[cut:]
	}
	if len(rest) > 0 || len(out) == 0 {
		out = append(out, string(rest))
	}
	return out
}
