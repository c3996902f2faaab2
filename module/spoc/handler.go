package spoc

import (
	"net/http"
	"strings"
	"time"

	midsec "github.com/anandbobba/Innovex-Service/middleware/security"
	"github.com/anandbobba/Innovex-Service/service/session"
	"github.com/anandbobba/Innovex-Service/tools/errs"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	store session.Store
	pin   string
	ttl   time.Duration
}

func NewHandler(store session.Store, pin string, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	return &Handler{store: store, pin: pin, ttl: ttl}
}

type unlockBody struct {
	Pin string `json:"pin"`
}

// HandleUnlock issues a session. The shared PIN grants a full-access session;
// any other non-empty string is taken as a SPOC id and the session is bound
// to it. There is no SPOC registry to check against.
func (h *Handler) HandleUnlock(c *gin.Context) {
	var body unlockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		code, msg := errs.CodeOf(errs.ErrValidation.WithDetail(err.Error()))
		c.JSON(code, gin.H{"error": msg})
		return
	}
	pin := strings.TrimSpace(body.Pin)
	if pin == "" {
		code, msg := errs.CodeOf(errs.ErrValidation.WithDetail("pin is required"))
		c.JSON(code, gin.H{"error": msg})
		return
	}

	method := "spoc"
	spocID := pin
	if pin == h.pin {
		method = "pin"
		spocID = ""
	}

	sess, err := h.store.Issue(c.Request.Context(), spocID, h.ttl)
	if err != nil {
		code, msg := errs.CodeOf(err)
		c.JSON(code, gin.H{"error": msg})
		return
	}

	resp := gin.H{
		"token":     sess.Token,
		"expiresIn": int(h.ttl.Seconds()),
		"method":    method,
	}
	if sess.SpocID != "" {
		resp["spocId"] = sess.SpocID
	}
	c.JSON(http.StatusOK, resp)
}

// HandleValidate reports whether the presented token is still live.
func (h *Handler) HandleValidate(c *gin.Context) {
	tok := midsec.TokenFromRequest(c)
	if tok == "" {
		c.JSON(http.StatusForbidden, gin.H{"ok": false})
		return
	}
	sess, err := h.store.Get(c.Request.Context(), tok)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"ok": false})
		return
	}
	resp := gin.H{"ok": true}
	if sess.SpocID != "" {
		resp["spocId"] = sess.SpocID
	}
	c.JSON(http.StatusOK, resp)
}
