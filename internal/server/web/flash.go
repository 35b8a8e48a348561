package web

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

const flashTTL = 5 * time.Minute

// Flash kinds, used as CSS classes.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message carried across a redirect. Link is only set
// for the development-mode password reset link.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"msg"`
	Link    string `json:"link,omitempty"`
}

type flashClaims struct {
	jwt.RegisteredClaims
	Flash
}

// flashes stores a Flash in a signed cookie so it cannot be forged to
// inject links into a page.
type flashes struct {
	secret []byte
	secure bool
}

func (f *flashes) set(w http.ResponseWriter, fl Flash) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, flashClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(flashTTL))},
		Flash:            fl,
	})
	s, err := token.SignedString(f.secret)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     common.FlashCookieName,
		Value:    s,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// pop returns the pending flash, if any, and clears it.
func (f *flashes) pop(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(common.FlashCookieName)
	if err != nil {
		return nil
	}
	clearCookie(w, common.FlashCookieName, f.secure)

	claims := &flashClaims{}
	_, err = jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (any, error) {
		return f.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil
	}
	return &claims.Flash
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
