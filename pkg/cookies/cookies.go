package cookies

import (
	"net/http"
	"time"
)

// Name of the refresh-token cookie.
const Name = "jwt"

// Refresh builds the HTTP-only refresh cookie. SameSite=None so the cookie
// travels on cross-site requests from the browser client; None requires
// Secure, which is only relaxed for local development.
func Refresh(value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	}
}

func Clear(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
	}
}
