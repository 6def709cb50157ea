package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/taskflow/vacation/client"
)

const sessionCookie = "session"

// writeSession stores the API session as a base64 JSON cookie. The cookie is
// HttpOnly; the bearer token inside it never reaches page scripts.
func writeSession(w http.ResponseWriter, s *client.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// readSession restores the session from the request cookie.
func readSession(r *http.Request) (*client.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil, false
	}
	var s client.Session
	if err := json.Unmarshal(b, &s); err != nil || s.Token == "" {
		return nil, false
	}
	return &s, true
}
