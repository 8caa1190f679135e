package session

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/atiaron/taskflow/internal/models"
)

const (
	cookieName = "taskflow-session"

	keyUserName           = "user_name"
	keyCommunicationStyle = "communication_style"
	keyTimePreferences    = "time_preferences"
)

// Store keeps the display name and chat preferences in a signed cookie.
type Store struct {
	cookies *sessions.CookieStore
}

func NewStore(secret string) *Store {
	cs := sessions.NewCookieStore([]byte(secret))
	cs.Options.HttpOnly = true
	cs.Options.SameSite = http.SameSiteLaxMode
	cs.Options.MaxAge = 60 * 60 * 24 * 30
	return &Store{cookies: cs}
}

// Profile is what a browser session remembers about its user.
type Profile struct {
	UserName    string             `json:"userName"`
	Preferences models.Preferences `json:"preferences"`
}

// Load never fails: an unreadable cookie yields an empty profile.
func (s *Store) Load(r *http.Request) Profile {
	sess, _ := s.cookies.Get(r, cookieName)
	str := func(key string) string {
		v, _ := sess.Values[key].(string)
		return v
	}
	return Profile{
		UserName: str(keyUserName),
		Preferences: models.Preferences{
			CommunicationStyle: str(keyCommunicationStyle),
			TimePreferences:    str(keyTimePreferences),
		},
	}
}

func (s *Store) Save(w http.ResponseWriter, r *http.Request, p Profile) error {
	sess, _ := s.cookies.Get(r, cookieName)
	sess.Values[keyUserName] = p.UserName
	sess.Values[keyCommunicationStyle] = p.Preferences.CommunicationStyle
	sess.Values[keyTimePreferences] = p.Preferences.TimePreferences
	return sess.Save(r, w)
}
