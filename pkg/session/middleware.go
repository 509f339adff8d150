package session

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/unitprice/pkg/httpx"
	"github.com/ghuser/unitprice/pkg/logger"
)

// Name is the session cookie name.
const Name = "unitprice_session"

const ownerIDValueKey = "owner_id"

// RequireSession is a chi middleware that gives every caller an anonymous
// owner id. The id is read from the session cookie; when the cookie is
// missing, unreadable or holds a malformed id, a new id is minted and the
// session is saved before the handler runs.
//
// After this middleware, handlers can call session.OwnerIDFromCtx(r.Context()).
func RequireSession(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Get(r, Name)
			if err != nil {
				// The store still hands back a usable fresh session here.
				log.WarnContext(r.Context(), "failed to load session, starting a new session", "error", err)
			}
			if sess == nil {
				httpx.JSONError(w, http.StatusInternalServerError, "session unavailable")
				return
			}

			ownerID, ok := ownerIDFromSession(sess)
			if !ok {
				ownerID = uuid.New()
				sess.Values[ownerIDValueKey] = ownerID.String()
				if err := sess.Save(r, w); err != nil {
					log.ErrorContext(r.Context(), "failed to save session", "error", err)
					httpx.JSONError(w, http.StatusInternalServerError, "session unavailable")
					return
				}
				log.DebugContext(r.Context(), "session started", "owner_id", ownerID)
			}

			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

func ownerIDFromSession(sess *sessions.Session) (uuid.UUID, bool) {
	raw, ok := sess.Values[ownerIDValueKey].(string)
	if !ok || raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
