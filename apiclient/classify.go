package apiclient

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"
)

// RequestContext captures what Dispatch knew at send time: method, target path
// and the marshalled body. It exists only so a failure can be classified
// retroactively, after the response has come back.
type RequestContext struct {
	Method string
	Path   string
	Body   []byte
}

// Classification is the pure outcome of looking at a response. Classification
// never swallows anything; the response is always re-surfaced to the caller
// and ForceLogout is only an additional side effect.
type Classification struct {
	ForceLogout bool
}

// Classify decides whether a response should evict the session.
//
// A 401 is recoverable - handled by the originating caller, no eviction - if
// and only if the request was a PUT to the self-update endpoint carrying a
// password-change field. A failed self-service password change legitimately
// returns 401 (wrong current password) and must not end the active session.
// Every other 401 forces logout. No other status has a session side effect.
func Classify(req RequestContext, statusCode int) Classification {
	if statusCode != http.StatusUnauthorized {
		return Classification{}
	}
	if isRecoverablePasswordChange(req) {
		return Classification{}
	}
	return Classification{ForceLogout: true}
}

func isRecoverablePasswordChange(req RequestContext) bool {
	if req.Method != http.MethodPut {
		return false
	}
	if normalisePath(req.Path) != selfEndpoint {
		return false
	}
	var body struct {
		Password string `json:"password"`
	}
	if err := json.Unmarshal(req.Body, &body); err != nil {
		return false
	}
	return body.Password != ""
}

func normalisePath(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}
