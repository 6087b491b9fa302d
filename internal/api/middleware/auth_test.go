package middleware

import (
	"Agora/internal/api/dto"
	"Agora/internal/pkg/consts"
	"Agora/internal/pkg/response"
	"Agora/internal/pkg/security"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

type identity struct {
	UserID uint64   `json:"user_id"`
	Roles  []string `json:"roles"`
}

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		response.Success(c, identity{
			UserID: c.GetUint64(consts.UserIDKey),
			Roles:  c.GetStringSlice(consts.RolesKey),
		})
	})
	r.GET("/", handlers...)
	return r
}

func call(t *testing.T, r *gin.Engine, token string) (int, identity) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		dto.Response
		Data identity `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body.Code, body.Data
}

func token(t *testing.T, userID uint64, roles ...string) string {
	t.Helper()
	tok, err := security.GenerateToken(userID, roles)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	r := newTestRouter(AuthMiddleware())

	if code, _ := call(t, r, ""); code != response.Unauthorized {
		t.Fatalf("missing token code = %d", code)
	}
	if code, _ := call(t, r, "garbage"); code != response.Unauthorized {
		t.Fatalf("invalid token code = %d", code)
	}
	code, id := call(t, r, token(t, 7, consts.RoleUser))
	if code != response.Ok || id.UserID != 7 || len(id.Roles) != 1 || id.Roles[0] != consts.RoleUser {
		t.Fatalf("code = %d, identity = %+v", code, id)
	}
}

func TestAuthOptionalMiddleware(t *testing.T) {
	r := newTestRouter(AuthOptionalMiddleware())

	for _, tok := range []string{"", "garbage"} {
		code, id := call(t, r, tok)
		if code != response.Ok || id.UserID != 0 {
			t.Fatalf("token %q: code = %d, identity = %+v", tok, code, id)
		}
	}
	code, id := call(t, r, token(t, 9, consts.RoleUser, consts.RoleAdmin))
	if code != response.Ok || id.UserID != 9 || len(id.Roles) != 2 {
		t.Fatalf("code = %d, identity = %+v", code, id)
	}
}

func TestCheckRoles(t *testing.T) {
	r := newTestRouter(AuthMiddleware(), CheckRoles(consts.RoleAdmin))

	if code, _ := call(t, r, token(t, 3, consts.RoleUser)); code != response.Forbidden {
		t.Fatalf("user code = %d", code)
	}
	if code, id := call(t, r, token(t, 4, consts.RoleAdmin)); code != response.Ok || id.UserID != 4 {
		t.Fatalf("admin code = %d, identity = %+v", code, id)
	}
}
