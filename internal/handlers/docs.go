package handlers

import (
	"net/http"

	"github.com/code-100-precent/LingQfight/pkg/utils/response"
	"github.com/gin-gonic/gin"
)

type UriDoc struct {
	Group   string `json:"group"`
	Path    string `json:"path"`
	Method  string `json:"method"`
	Desc    string `json:"desc"`
	Request string `json:"request,omitempty"`
}

func (h *Handlers) GetDocs() []UriDoc {
	p := h.apiPrefix
	return []UriDoc{
		{
			Group:   "Auth",
			Path:    p + "/auth/login",
			Method:  http.MethodPost,
			Desc:    "Login with username and password. 401 on unknown user or wrong password",
			Request: `{"username":"","password":""}`,
		},
		{
			Group:   "Auth",
			Path:    p + "/auth/register",
			Method:  http.MethodPost,
			Desc:    "Register an account, `username` must be an Admin. 400 when the username exists",
			Request: `{"username":"admin","req":{"username":"","password":"","player_name":"","role":"Player"}}`,
		},
		{
			Group:  "Player",
			Path:   p + "/player/data?account_id={ID}",
			Method: http.MethodGet,
			Desc:   "Player data of an account",
		},
		{
			Group:   "Player",
			Path:    p + "/player/update",
			Method:  http.MethodPut,
			Desc:    "Partial update. Players may only update themselves, Admins anyone",
			Request: `{"username":"caller","req":{"account_id":1,"level":10}}`,
		},
		{
			Group:   "Player",
			Path:    p + "/player/reset?account_id={ID}",
			Method:  http.MethodPost,
			Desc:    "Reset to level 1 / 500 gold. Admin only, body is the caller username as a JSON string",
			Request: `"admin_test"`,
		},
	}
}

func (h *Handlers) handleDocs(c *gin.Context) {
	response.Success(c, h.GetDocs())
}
