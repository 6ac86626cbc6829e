package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the success envelope returned by every JSON endpoint
type Body struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorBody carries a human readable reason for any non-2xx response
type ErrorBody struct {
	Detail string `json:"detail"`
}

// Success 200 {"success":true,"data":...}
func Success(c *gin.Context, data any) {
	Result(c, http.StatusOK, data)
}

// Result writes the success envelope with a custom HTTP status
func Result(c *gin.Context, status int, data any) {
	c.JSON(status, Body{Success: true, Data: data})
}

// Fail writes {"detail":...} with the given status
func Fail(c *gin.Context, status int, detail string) {
	c.JSON(status, ErrorBody{Detail: detail})
}

func AbortWithStatus(c *gin.Context, status int) {
	c.AbortWithStatus(status)
}

// AbortWithStatusJSON stops the handler chain and reports err as the detail
func AbortWithStatusJSON(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, ErrorBody{Detail: err.Error()})
}
