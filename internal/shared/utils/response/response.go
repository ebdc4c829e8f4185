package response

import "github.com/gin-gonic/gin"

// Envelope is the JSON shape every handler returns, success or error.
type Envelope struct {
	Status     string      `json:"status"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Errors     interface{} `json:"errors,omitempty"`
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Envelope{
		Status:     "success",
		StatusCode: code,
		Message:    message,
		Data:       data,
	})
}

func Error(c *gin.Context, code int, message string, errs interface{}) {
	c.JSON(code, Envelope{
		Status:     "error",
		StatusCode: code,
		Message:    message,
		Errors:     errs,
	})
}
