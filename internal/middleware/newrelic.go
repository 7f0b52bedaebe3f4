package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicErrorsMiddleware reports server errors recorded with c.Error on the
// transaction started by nrgin. It must be registered after nrgin.Middleware.
func NewRelicErrorsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}
		txn.AddAttribute("route", c.FullPath())
		if c.Writer.Status() < 500 {
			return
		}
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
