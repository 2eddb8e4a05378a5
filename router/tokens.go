package router

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/crudify/di"
)

// Tokens provided by every request scope.
var (
	Request   = di.NewKey[*http.Request]("Request")
	Writer    = di.NewKey[http.ResponseWriter]("Writer")
	Context   = di.NewKey[*gin.Context]("Context")
	Method    = di.NewKey[string]("Method")
	Params    = di.NewKey[gin.Params]("Params")
	Query     = di.NewKey[url.Values]("Query")
	RequestID = di.NewKey[string]("RequestID")
)

// requestProviders builds the values a single request contributes.
func requestProviders(c *gin.Context, id string) []di.Provider {
	return []di.Provider{
		di.UseValue(Request, c.Request),
		di.UseValue(Writer, http.ResponseWriter(c.Writer)),
		di.UseValue(Context, c),
		di.UseValue(Method, c.Request.Method),
		di.UseValue(Params, c.Params),
		di.UseValue(Query, c.Request.URL.Query()),
		di.UseValue(RequestID, id),
	}
}
