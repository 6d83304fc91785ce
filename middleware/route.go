package middleware

import (
	"github.com/gin-gonic/gin"

	midsec "linguachat/middleware/security"
	security "linguachat/tools/security"
)

type RouteOpt struct {
	IsAuth bool
}

// POST/GET wrap route registration so authenticated routes all share one auth
// middleware instance.

func POST(r gin.IRoutes, auth security.Options, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path, midsec.Middleware(auth), handler)
	} else {
		r.POST(path, handler)
	}
}

func GET(r gin.IRoutes, auth security.Options, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path, midsec.Middleware(auth), handler)
	} else {
		r.GET(path, handler)
	}
}
