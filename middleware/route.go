package middleware

import (
	midsec "github.com/anandbobba/Innovex-Service/middleware/security"
	"github.com/gin-gonic/gin"
)

type RouteOpt struct {
	IsAuth bool
}

// Route wrappers: auth-gated routes get the security middleware, the rest
// mount bare. Keeps the route table in main readable.

func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, sec *midsec.Options, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path, midsec.Middleware(sec), handler)
	} else {
		r.GET(path, handler)
	}
}

func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, sec *midsec.Options, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path, midsec.Middleware(sec), handler)
	} else {
		r.POST(path, handler)
	}
}

func PATCH(r gin.IRoutes, path string, handler gin.HandlerFunc, sec *midsec.Options, opt RouteOpt) {
	if opt.IsAuth {
		r.PATCH(path, midsec.Middleware(sec), handler)
	} else {
		r.PATCH(path, handler)
	}
}

func DELETE(r gin.IRoutes, path string, handler gin.HandlerFunc, sec *midsec.Options, opt RouteOpt) {
	if opt.IsAuth {
		r.DELETE(path, midsec.Middleware(sec), handler)
	} else {
		r.DELETE(path, handler)
	}
}
