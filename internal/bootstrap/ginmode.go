package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode switches gin to release mode in production.
func SetGinMode(production bool) {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
}
