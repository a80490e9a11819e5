package routes

import (
	"contract-kit/api/controllers"
	"contract-kit/config"

	"github.com/gin-gonic/gin"
)

// InitRoute 注册 /api/<version> 下的路由
func InitRoute(e *gin.Engine, conf config.EnvConfig, summaries controllers.SummaryLoader) *gin.Engine {
	version := conf.Version
	if version == "" {
		version = "v1"
	}
	v := e.Group("/api/" + version)

	contractController := controllers.ContractController{Summaries: summaries}
	v.GET("/summary", contractController.Summary)
	v.GET("/contracts/:network/:name", contractController.Contract)
	return e
}
