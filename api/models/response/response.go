package response

import (
	"contract-kit/api/common/statecode"

	"github.com/gin-gonic/gin"
)

type Gin struct {
	Res *gin.Context
}

type Page struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Response 统一返回格式
func (g *Gin) Response(ctx *gin.Context, code int, data interface{}) {
	g.Res.JSON(statecode.HttpStatus(code), Page{
		Code:    code,
		Message: statecode.GetMsg(code),
		Data:    data,
	})
}

// Contract is one contract as served by the lookup endpoint.
type Contract struct {
	Network string      `json:"network"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Events  []string    `json:"events"`
	Methods []string    `json:"methods"`
	Abi     interface{} `json:"abi"`
}
