package validate

import (
	"errors"

	"contract-kit/api/common/statecode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ContractQuery 合约查询参数，来自路径
type ContractQuery struct {
	Network string `uri:"network" binding:"required,oneof=ganache rinkeby ropsten kovan mainnet"`
	Name    string `uri:"name" binding:"required"`
}

type Contract struct{}

func NewContract() *Contract {
	return &Contract{}
}

// Contract 校验合约查询参数
func (v *Contract) Contract(c *gin.Context, req *ContractQuery) int {
	err := c.ShouldBindUri(req)
	if err == nil {
		return statecode.CommonSuccess
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return statecode.CommonErrServerErr
	}
	for _, e := range errs {
		switch {
		case e.Field() == "Network" && e.Tag() == "required":
			return statecode.NetworkEmpty
		case e.Field() == "Network":
			return statecode.NetworkErr
		case e.Field() == "Name":
			return statecode.NameEmpty
		}
	}
	return statecode.ParameterEmptyErr
}
