package controllers

import (
	"context"
	"encoding/json"
	"sort"

	"contract-kit/api/common/statecode"
	"contract-kit/api/models/response"
	"contract-kit/api/validate"
	"contract-kit/contract"
	"contract-kit/log"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SummaryLoader is where the deployment summary comes from.
type SummaryLoader interface {
	Summary(ctx context.Context) (contract.Summary, error)
}

// ContractController 处理部署记录相关的 HTTP 请求
type ContractController struct {
	Summaries SummaryLoader
}

// Summary 返回完整的部署摘要文档
func (c *ContractController) Summary(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	summary, err := c.Summaries.Summary(ctx.Request.Context())
	if err != nil {
		log.Logger.Error("load summary", zap.Error(err))
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, summary)
}

// Contract 按网络和名字查找一个已部署合约
func (c *ContractController) Contract(ctx *gin.Context) {
	res := response.Gin{Res: ctx}
	req := validate.ContractQuery{}

	errCode := validate.NewContract().Contract(ctx, &req)
	if errCode != statecode.CommonSuccess {
		res.Response(ctx, errCode, nil)
		return
	}

	summary, err := c.Summaries.Summary(ctx.Request.Context())
	if err != nil {
		log.Logger.Error("load summary", zap.Error(err))
		res.Response(ctx, statecode.CommonErrServerErr, nil)
		return
	}

	view := func(contractABI abi.ABI, address common.Address) response.Contract {
		return response.Contract{
			Network: req.Network,
			Name:    req.Name,
			Address: address.Hex(),
			Events:  sortedKeys(contractABI.Events),
			Methods: sortedKeys(contractABI.Methods),
			Abi:     json.RawMessage(summary[req.Name].ABI),
		}
	}
	result, ok := contract.GetContract(req.Network, view, req.Name, summary).Get()
	if !ok {
		res.Response(ctx, statecode.ContractNotFound, nil)
		return
	}
	res.Response(ctx, statecode.CommonSuccess, result)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
