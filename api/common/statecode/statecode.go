package statecode

import "net/http"

const (
	CommonSuccess      = 0
	CommonErrServerErr = 7000
	ParameterEmptyErr  = 7001
	NetworkEmpty       = 7002
	NetworkErr         = 7003
	NameEmpty          = 7004
	ContractNotFound   = 7404
)

var messages = map[int]string{
	CommonSuccess:      "Success",
	CommonErrServerErr: "Server error",
	ParameterEmptyErr:  "Parameter is empty",
	NetworkEmpty:       "Network is empty",
	NetworkErr:         "Network not supported",
	NameEmpty:          "Contract name is empty",
	ContractNotFound:   "Contract not deployed on this network",
}

// GetMsg returns the message of code.
func GetMsg(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[CommonErrServerErr]
}

// HttpStatus 状态码对应的 http status
func HttpStatus(code int) int {
	switch code {
	case CommonSuccess:
		return http.StatusOK
	case ContractNotFound:
		return http.StatusNotFound
	case CommonErrServerErr:
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
