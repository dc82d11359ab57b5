package constant

// 响应码。回调应答的 0/1 是上游约定,不要挪动。
const (
	CodeSuccess          = 0
	CodeSignatureInvalid = 1

	CodeMissingParams   = 1001
	CodeParamsTypeError = 1002
	CodeGatewayError    = 2001
	CodeOrderNotFound   = 2002
	CodeSystemError     = 5000
)

type ErrorInfo struct {
	CN string
	EN string
}

var errorMessages = map[int]ErrorInfo{
	CodeSuccess:          {"成功", "Success"},
	CodeSignatureInvalid: {"签名无效", "signature invalid"},
	CodeMissingParams:    {"缺少必填参数", "Missing required params"},
	CodeParamsTypeError:  {"参数类型错误", "Invalid params type"},
	CodeGatewayError:     {"上游网关请求失败", "Upstream gateway error"},
	CodeOrderNotFound:    {"订单不存在", "Order not found"},
	CodeSystemError:      {"系统错误", "System error"},
}

func GetErrorInfo(code int) (ErrorInfo, bool) {
	info, ok := errorMessages[code]
	return info, ok
}
