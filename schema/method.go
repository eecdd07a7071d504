package schema

const (
	MethodRequestAccounts = "request_accounts"
	MethodGetAccounts     = "get_accounts"
	MethodGetBalance      = "get_balance"
	MethodSendTransaction = "send_transaction"
	MethodGetNetwork      = "get_network"
)
