package nestpay

import "github.com/mstgnz/posgate/provider"

func init() {
	provider.Register("nestpay", NewProvider)
}
