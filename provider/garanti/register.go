package garanti

import "github.com/mstgnz/posgate/provider"

func init() {
	provider.Register("garanti", NewProvider)
}
