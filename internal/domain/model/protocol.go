package model

import "strings"

type Protocol struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

var knownProtocols = map[string]Protocol{
	"0x2626664c2603336e57b271c5c0b26f421741e481": {Name: "Uniswap V3", URL: "https://app.uniswap.org"},
	"0xcf77a3ba9a5ca399b7c97c74d54e5b1beb874e43": {Name: "Aerodrome", URL: "https://aerodrome.finance"},
	"0x327df1e6de05895d2ab08513aadd9313fe505d86": {Name: "BaseSwap", URL: "https://baseswap.fi"},
	"0x00000000000000adc04c56bf30ac9d3c0aaf14dc": {Name: "OpenSea", URL: "https://opensea.io"},
	"0x4ccb0bb02fcaba27e82a56646e81d8c5bc4119a5": {Name: "Base Names", URL: "https://www.base.org/names"},
	"0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48": {Name: "Coinbase", URL: "https://www.coinbase.com"},
}

// DetectProtocol looks up the destination contract in the known protocol
// table. It returns nil for unknown or empty addresses.
func DetectProtocol(to string) *Protocol {
	key := strings.ToLower(strings.TrimSpace(to))
	if key == "" {
		return nil
	}
	p, ok := knownProtocols[key]
	if !ok {
		return nil
	}
	return &p
}
