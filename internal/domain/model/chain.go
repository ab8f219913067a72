package model

import "github.com/ethereum/go-ethereum/common/hexutil"

type Chain string

const (
	ChainBase Chain = "base"
)

func (c Chain) String() string {
	return string(c)
}

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkSepolia Network = "sepolia"
)

func (n Network) String() string {
	return string(n)
}

const (
	BaseMainnetChainID int64 = 8453
	BaseSepoliaChainID int64 = 84532
)

type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainDescriptor is the payload a wallet needs to register a network it
// does not know yet (wallet_addEthereumChain).
type ChainDescriptor struct {
	Chain             Chain          `json:"-"`
	Network           Network        `json:"-"`
	ChainID           int64          `json:"-"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// HexChainID returns the 0x-prefixed chain id, e.g. "0x2105" for Base mainnet.
func (d ChainDescriptor) HexChainID() string {
	return hexutil.EncodeUint64(uint64(d.ChainID))
}

// AddChainParams builds the single parameter object for wallet_addEthereumChain.
func (d ChainDescriptor) AddChainParams() map[string]any {
	return map[string]any{
		"chainId":           d.HexChainID(),
		"chainName":         d.ChainName,
		"nativeCurrency":    d.NativeCurrency,
		"rpcUrls":           d.RPCURLs,
		"blockExplorerUrls": d.BlockExplorerURLs,
	}
}

func BaseMainnet() ChainDescriptor {
	return ChainDescriptor{
		Chain:     ChainBase,
		Network:   NetworkMainnet,
		ChainID:   BaseMainnetChainID,
		ChainName: "Base",
		NativeCurrency: NativeCurrency{
			Name:     "Ether",
			Symbol:   "ETH",
			Decimals: 18,
		},
		RPCURLs:           []string{"https://mainnet.base.org"},
		BlockExplorerURLs: []string{"https://basescan.org"},
	}
}

func BaseSepolia() ChainDescriptor {
	return ChainDescriptor{
		Chain:     ChainBase,
		Network:   NetworkSepolia,
		ChainID:   BaseSepoliaChainID,
		ChainName: "Base Sepolia",
		NativeCurrency: NativeCurrency{
			Name:     "Sepolia Ether",
			Symbol:   "ETH",
			Decimals: 18,
		},
		RPCURLs:           []string{"https://sepolia.base.org"},
		BlockExplorerURLs: []string{"https://sepolia.basescan.org"},
	}
}

// DescriptorForChainID returns the known Base descriptor for id.
func DescriptorForChainID(id int64) (ChainDescriptor, bool) {
	switch id {
	case BaseMainnetChainID:
		return BaseMainnet(), true
	case BaseSepoliaChainID:
		return BaseSepolia(), true
	default:
		return ChainDescriptor{}, false
	}
}
