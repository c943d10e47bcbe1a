package nftptr

import (
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Explorer builds block explorer and marketplace links for a test network.
type Explorer struct {
	Network   string // slug used by the marketplace, e.g. "goerli"
	Etherscan string // base URL without trailing slash
	OpenSea   string // asset base URL without trailing slash
}

var explorers = map[uint64]*Explorer{
	5: {
		Network:   "goerli",
		Etherscan: "https://goerli.etherscan.io",
		OpenSea:   "https://testnets.opensea.io/assets/goerli",
	},
	11155111: {
		Network:   "sepolia",
		Etherscan: "https://sepolia.etherscan.io",
		OpenSea:   "https://testnets.opensea.io/assets/sepolia",
	},
}

// ExplorerFor returns the explorer of a recognized test network, or nil.
func ExplorerFor(networkID uint64) *Explorer {
	return explorers[networkID]
}

// AddressURL links to an account page.
func (e *Explorer) AddressURL(addr common.Address) string {
	return e.Etherscan + "/address/" + lowerHex(addr)
}

// TokenURL links to a token contract page.
func (e *Explorer) TokenURL(addr common.Address) string {
	return e.Etherscan + "/token/" + lowerHex(addr)
}

// TxURL links to a transaction page.
func (e *Explorer) TxURL(hash common.Hash) string {
	return e.Etherscan + "/tx/" + hash.Hex()
}

// AssetURL links to one token of a token contract.
func (e *Explorer) AssetURL(token common.Address, value uint64) string {
	return e.OpenSea + "/" + lowerHex(token) + "/0x" + strconv.FormatUint(value, 16)
}

func lowerHex(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}
