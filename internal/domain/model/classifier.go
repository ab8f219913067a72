package model

import "strings"

// selectorLen is the 4-byte method id plus the 0x prefix.
const selectorLen = 10

var nftSelectors = map[string]struct{}{
	"0x42842e0e": {}, // safeTransferFrom(address,address,uint256)
	"0x23b872dd": {}, // transferFrom(address,address,uint256)
	"0xf242432a": {}, // safeTransferFrom(address,address,uint256,uint256,bytes)
	"0xa22cb465": {}, // setApprovalForAll(address,bool)
}

var swapSelectors = map[string]struct{}{
	"0x38ed1739": {}, // swapExactTokensForTokens
	"0x7ff36ab5": {}, // swapExactETHForTokens
	"0x18cbafe5": {}, // swapExactTokensForETH
}

// MethodSelector returns the lowercased 4-byte selector of input, or "" when
// input is too short to carry one.
func MethodSelector(input string) string {
	if len(input) < selectorLen {
		return ""
	}
	return strings.ToLower(input[:selectorLen])
}

// ClassifyTransaction assigns exactly one category. Contract creation wins
// over any selector match.
func ClassifyTransaction(tx RawTransaction) TxCategory {
	if strings.TrimSpace(tx.To) == "" {
		return TxCategoryContractDeploy
	}

	selector := MethodSelector(tx.Input)
	if _, ok := nftSelectors[selector]; ok {
		return TxCategoryNFT
	}
	if _, ok := swapSelectors[selector]; ok {
		return TxCategorySwap
	}
	return TxCategoryTransfer
}

// Classify builds the display form of tx: category, ether value and the
// detected protocol, if any.
func Classify(tx RawTransaction) ClassifiedTransaction {
	return ClassifiedTransaction{
		Hash:      tx.Hash,
		Timestamp: tx.Timestamp,
		To:        strings.ToLower(tx.To),
		Value:     FormatEther(tx.Value),
		Category:  ClassifyTransaction(tx),
		Protocol:  DetectProtocol(tx.To),
	}
}
