package explorer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emperorhan/base-score/internal/domain/model"
)

// envelope is the common {status, message, result} wrapper of every
// account-module response.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// StatusError is a response that came back with a non-"1" status and a
// non-list result, e.g. a rate limit or key problem.
type StatusError struct {
	Action  string
	Status  string
	Message string
	Detail  string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("explorer %s status %s: %s", e.Action, e.Status, e.Message)
	}
	return fmt.Sprintf("explorer %s status %s: %s (%s)", e.Action, e.Status, e.Message, e.Detail)
}

type Transaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	Input           string `json:"input"`
	IsError         string `json:"isError"`
	ContractAddress string `json:"contractAddress"`
	MethodID        string `json:"methodId"`
	FunctionName    string `json:"functionName"`
}

// Raw converts the explorer record into the classifier's input shape.
func (t Transaction) Raw() model.RawTransaction {
	return model.RawTransaction{
		Hash:      t.Hash,
		Timestamp: parseUnix(t.TimeStamp),
		From:      strings.ToLower(t.From),
		To:        strings.ToLower(strings.TrimSpace(t.To)),
		Value:     t.Value,
		Input:     t.Input,
	}
}

type TokenTransfer struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenID"`
	TokenName       string `json:"tokenName"`
	TokenSymbol     string `json:"tokenSymbol"`
}

type InternalTransaction struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	Value           string `json:"value"`
	ContractAddress string `json:"contractAddress"`
	Input           string `json:"input"`
	Type            string `json:"type"`
	IsError         string `json:"isError"`
}

// IsContractCreation reports an internal call with no recipient that
// carried init code.
func (t InternalTransaction) IsContractCreation() bool {
	return strings.TrimSpace(t.To) == "" && t.Input != "0x"
}

func parseUnix(s string) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
