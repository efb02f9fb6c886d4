package idspace

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// DefaultRegistryAddress is the Farcaster IdRegistry on OP mainnet.
const DefaultRegistryAddress = "0x00000000Fc6c5F01Fc30151999387Bb99A9f489b"

const counterSignature = "idCounter()"

// RegistryCounter reads idCounter() from the IdRegistry contract with an
// eth_call over JSON-RPC.
type RegistryCounter struct {
	rpcURL   string
	contract string
	http     *http.Client
}

// NewRegistryCounter builds a counter reader for the contract at address.
func NewRegistryCounter(rpcURL, address string, timeout time.Duration) *RegistryCounter {
	if address == "" {
		address = DefaultRegistryAddress
	}
	return &RegistryCounter{
		rpcURL:   rpcURL,
		contract: address,
		http:     &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type callParams struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

type rpcResponse struct {
	Result string    `json:"result"`
	Error  *rpcError `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Count returns the number of registered fids, which is also the largest fid.
func (r *RegistryCounter) Count(ctx context.Context) (int64, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []any{
			callParams{To: r.contract, Data: "0x" + hex.EncodeToString(Selector(counterSignature))},
			"latest",
		},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("eth_call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("eth_call: unexpected status %d", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode rpc response: %w", err)
	}
	if out.Error != nil {
		return 0, fmt.Errorf("eth_call: rpc error %d: %s", out.Error.Code, out.Error.Message)
	}

	return decodeUint(out.Result)
}

// Selector returns the 4-byte ABI function selector for a signature such as
// "idCounter()".
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

func decodeUint(word string) (int64, error) {
	raw := strings.TrimPrefix(word, "0x")
	if raw == "" {
		return 0, errors.New("empty eth_call result")
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return 0, fmt.Errorf("decode eth_call result: %w", err)
	}
	if len(b) != 32 {
		return 0, fmt.Errorf("eth_call result is %d bytes, want 32", len(b))
	}
	n := new(big.Int).SetBytes(b)
	if !n.IsInt64() {
		return 0, errors.New("eth_call result overflows int64")
	}
	return n.Int64(), nil
}
