package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cellforge/cellforge/internal/log"
	"github.com/cellforge/cellforge/pkg/tx"
	"github.com/cellforge/cellforge/pkg/types"
)

// confirmPollInterval is how often WaitForConfirmation re-queries the node.
const confirmPollInterval = 2 * time.Second

// RPCClient implements Client (and all optional capabilities) over a node's
// JSON-RPC 2.0 HTTP endpoint.
type RPCClient struct {
	endpoint string
	http     *http.Client
	cache    *OutpointCache
}

// NewRPC creates an RPC-backed ledger client targeting the given endpoint.
func NewRPC(endpoint string) *RPCClient {
	return NewRPCWithTimeout(endpoint, 10*time.Second)
}

// NewRPCWithTimeout creates an RPC client with a custom HTTP timeout.
func NewRPCWithTimeout(endpoint string, timeout time.Duration) *RPCClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RPCClient{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		cache:    NewOutpointCache(),
	}
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int    `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is returned when the node responds with an error.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Call invokes a JSON-RPC method and unmarshals the result into the
// provided pointer. If result is nil, the response result is discarded.
func (c *RPCClient) Call(ctx context.Context, method string, params, result any) error {
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// SubmitTransaction broadcasts a signed transaction.
func (c *RPCClient) SubmitTransaction(ctx context.Context, t *tx.Transaction) (types.Hash, error) {
	var hash types.Hash
	if err := c.Call(ctx, "send_transaction", []any{t}, &hash); err != nil {
		return types.Hash{}, err
	}
	log.Ledger.Debug().Str("tx", hash.String()).Msg("transaction submitted")
	return hash, nil
}

// txStatus is the node's view of a submitted transaction.
type txStatus struct {
	Status string `json:"status"` // pending | committed | rejected | unknown
	Reason string `json:"reason,omitempty"`
}

// WaitForConfirmation polls the node until the transaction is committed.
// It returns an error when the node reports the transaction rejected or
// when ctx ends first.
func (c *RPCClient) WaitForConfirmation(ctx context.Context, hash types.Hash) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		var st txStatus
		if err := c.Call(ctx, "get_transaction_status", []any{hash}, &st); err != nil {
			return err
		}
		switch st.Status {
		case "committed":
			log.Ledger.Debug().Str("tx", hash.String()).Msg("transaction committed")
			return nil
		case "rejected":
			return fmt.Errorf("rejected by ledger: %s", st.Reason)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// GetTipHeader returns the current chain tip.
func (c *RPCClient) GetTipHeader(ctx context.Context) (Header, error) {
	var h Header
	if err := c.Call(ctx, "get_tip_header", nil, &h); err != nil {
		return Header{}, err
	}
	return h, nil
}

// cellsQuery is the filter for live-cell queries.
type cellsQuery struct {
	Lock types.Script  `json:"lock"`
	Type *types.Script `json:"type,omitempty"`
}

// QueryLiveCells lists unspent cells under a lock script.
func (c *RPCClient) QueryLiveCells(ctx context.Context, lock types.Script, typ *types.Script) ([]types.LiveCell, error) {
	var cells []types.LiveCell
	if err := c.Call(ctx, "get_cells", []any{cellsQuery{Lock: lock, Type: typ}}, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

// AggregateCapacity returns the node-side capacity sum for a lock script.
func (c *RPCClient) AggregateCapacity(ctx context.Context, lock types.Script) (uint64, error) {
	var result struct {
		Capacity uint64 `json:"capacity"`
	}
	if err := c.Call(ctx, "get_cells_capacity", []any{cellsQuery{Lock: lock}}, &result); err != nil {
		return 0, err
	}
	return result.Capacity, nil
}

// ResolveAddress converts a bech32 address into its lock script. This is a
// local computation; no RPC round trip is needed.
func (c *RPCClient) ResolveAddress(addr string) (types.Script, error) {
	a, err := types.ParseAddress(addr)
	if err != nil {
		return types.Script{}, err
	}
	return a.LockScript(), nil
}

// DeriveScript instantiates a well-known template with args, validating the
// args length the template expects.
func (c *RPCClient) DeriveScript(template types.ScriptTemplate, args []byte) (types.Script, error) {
	var want int
	switch template {
	case types.TemplateSecp256k1Lock, types.TemplateSingleUseLock:
		want = 20
	case types.TemplateFungibleToken, types.TemplateUniqueMetadata:
		want = types.HashSize
	default:
		return types.Script{}, fmt.Errorf("unknown script template %d", template)
	}
	if len(args) != want {
		return types.Script{}, fmt.Errorf("template %s expects %d-byte args, got %d", template, want, len(args))
	}
	return types.Script{Template: template, Args: args}, nil
}

// MarkOutpointUnusable records a local hint that the outpoint must not be
// offered for spending again.
func (c *RPCClient) MarkOutpointUnusable(op types.Outpoint) {
	c.cache.MarkUnusable(op)
}

// OutpointUsable reports whether an outpoint is still offered locally.
func (c *RPCClient) OutpointUsable(op types.Outpoint) bool {
	return c.cache.Usable(op)
}

// CapacityByLockHash implements LockHashCapacityQuerier.
func (c *RPCClient) CapacityByLockHash(ctx context.Context, lockHash types.Hash) (uint64, error) {
	var result struct {
		Capacity uint64 `json:"capacity"`
	}
	if err := c.Call(ctx, "get_capacity_by_lock_hash", []any{lockHash}, &result); err != nil {
		return 0, err
	}
	return result.Capacity, nil
}

// CollectLiveCells implements AlternateCollector via the node's legacy
// paginated collector.
func (c *RPCClient) CollectLiveCells(ctx context.Context, lock types.Script) ([]types.LiveCell, error) {
	const pageSize = 100
	var all []types.LiveCell
	for page := 0; ; page++ {
		var cells []types.LiveCell
		err := c.Call(ctx, "get_live_cells", []any{cellsQuery{Lock: lock}, page, pageSize}, &cells)
		if err != nil {
			return nil, err
		}
		all = append(all, cells...)
		if len(cells) < pageSize {
			return all, nil
		}
	}
}

// BalanceByAddress implements AddressBalanceQuerier.
func (c *RPCClient) BalanceByAddress(ctx context.Context, addr string) (uint64, error) {
	var result struct {
		Balance uint64 `json:"balance"`
	}
	if err := c.Call(ctx, "get_balance", []any{addr}, &result); err != nil {
		return 0, err
	}
	return result.Balance, nil
}
