// Package contract is the typed call surface of the will contract: a batched
// read of the eight view functions, the seven write functions, advisory fee
// estimates and a receipt watcher. It never retries.
package contract

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dmitrijs2005/afterlife/internal/logging"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Signer is the wallet side of a write: it knows the sending address and
// signs a prepared transaction, or refuses with ErrUserRejected.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// BatchReader issues the snapshot reads.
type BatchReader interface {
	ReadBatch(ctx context.Context, user common.Address) ([]ReadResult, error)
}

// Sender submits writes and watches for their confirmation.
type Sender interface {
	Send(ctx context.Context, signer Signer, call WriteCall) (common.Hash, error)
	WaitConfirmed(ctx context.Context, hash common.Hash) error
}

// FeeEstimator gives advisory fee figures; callers must not block on it.
type FeeEstimator interface {
	EstimateFee(ctx context.Context, from common.Address, call WriteCall) (*big.Int, error)
	BalanceOf(ctx context.Context, addr common.Address) (*big.Int, error)
}

// Gateway is everything the client needs from the chain.
type Gateway interface {
	BatchReader
	Sender
	FeeEstimator
	Close()
}

// backend is the subset of *ethclient.Client the gateway uses.
type backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// batcher is the subset of *rpc.Client used for batched eth_call.
type batcher interface {
	BatchCallContext(ctx context.Context, b []rpc.BatchElem) error
}

// EthGateway talks JSON-RPC to an Ethereum node.
type EthGateway struct {
	rpc          batcher
	eth          backend
	closer       func()
	contract     common.Address
	chainID      *big.Int
	pollInterval time.Duration
	log          logging.Logger
}

// Dial connects to rpcURL. A zero chainID is resolved from the node.
func Dial(ctx context.Context, rpcURL string, contract common.Address, chainID int64, pollInterval time.Duration, log logging.Logger) (*EthGateway, error) {
	rc, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}
	ec := ethclient.NewClient(rc)

	g := &EthGateway{
		rpc:          rc,
		eth:          ec,
		closer:       rc.Close,
		contract:     contract,
		pollInterval: pollInterval,
		log:          log.With("component", "gateway"),
	}

	if chainID > 0 {
		g.chainID = big.NewInt(chainID)
	} else {
		id, err := ec.ChainID(ctx)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("chain id: %w", err)
		}
		g.chainID = id
	}
	return g, nil
}

func (g *EthGateway) Close() {
	if g.closer != nil {
		g.closer()
	}
}

// ChainID reports the chain transactions are signed for.
func (g *EthGateway) ChainID() *big.Int {
	return new(big.Int).Set(g.chainID)
}

// ReadBatch sends the eight view calls as one JSON-RPC batch. A returned
// error means the batch itself failed; individual failures are reported in
// the matching ReadResult.
func (g *EthGateway) ReadBatch(ctx context.Context, user common.Address) ([]ReadResult, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, err
	}

	elems := make([]rpc.BatchElem, len(ReadFuncs))
	raws := make([]hexutil.Bytes, len(ReadFuncs))
	for i, fn := range ReadFuncs {
		data, err := packReadCall(parsed, fn, user)
		if err != nil {
			return nil, fmt.Errorf("pack %s: %w", fn, err)
		}
		elems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args: []any{
				map[string]any{"to": g.contract, "data": hexutil.Bytes(data)},
				"latest",
			},
			Result: &raws[i],
		}
	}

	if err := g.rpc.BatchCallContext(ctx, elems); err != nil {
		return nil, &Error{Op: "batch", Kind: classifyReadErr(err), Err: err}
	}

	results := make([]ReadResult, len(ReadFuncs))
	for i, fn := range ReadFuncs {
		results[i].Func = fn
		if elems[i].Error != nil {
			results[i].Err = &Error{Op: fn.Method(), Kind: classifyReadErr(elems[i].Error), Err: elems[i].Error}
			continue
		}
		v, err := decodeRead(parsed, fn, raws[i])
		if err != nil {
			results[i].Err = &Error{Op: fn.Method(), Kind: KindReverted, Err: err}
			continue
		}
		results[i].Value = v
	}

	g.log.Debug(ctx, "batch read done", "user", user.Hex())
	return results, nil
}

// Send estimates gas, prices an EIP-1559 transaction, has the signer sign it
// and broadcasts it.
func (g *EthGateway) Send(ctx context.Context, signer Signer, call WriteCall) (common.Hash, error) {
	if signer == nil {
		return common.Hash{}, &Error{Op: call.Method, Kind: KindUnknown, Err: ErrNoSigner}
	}

	data, err := call.Pack()
	if err != nil {
		return common.Hash{}, &Error{Op: call.Method, Kind: KindUnknown, Err: err}
	}
	from := signer.Address()

	gas, err := g.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &g.contract, Value: call.value(), Data: data})
	if err != nil {
		return common.Hash{}, &Error{Op: call.Method, Kind: KindGasEstimationFailed, Err: err}
	}

	tip, feeCap, err := g.fees(ctx)
	if err != nil {
		return common.Hash{}, &Error{Op: call.Method, Kind: classifyReadErr(err), Err: err}
	}

	nonce, err := g.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, &Error{Op: call.Method, Kind: classifyReadErr(err), Err: err}
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   g.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &g.contract,
		Value:     call.value(),
		Data:      data,
	})

	signed, err := signer.SignTx(ctx, tx, g.chainID)
	if err != nil {
		kind := KindUnknown
		if errors.Is(err, ErrUserRejected) {
			kind = KindUserRejected
		}
		return common.Hash{}, &Error{Op: call.Method, Kind: kind, Err: err}
	}

	if err := g.eth.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, &Error{Op: call.Method, Kind: KindNetworkError, Err: err}
	}

	g.log.Info(ctx, "transaction broadcast", "method", call.Method, "hash", signed.Hash().Hex(), "nonce", nonce, "gas", gas)
	return signed.Hash(), nil
}

// fees returns the tip and the fee cap: tip plus twice the latest base fee.
func (g *EthGateway) fees(ctx context.Context) (tip, feeCap *big.Int, err error) {
	tip, err = g.eth.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, err
	}
	head, err := g.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	if head.BaseFee == nil {
		price, err := g.eth.SuggestGasPrice(ctx)
		if err != nil {
			return nil, nil, err
		}
		return price, price, nil
	}
	feeCap = new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	return tip, feeCap, nil
}

// EstimateFee returns gas × current gas price in wei.
func (g *EthGateway) EstimateFee(ctx context.Context, from common.Address, call WriteCall) (*big.Int, error) {
	data, err := call.Pack()
	if err != nil {
		return nil, err
	}
	gas, err := g.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &g.contract, Value: call.value(), Data: data})
	if err != nil {
		return nil, &Error{Op: call.Method, Kind: KindGasEstimationFailed, Err: err}
	}
	price, err := g.eth.SuggestGasPrice(ctx)
	if err != nil {
		return nil, &Error{Op: call.Method, Kind: classifyReadErr(err), Err: err}
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(gas), price), nil
}

func (g *EthGateway) BalanceOf(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := g.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, &Error{Op: "balance", Kind: classifyReadErr(err), Err: err}
	}
	return bal, nil
}

// WaitConfirmed polls for the receipt until it shows up. A reverted receipt
// is an error; lookup failures other than "not found" are logged and the
// watcher keeps polling. Only ctx ends the wait early.
func (g *EthGateway) WaitConfirmed(ctx context.Context, hash common.Hash) error {
	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := g.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return &Error{Op: "confirm", Kind: KindReverted, Err: ErrTxReverted}
			}
			g.log.Info(ctx, "transaction confirmed", "hash", hash.Hex(), "block", receipt.BlockNumber)
			return nil
		case errors.Is(err, ethereum.NotFound):
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			g.log.Warn(ctx, "receipt lookup failed", "hash", hash.Hex(), "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
