// Package rpcclient is a minimal HTTP implementation of index.Client.
// The chain RPC client is an external collaborator per spec §1/§6 —
// this package exists only so cmd/ordd has something concrete to wire
// up; it is not a full node wire-protocol client.
package rpcclient

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"ordindex.dev/core/index"
	"ordindex.dev/core/ordinal"
)

// Client fetches blocks from a server exposing the JSON shape below
// over HTTP:
//
//	GET {baseURL}/height      -> {"height": <u64>}
//	GET {baseURL}/block/{h}   -> blockJSON, or 404 if none exists yet
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client against baseURL (no trailing slash).
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

var _ index.Client = (*Client)(nil)

type blockJSON struct {
	Hash          string          `json:"hash"`
	PrevBlockHash string          `json:"prev_block_hash"`
	Time          int64           `json:"time"`
	Transactions  []transactionJSON `json:"transactions"`
}

type transactionJSON struct {
	Txid    string     `json:"txid"`
	Inputs  []inputJSON  `json:"inputs"`
	Outputs []outputJSON `json:"outputs"`
}

type inputJSON struct {
	PreviousOutputTxid string `json:"previous_output_txid"`
	PreviousOutputVout uint32 `json:"previous_output_vout"`
}

type outputJSON struct {
	Value uint64 `json:"value"`
}

// BlockCount returns the server's best-known chain tip height.
func (c *Client) BlockCount(ctx context.Context) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/height", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rpcclient: unexpected status %d fetching height", resp.StatusCode)
	}
	var body struct {
		Height uint64 `json:"height"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, err
	}
	return body.Height, nil
}

// BlockAt fetches the block at height, translating a 404 into
// index.ErrBlockNotFound.
func (c *Client) BlockAt(ctx context.Context, height uint64) (*index.Block, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/block/%d", c.baseURL, height), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, index.ErrBlockNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rpcclient: unexpected status %d fetching block %d", resp.StatusCode, height)
	}

	var bj blockJSON
	if err := json.NewDecoder(resp.Body).Decode(&bj); err != nil {
		return nil, err
	}
	return decodeBlock(bj)
}

func decodeBlock(bj blockJSON) (*index.Block, error) {
	hash, err := decodeHash32(bj.Hash)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: hash: %w", err)
	}
	prev, err := decodeHash32(bj.PrevBlockHash)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: prev_block_hash: %w", err)
	}

	txs := make([]index.Transaction, 0, len(bj.Transactions))
	for _, tj := range bj.Transactions {
		txid, err := decodeHash32(tj.Txid)
		if err != nil {
			return nil, fmt.Errorf("rpcclient: txid: %w", err)
		}
		ins := make([]index.TxIn, 0, len(tj.Inputs))
		for _, ij := range tj.Inputs {
			prevTxid, err := decodeHash32(ij.PreviousOutputTxid)
			if err != nil {
				return nil, fmt.Errorf("rpcclient: input previous_output_txid: %w", err)
			}
			ins = append(ins, index.TxIn{
				PreviousOutput: ordinal.OutPoint{Txid: prevTxid, Vout: ij.PreviousOutputVout},
			})
		}
		outs := make([]index.TxOut, 0, len(tj.Outputs))
		for _, oj := range tj.Outputs {
			outs = append(outs, index.TxOut{Value: oj.Value})
		}
		txs = append(txs, index.Transaction{Txid: txid, Inputs: ins, Outputs: outs})
	}

	return &index.Block{
		Hash:          hash,
		PrevBlockHash: prev,
		Time:          bj.Time,
		Transactions:  txs,
	}, nil
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, err
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
