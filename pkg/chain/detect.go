// Package chain classifies a contract address onto a supported chain.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/chain-sentinel/pkg/config"
)

// Classify buckets an address by shape alone: base58 → Solana, 0x-hex →
// EVM (chain still ambiguous), anything else → unknown. No network calls.
func Classify(addr string) config.Chain {
	if IsEVMAddress(addr) {
		// Ambiguous between Base and Ethereum until probed; Base is the
		// default home for new launches.
		return config.ChainBase
	}
	if IsSolanaAddress(addr) {
		return config.ChainSolana
	}
	return config.ChainUnknown
}

func IsEVMAddress(addr string) bool {
	return common.IsHexAddress(addr)
}

func IsSolanaAddress(addr string) bool {
	if strings.HasPrefix(addr, "0x") {
		return false
	}
	_, err := solana.PublicKeyFromBase58(addr)
	return err == nil
}

// Detector resolves EVM ambiguity by probing explorers for the contract.
type Detector struct {
	cfg    *config.Config
	client *http.Client
}

func NewDetector(cfg *config.Config) *Detector {
	return &Detector{cfg: cfg, client: &http.Client{Timeout: cfg.ProviderTimeout}}
}

// Detect returns the chain an address belongs to. Solana addresses resolve
// immediately; EVM addresses are probed on Base and Ethereum in parallel,
// Base winning ties. Unprobeable EVM addresses default to Base.
func (d *Detector) Detect(ctx context.Context, addr string) config.Chain {
	if IsSolanaAddress(addr) {
		return config.ChainSolana
	}
	if !IsEVMAddress(addr) {
		return config.ChainUnknown
	}

	chains := config.AllEVMChains()
	found := make([]bool, len(chains))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range chains {
		i, c := i, c
		g.Go(func() error {
			found[i] = d.contractExists(gctx, addr, c)
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range chains {
		if found[i] {
			return c
		}
	}
	return config.ChainBase
}

// contractExists checks whether addr is a deployed contract on the chain.
// Prefers the explorer source-code endpoint; falls back to eth_getCode.
func (d *Detector) contractExists(ctx context.Context, addr string, chain config.Chain) bool {
	apiURL := d.cfg.GetExplorerURL(chain)
	apiKey := d.cfg.GetExplorerKey(chain)
	if apiURL != "" && apiKey != "" {
		url := fmt.Sprintf("%s?module=contract&action=getsourcecode&address=%s&apikey=%s",
			apiURL, addr, apiKey)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return false
		}
		resp, err := d.client.Do(req)
		if err != nil {
			log.Debug().Err(err).Str("chain", string(chain)).Msg("explorer probe failed")
			return false
		}
		defer resp.Body.Close()

		var result struct {
			Result []struct {
				ContractName string `json:"ContractName"`
				ABI          string `json:"ABI"`
			} `json:"result"`
		}
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result) != nil {
			return false
		}
		return len(result.Result) > 0 &&
			(result.Result[0].ContractName != "" || result.Result[0].ABI != "")
	}

	// No explorer key; probe the public RPC instead.
	rpcURL := d.cfg.EVMRPC[chain]
	if rpcURL == "" {
		return false
	}
	reqBody := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"eth_getCode","params":["%s","latest"]}`,
		common.HexToAddress(addr).Hex())
	req, err := http.NewRequestWithContext(ctx, "POST", rpcURL, strings.NewReader(reqBody))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var rpcResp struct {
		Result string `json:"result"`
	}
	if json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&rpcResp) != nil {
		return false
	}
	return rpcResp.Result != "" && rpcResp.Result != "0x" && rpcResp.Result != "0x0"
}

// ExplorerURL returns the human-facing explorer page for a token.
func ExplorerURL(addr string, chain config.Chain) string {
	switch chain {
	case config.ChainSolana:
		return "https://solscan.io/token/" + addr
	case config.ChainBase:
		return "https://basescan.org/token/" + addr
	case config.ChainEthereum:
		return "https://etherscan.io/token/" + addr
	}
	return ""
}
