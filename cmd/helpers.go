package cmd

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LIT-Protocol/evm-evm-swap-example/config"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/chainrpc"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/custody"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/engine"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/session"
	"github.com/LIT-Protocol/evm-evm-swap-example/pkg/swap"
)

// dialClients connects to the named networks and returns one client per
// chain. The caller owns the connections.
func dialClients(cfg *config.Config, names ...string) (map[string]*chainrpc.Client, error) {
	clients := make(map[string]*chainrpc.Client, len(names))
	for _, name := range names {
		if _, dup := clients[name]; dup {
			continue
		}
		network, err := cfg.Network(name)
		if err != nil {
			closeClients(clients)
			return nil, err
		}
		client, err := chainrpc.Dial(name, network.RPCUrl, network.ChainID)
		if err != nil {
			closeClients(clients)
			return nil, err
		}
		clients[name] = client
	}
	return clients, nil
}

func closeClients(clients map[string]*chainrpc.Client) {
	for _, c := range clients {
		c.Close()
	}
}

func balanceSources(clients map[string]*chainrpc.Client) map[string]chainrpc.BalanceSource {
	sources := make(map[string]chainrpc.BalanceSource, len(clients))
	for name, client := range clients {
		sources[name] = client
	}
	return sources
}

// buildEngine assembles the settlement engine over the local custody
// service and a funding oracle backed by the given clients
func buildEngine(cfg *config.Config, clients map[string]*chainrpc.Client) *engine.Engine {
	sources := balanceSources(clients)
	evaluator := chainrpc.NewEvaluator(sources, cfg.Custody.CodeID, common.Address{})
	svc := custody.NewLocal([]byte(cfg.Custody.Secret), evaluator)
	oracle := chainrpc.NewOracle(sources)
	return engine.New(svc, oracle, cfg.Custody.CodeID)
}

// localService returns just the custody service, for commands that
// need Encrypt/Decrypt without a full engine
func localService(cfg *config.Config, clients map[string]*chainrpc.Client) *custody.Local {
	evaluator := chainrpc.NewEvaluator(balanceSources(clients), cfg.Custody.CodeID, common.Address{})
	return custody.NewLocal([]byte(cfg.Custody.Secret), evaluator)
}

func sessionManager(cfg *config.Config) (*session.Manager, error) {
	return session.NewManager(cfg.SessionFile)
}

// resolveAsset looks a symbol up in a network's configured asset table
func resolveAsset(network config.Network, chain, symbol string) (swap.Asset, error) {
	entry, exists := network.Assets[strings.ToUpper(symbol)]
	if !exists {
		// Every EVM chain has a native coin even if not listed
		if strings.EqualFold(symbol, "ETH") {
			return swap.Asset{Kind: swap.Native, Decimals: 18}, nil
		}
		return swap.Asset{}, fmt.Errorf("asset '%s' not configured on network '%s'", symbol, chain)
	}

	switch strings.ToUpper(entry.Kind) {
	case string(swap.Native):
		return swap.Asset{Kind: swap.Native, Decimals: entry.Decimals}, nil
	case string(swap.ERC20):
		if !common.IsHexAddress(entry.Contract) {
			return swap.Asset{}, fmt.Errorf("asset '%s' on network '%s' has invalid contract address", symbol, chain)
		}
		return swap.Asset{
			Kind:     swap.ERC20,
			Contract: common.HexToAddress(entry.Contract),
			Decimals: entry.Decimals,
		}, nil
	default:
		return swap.Asset{}, fmt.Errorf("asset '%s' on network '%s' has unknown kind %q", symbol, chain, entry.Kind)
	}
}
