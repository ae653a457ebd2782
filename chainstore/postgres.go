package chainstore

import (
	"context"
	"embed"
	"encoding/json"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/database"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	selectChainsSQL = `SELECT chain_id, chain_name, rpc_urls::text, block_explorer_urls::text, icon_urls::text,
       currency_name, currency_symbol, currency_decimals
FROM custom_networks
ORDER BY position`

	// position is only assigned on first insert, so a replaced chain keeps its slot.
	upsertChainSQL = `INSERT INTO custom_networks (chain_id, position, chain_name, rpc_urls, block_explorer_urls, icon_urls,
                             currency_name, currency_symbol, currency_decimals)
VALUES ($1, (SELECT COALESCE(MAX(position), 0) + 1 FROM custom_networks), $2, $3::jsonb, $4::jsonb, $5::jsonb, $6, $7, $8)
ON CONFLICT (chain_id) DO UPDATE SET
    chain_name = excluded.chain_name,
    rpc_urls = excluded.rpc_urls,
    block_explorer_urls = excluded.block_explorer_urls,
    icon_urls = excluded.icon_urls,
    currency_name = excluded.currency_name,
    currency_symbol = excluded.currency_symbol,
    currency_decimals = excluded.currency_decimals`

	deleteChainSQL = `DELETE FROM custom_networks WHERE chain_id = $1`
)

// PostgresStore keeps one row per chain in a Postgres or CockroachDB table.
type PostgresStore struct {
	db database.Database
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore runs the embedded migrations against db and returns the store.
func NewPostgresStore(ctx context.Context, db database.Database) (*PostgresStore, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open chainstore migrations")
	}
	if err := db.MigrateWithIOFS(ctx, src); err != nil {
		return nil, errors.Wrap(err, "failed to migrate chainstore schema")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CustomChains(ctx context.Context) ([]ethrpc.EthereumChain, error) {
	rows, err := s.db.Query(ctx, selectChainsSQL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chains []ethrpc.EthereumChain
	for rows.Next() {
		var (
			c                         ethrpc.EthereumChain
			rpcURLs, explorers, icons string
		)
		if err := rows.Scan(&c.ChainID, &c.ChainName, &rpcURLs, &explorers, &icons,
			&c.Currency.Name, &c.Currency.Symbol, &c.Currency.Decimals); err != nil {
			return nil, errors.Wrap(err, "failed to scan custom network")
		}
		for _, f := range []struct {
			raw string
			dst *[]string
		}{{rpcURLs, &c.RPCURLs}, {explorers, &c.BlockExplorerURLs}, {icons, &c.IconURLs}} {
			if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
				return nil, errors.Wrapf(err, "chain %s: bad url list", c.ChainID)
			}
		}
		chains = append(chains, normalize(c))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read custom networks")
	}
	return chains, nil
}

func (s *PostgresStore) Add(ctx context.Context, chain ethrpc.EthereumChain) error {
	if err := validate(chain); err != nil {
		return err
	}
	chain = normalize(chain)
	lists := make([]string, 0, 3)
	for _, l := range [][]string{chain.RPCURLs, chain.BlockExplorerURLs, chain.IconURLs} {
		b, err := json.Marshal(l)
		if err != nil {
			return errors.Wrap(err, "failed to encode url list")
		}
		lists = append(lists, string(b))
	}
	_, err := s.db.Exec(ctx, upsertChainSQL, chain.ChainID, chain.ChainName, lists[0], lists[1], lists[2],
		chain.Currency.Name, chain.Currency.Symbol, chain.Currency.Decimals)
	return err
}

func (s *PostgresStore) Remove(ctx context.Context, chainID string) error {
	n, err := s.db.Exec(ctx, deleteChainSQL, chainID)
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(ErrNotFound, "chain %s", chainID)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
