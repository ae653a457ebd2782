package chainstore

import (
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/database"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type execCall struct {
	sql  string
	args []interface{}
}

type fakeDB struct {
	migrated []string
	execs    []execCall
	affected int64
	rows     [][]interface{}
	closed   bool
}

var _ database.Database = (*fakeDB)(nil)

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (int64, error) {
	f.execs = append(f.execs, execCall{sql, args})
	return f.affected, nil
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (database.Rows, error) {
	return &fakeRows{rows: f.rows, idx: -1}, nil
}

func (f *fakeDB) MigrateWithIOFS(_ context.Context, src source.Driver) error {
	v, err := src.First()
	for err == nil {
		r, name, rerr := src.ReadUp(v)
		if rerr == nil {
			_ = r.Close()
			f.migrated = append(f.migrated, name)
		}
		v, err = src.Next(v)
	}
	return nil
}

func (f *fakeDB) Ping(context.Context) error { return nil }
func (f *fakeDB) Close() error               { f.closed = true; return nil }

type fakeRows struct {
	rows [][]interface{}
	idx  int
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...interface{}) error {
	row := r.rows[r.idx]
	if len(row) != len(dest) {
		return errors.Errorf("scan: %d columns into %d targets", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		default:
			return errors.Errorf("scan: unsupported target %T", d)
		}
	}
	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { return nil }

func TestPostgresStoreMigratesOnOpen(t *testing.T) {
	db := &fakeDB{}
	s, err := NewPostgresStore(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"custom_networks"}, db.migrated)

	require.NoError(t, s.Close())
	assert.True(t, db.closed)
}

func TestPostgresStoreCustomChains(t *testing.T) {
	db := &fakeDB{rows: [][]interface{}{
		{"0x89", "Polygon", `["https://polygon-rpc.com"]`, `["https://polygonscan.com"]`, `[]`, "MATIC", "MATIC", 18},
		{"0x64", "Gnosis", `["https://rpc.gnosischain.com"]`, `[]`, `[]`, "xDAI", "xDAI", 18},
	}}
	s := &PostgresStore{db: db}

	chains, err := s.CustomChains(context.Background())
	require.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, normalize(polygon), chains[0])
	assert.Equal(t, "0x64", chains[1].ChainID)
	assert.Equal(t, []string{}, chains[1].BlockExplorerURLs)
}

func TestPostgresStoreBadURLList(t *testing.T) {
	db := &fakeDB{rows: [][]interface{}{
		{"0x89", "Polygon", `not json`, `[]`, `[]`, "MATIC", "MATIC", 18},
	}}
	_, err := (&PostgresStore{db: db}).CustomChains(context.Background())
	assert.Error(t, err)
}

func TestPostgresStoreAdd(t *testing.T) {
	db := &fakeDB{affected: 1}
	s := &PostgresStore{db: db}

	require.NoError(t, s.Add(context.Background(), gnosis))
	require.Len(t, db.execs, 1)
	assert.Equal(t, upsertChainSQL, db.execs[0].sql)
	assert.Equal(t, []interface{}{
		"0x64", "Gnosis", `["https://rpc.gnosischain.com"]`, `[]`, `[]`, "xDAI", "xDAI", 18,
	}, db.execs[0].args)

	err := s.Add(context.Background(), ethrpc.EthereumChain{ChainID: "0x1"})
	assert.True(t, errors.Is(err, ErrInvalidChain))
	assert.Len(t, db.execs, 1)
}

func TestPostgresStoreRemove(t *testing.T) {
	db := &fakeDB{affected: 1}
	s := &PostgresStore{db: db}
	require.NoError(t, s.Remove(context.Background(), "0x64"))

	db.affected = 0
	err := s.Remove(context.Background(), "0x64")
	assert.True(t, errors.Is(err, ErrNotFound))
}
