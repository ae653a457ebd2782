package chainstore

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/quantumauth-io/quantum-wallet-rpc/ethrpc"
	"gopkg.in/yaml.v3"
)

// FileStore keeps the list in a YAML document:
//
//	networks:
//	  - chainId: "0x89"
//	    chainName: Polygon
//	    rpcUrls: [https://polygon-rpc.com]
//
// JSON files parse too. A missing file is an empty list.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

type fileDocument struct {
	Networks []ethrpc.EthereumChain `yaml:"networks"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() ([]ethrpc.EthereumChain, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", s.path)
	}
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", s.path)
	}
	out := make([]ethrpc.EthereumChain, 0, len(doc.Networks))
	for _, c := range doc.Networks {
		out = append(out, normalize(c))
	}
	return out, nil
}

// save writes through a temp file so readers never see a partial document.
func (s *FileStore) save(chains []ethrpc.EthereumChain) error {
	data, err := yaml.Marshal(fileDocument{Networks: chains})
	if err != nil {
		return errors.Wrap(err, "failed to encode networks")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create dir for %s", s.path)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, s.path), "failed to replace %s", s.path)
}

func (s *FileStore) CustomChains(context.Context) ([]ethrpc.EthereumChain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) Add(_ context.Context, chain ethrpc.EthereumChain) error {
	if err := validate(chain); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	chains, err := s.load()
	if err != nil {
		return err
	}
	return s.save(upsert(chains, normalize(chain)))
}

func (s *FileStore) Remove(_ context.Context, chainID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chains, err := s.load()
	if err != nil {
		return err
	}
	chains, err = remove(chains, chainID)
	if err != nil {
		return err
	}
	return s.save(chains)
}

func (s *FileStore) Close() error { return nil }
