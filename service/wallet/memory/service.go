package memory

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"

	"github.com/viant/scy"
	"github.com/viant/toolbox"
	"golang.org/x/crypto/sha3"

	"github.com/Namp88/hooast-web-extension/service/wallet"
)

// Service is an in-memory wallet authority used by the background process in
// tests and demos. It keeps funded accounts in a map and derives transaction
// identifiers from a digest of the submission; it performs no real signing.
type Service struct {
	mu       sync.Mutex
	network  string
	address  string
	balances map[string]*big.Int
	nonce    uint64
	locked   bool

	scyService *scy.Service
}

type Option func(*Service)

// WithNetwork overrides the network identity string.
func WithNetwork(network string) Option {
	return func(s *Service) { s.network = network }
}

// WithAddress sets the active address used when a submission omits From.
func WithAddress(address string) Option {
	return func(s *Service) { s.address = address }
}

// WithBalance funds an account.
func WithBalance(address string, amount *big.Int) Option {
	return func(s *Service) { s.balances[address] = amount }
}

// New creates an in-memory wallet authority.
func New(options ...Option) *Service {
	ret := &Service{
		network:    "mainnet",
		balances:   make(map[string]*big.Int),
		scyService: scy.New(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// LoadKeyMaterial loads the wallet secret (address and key) from an encrypted
// resource and unlocks the authority with it.
func (s *Service) LoadKeyMaterial(ctx context.Context, sourceURL, key string) error {
	resource := scy.NewResource(nil, sourceURL, key)
	secret, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to load wallet secret from %s: %w", sourceURL, err)
	}
	aMap := map[string]interface{}{}
	if !secret.IsPlain && secret.Target != nil {
		if err = toolbox.DefaultConverter.AssignConverted(&aMap, secret.Target); err != nil {
			return fmt.Errorf("failed to convert wallet secret: %w", err)
		}
		aMap = toolbox.DeleteEmptyKeys(aMap)
	}
	address, _ := aMap["address"].(string)
	if address == "" {
		address = secret.String()
	}
	if address == "" {
		return fmt.Errorf("wallet secret %s carries no address", sourceURL)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.address = address
	s.locked = false
	return nil
}

func (s *Service) Balance(_ context.Context, address string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if address == "" {
		address = s.address
	}
	if balance, ok := s.balances[address]; ok {
		return balance.String(), nil
	}
	return "0", nil
}

func (s *Service) Network(_ context.Context) (string, error) {
	return s.network, nil
}

func (s *Service) SendTransaction(_ context.Context, params *wallet.TxParams) (string, error) {
	if params == nil || params.To == "" {
		return "", fmt.Errorf("transaction requires a destination")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked {
		return "", fmt.Errorf("wallet is locked")
	}
	from := params.From
	if from == "" {
		from = s.address
	}
	balance, ok := s.balances[from]
	if !ok {
		return "", fmt.Errorf("unknown sender %s", from)
	}
	amount, ok := new(big.Int).SetString(params.Amount, 10)
	if !ok || amount.Sign() < 0 {
		return "", fmt.Errorf("invalid amount %q", params.Amount)
	}
	if balance.Cmp(amount) < 0 {
		return "", fmt.Errorf("insufficient funds on %s", from)
	}
	s.balances[from] = new(big.Int).Sub(balance, amount)
	if to, ok := s.balances[params.To]; ok {
		s.balances[params.To] = new(big.Int).Add(to, amount)
	} else {
		s.balances[params.To] = new(big.Int).Set(amount)
	}
	s.nonce++
	digest := sha3.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", from, params.To, params.Amount, s.nonce)))
	return "0x" + hex.EncodeToString(digest[:]), nil
}

func (s *Service) Lock(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = true
	return nil
}

// Unlock restores submission capability after a Lock. The background process
// calls it when the user re-enters the passphrase.
func (s *Service) Unlock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked = false
}

var _ wallet.Service = (*Service)(nil)
