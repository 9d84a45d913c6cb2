package fizz

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spheronfdn/fizz-sdk-go/internal/testutil/chainstub"
	"github.com/spheronfdn/fizz-sdk-go/pkg/blockchain"
	"github.com/spheronfdn/fizz-sdk-go/pkg/config"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	registryAddr = common.HexToAddress("0x1000000000000000000000000000000000000001")
	cpuAddr      = common.HexToAddress("0x1000000000000000000000000000000000000002")
	gpuAddr      = common.HexToAddress("0x1000000000000000000000000000000000000003")
	leaseAddr    = common.HexToAddress("0x1000000000000000000000000000000000000004")
	providerAddr = common.HexToAddress("0x1000000000000000000000000000000000000005")

	stranger = common.HexToAddress("0x00000000000000000000000000000000000000ee")
)

// fizzNode mirrors the FizzNode tuple so the stub can pack it.
type fizzNode struct {
	FizzId           *big.Int
	ProviderId       *big.Int
	Spec             string
	WalletAddress    common.Address
	PaymentsAccepted []common.Address
	Status           uint8
	JoinTimestamp    *big.Int
	RewardWallet     common.Address
}

type eventDialer struct {
	conn blockchain.EventConn
	err  error
}

func (d eventDialer) DialEvents(context.Context) (blockchain.EventConn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

type fixture struct {
	stub     *chainstub.Backend
	client   *Client
	signer   *blockchain.KeySigner
	registry *prometheus.Registry
}

func deployment() contracts.Deployment {
	return contracts.Deployment{
		contracts.FizzRegistry:        registryAddr,
		contracts.ResourceRegistryCPU: cpuAddr,
		contracts.ResourceRegistryGPU: gpuAddr,
		contracts.ComputeLease:        leaseAddr,
		contracts.ProviderRegistry:    providerAddr,
	}
}

func newFixture(t *testing.T, mutate ...func(*Options)) *fixture {
	t.Helper()
	stub := chainstub.New()
	for name, addr := range deployment() {
		stub.Register(addr, contracts.MustABI(name))
	}

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer, err := blockchain.NewKeySigner(hex.EncodeToString(crypto.FromECDSA(key)), chainstub.ChainID)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	opts := Options{
		Factory:  contracts.NewFactory(deployment(), m),
		Reader:   stub,
		Writer:   stub,
		Signer:   signer,
		Events:   eventDialer{conn: stub},
		Metrics:  m,
		Timeouts: config.Timeouts{EventWait: 2 * time.Second},
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	return &fixture{stub: stub, client: c, signer: signer, registry: reg}
}

func (f *fixture) me() common.Address { return f.signer.Address() }

func TestNew_RequiresFactoryAndReader(t *testing.T) {
	_, err := New(Options{Reader: chainstub.New()})
	assert.Error(t, err)

	_, err = New(Options{Factory: contracts.NewFactory(deployment(), nil)})
	assert.Error(t, err)
}

func TestNew_AccountsDefaultToSigner(t *testing.T) {
	f := newFixture(t)
	account, err := f.client.Account(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.me(), account)
	assert.Equal(t, 8, f.client.lookups)
	assert.Equal(t, 12*time.Second, f.client.timeouts.ChainRead)
}

func TestAccount_NoneConfigured(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.Signer = nil })
	_, err := f.client.Account(context.Background())
	assert.ErrorIs(t, err, blockchain.ErrNoAccount)
}
