package sdk

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spheronfdn/fizz-sdk-go/pkg/blockchain"
	"github.com/spheronfdn/fizz-sdk-go/pkg/config"
	"github.com/spheronfdn/fizz-sdk-go/pkg/contracts"
	"github.com/spheronfdn/fizz-sdk-go/pkg/fizz"
	"github.com/spheronfdn/fizz-sdk-go/pkg/metrics"
	"github.com/spheronfdn/fizz-sdk-go/pkg/provider"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// FizzSDK is the public interface of an initialized SDK instance.
type FizzSDK interface {
	// Fizz returns the client of the Fizz node registry.
	Fizz() *fizz.Client

	// Providers returns the client of the provider registry.
	Providers() *provider.Client

	// Close releases the RPC connection.
	Close()
}

var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// defaultMetrics registers the SDK collectors on the default registerer the
// first time an instance asks for them.
var defaultMetrics = sync.OnceValue(func() *metrics.Metrics {
	return metrics.New(prometheus.DefaultRegisterer)
})

// Core is the concrete SDK implementation. It embeds the runtime
// configuration and holds the connected EVM client and the contract modules.
type Core struct {
	*config.Config
	evm       *blockchain.EVMClient
	factory   *contracts.Factory
	fizz      *fizz.Client
	providers *provider.Client
}

// NewSDK validates cfg, connects to cfg.RPCAddr and wires the contract
// modules. A configured private key enables writes; otherwise Account, if
// set, is the identity event waits match against.
func NewSDK(ctx context.Context, cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Debug {
		logLevel.SetLevel(zap.DebugLevel)
	}

	evm, err := blockchain.InitEvm(ctx, cfg)
	if err != nil {
		zap.L().Error("Init ethereum client failed", zap.Error(err))
		return nil, err
	}

	core, err := newCore(cfg, evm.ChainID, evm.Client, evm)
	if err != nil {
		evm.Close()
		return nil, err
	}
	core.evm = evm
	return core, nil
}

// newCore builds the modules over backend. events may be nil, which disables
// event waits.
func newCore(cfg *config.Config, chainID *big.Int, backend fizz.Backend, events blockchain.EventDialer) (*Core, error) {
	deployment, err := cfg.Contracts.Deployment()
	if err != nil {
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics {
		m = defaultMetrics()
	}
	factory := contracts.NewFactory(deployment, m)
	timeouts := cfg.Timeouts.WithDefaults()

	opts := fizz.Options{
		Factory:      factory,
		Reader:       backend,
		Writer:       backend,
		Events:       events,
		Metrics:      m,
		LeaseLookups: cfg.Limits.LeaseLookups,
		Timeouts:     timeouts,
	}
	switch {
	case cfg.PrivateKey != "":
		signer, err := blockchain.NewKeySigner(cfg.PrivateKey, chainID)
		if err != nil {
			return nil, err
		}
		opts.Signer = signer
		zap.L().Debug("signer address", zap.String("addr", signer.Address().Hex()))
	case cfg.Account != "":
		opts.Accounts = blockchain.StaticAccount(common.HexToAddress(cfg.Account))
		zap.L().Warn("No private key configured, write methods disabled")
	default:
		zap.L().Warn("No private key or account configured, writes and event waits disabled")
	}
	if rps := cfg.Limits.RequestsPerSecond; rps > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	providers := provider.New(factory, backend, timeouts.ChainRead)
	opts.Providers = providers
	client, err := fizz.New(opts)
	if err != nil {
		return nil, err
	}

	return &Core{
		Config:    cfg,
		factory:   factory,
		fizz:      client,
		providers: providers,
	}, nil
}

var _ FizzSDK = (*Core)(nil)

func (c *Core) Fizz() *fizz.Client { return c.fizz }

func (c *Core) Providers() *provider.Client { return c.providers }

// GetEvm returns the EVM client for advanced operations. It is nil when the
// Core was not built by NewSDK.
func (c *Core) GetEvm() *blockchain.EVMClient {
	return c.evm
}

// Deployment returns the contract addresses the Core is bound to.
func (c *Core) Deployment() contracts.Deployment {
	return c.factory.Deployment()
}

// Close shuts down underlying network clients.
func (c *Core) Close() {
	c.evm.Close()
}
