// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry is the name registry contract. Every registered name is
// an NFT with an expiration date. Holders may point their account at a
// default name and deploy a resolver for each name they hold.
package registry

import (
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/utils/json"

	"github.com/navara-labs/nnsvm/chain"
	"github.com/navara-labs/nnsvm/codec"
	"github.com/navara-labs/nnsvm/nft"
	"github.com/navara-labs/nnsvm/owner"
)

const (
	CodeName = "registry"
	CodeSize = 320_000

	MetadataSpec = "nft-1.0.0"
	ServiceName  = "Navara name service"
	Symbol       = "NNS"
	TitleSuffix  = ".nns"
)

// registry layout:
//   config    -> config
//   metadata  -> ContractMetadata
//   owner/    -> owner role
//   nft/      -> token bookkeeping
//   expiry/   -> [name] -> expiration (ms, big endian)
//   default/  -> [account] -> name
//   ref/      -> [name]/[account] -> nil
var (
	configKey   = []byte("config")
	metadataKey = []byte("metadata")

	expiryPrefix  = []byte("expiry")
	defaultPrefix = []byte("default")
	refPrefix     = []byte("ref")
)

var Code = &chain.Code{
	Name: CodeName,
	Size: CodeSize,
	New:  func() chain.Contract { return &Contract{} },
}

type config struct {
	PriceForOneYear uint64 `serialize:"true"`
	FeeRegister     uint64 `serialize:"true"`
}

type ContractMetadata struct {
	Spec          string `serialize:"true" json:"spec"`
	Name          string `serialize:"true" json:"name"`
	Symbol        string `serialize:"true" json:"symbol"`
	Icon          string `serialize:"true" json:"icon,omitempty"`
	BaseURI       string `serialize:"true" json:"base_uri,omitempty"`
	Reference     string `serialize:"true" json:"reference,omitempty"`
	ReferenceHash string `serialize:"true" json:"reference_hash,omitempty"`
}

func (m *ContractMetadata) Verify() error {
	if m == nil || len(m.Spec) == 0 || len(m.Name) == 0 || len(m.Symbol) == 0 {
		return ErrInvalidMetadata
	}
	return nil
}

func DefaultMetadata() *ContractMetadata {
	return &ContractMetadata{
		Spec:   MetadataSpec,
		Name:   ServiceName,
		Symbol: Symbol,
		Icon:   Icon,
	}
}

type Contract struct{}

type state struct {
	ctx      *chain.CallContext
	db       database.Database
	owner    *owner.Owner
	tokens   *nft.Collection
	expiry   database.Database
	defaults database.Database
	refs     database.Database
}

func load(ctx *chain.CallContext) *state {
	return &state{
		ctx:      ctx,
		db:       ctx.Database,
		owner:    owner.New(ctx.Database),
		tokens:   nft.New(ctx.Database),
		expiry:   prefixdb.New(expiryPrefix, ctx.Database),
		defaults: prefixdb.New(defaultPrefix, ctx.Database),
		refs:     prefixdb.New(refPrefix, ctx.Database),
	}
}

func (*Contract) Call(ctx *chain.CallContext, method string, args []byte) ([]byte, error) {
	s := load(ctx)
	switch method {
	case "new":
		var a NewArgs
		if err := chain.DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, s.init(&a)
	case "new_default_meta":
		var a OwnerArgs
		if err := chain.DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return nil, s.init(&NewArgs{
			OwnerID:         a.OwnerID,
			Metadata:        DefaultMetadata(),
			PriceForOneYear: json.Uint64(DefaultPricePerYear),
			FeeRegister:     json.Uint64(RegisterOverhead),
		})
	}

	cfg, err := s.config()
	if err != nil {
		return nil, err
	}
	if v, ok, err := s.owner.Handle(ctx, method, args); ok {
		return v, err
	}
	if v, ok, err := s.tokens.Handle(ctx, method, args); ok {
		return v, err
	}

	var v interface{}
	switch method {
	case "migrate":
		var a MigrateArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.migrate(cfg, uint64(a.FeeRegister))
		}
	case "nft_metadata":
		v, err = s.metadata()

	// Registration
	case "register":
		var a RegisterArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.register(cfg, a.TokenID, a.TokenOwnerID)
		}
	case "register_name":
		var a RegisterNameArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.registerName(&a)
		}
	case "failure_resolve":
		var a FailureResolveArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.failureResolve(a.Signer, uint64(a.Deposited))
		}
	case "extend":
		var a TokenArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.extend(cfg, a.TokenID)
		}
	case "expired_date":
		var a TokenArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.expiredDate(a.TokenID)
		}

	// Default names
	case "set_default":
		var a TokenArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setDefault(a.TokenID)
		}
	case "remove_default":
		err = s.removeDefault(ctx.Predecessor)
	case "default_name":
		var a AccountArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.defaultName(a.AccountID)
		}

	// Transfers
	case "nft_transfer":
		var a TransferArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.transfer(&a)
		}
	case "nft_transfer_call":
		var a TransferArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.transferCall(&a)
		}
	case nft.ResolveTransferMethod:
		var a nft.ResolveTransferArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			v, err = s.resolveTransfer(&a)
		}

	// Resolvers
	case "setup":
		var a TokenArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setup(a.TokenID)
		}
	case "take_ownership":
		var a TokenArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.takeOwnership(a.TokenID)
		}
	case "get_min_attach_balance":
		var a OwnerArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			var b uint64
			b, err = s.minAttachBalance(a.OwnerID)
			v = json.Uint64(b)
		}

	// Pricing
	case "set_price":
		var a PriceArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setPrice(cfg, uint64(a.Price))
		}
	case "price_per_year":
		v = json.Uint64(cfg.PriceForOneYear)
	case "set_fee_register":
		var a PriceArgs
		if err = chain.DecodeArgs(args, &a); err == nil {
			err = s.setFeeRegister(cfg, uint64(a.Price))
		}
	case "fee_register":
		v = json.Uint64(cfg.FeeRegister)

	default:
		return nil, fmt.Errorf("%w: %s", chain.ErrMethodNotFound, method)
	}
	if err != nil {
		return nil, err
	}
	return chain.EncodeResult(v)
}

func (s *state) init(a *NewArgs) error {
	has, err := s.db.Has(configKey)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyInitialized
	}
	if err := a.Metadata.Verify(); err != nil {
		return err
	}
	if a.PriceForOneYear == 0 {
		return ErrInvalidPrice
	}
	if err := s.owner.Init(a.OwnerID); err != nil {
		return err
	}
	b, err := codec.Marshal(a.Metadata)
	if err != nil {
		return err
	}
	if err := s.db.Put(metadataKey, b); err != nil {
		return err
	}
	s.ctx.Logger().Info("registry initialized", "owner", a.OwnerID, "price", uint64(a.PriceForOneYear), "fee", uint64(a.FeeRegister))
	return s.putConfig(&config{
		PriceForOneYear: uint64(a.PriceForOneYear),
		FeeRegister:     uint64(a.FeeRegister),
	})
}

// migrate is the upgrade hook: it keeps every record and rewrites the
// registration fee.
func (s *state) migrate(cfg *config, fee uint64) error {
	if err := s.ctx.RequirePrivate(); err != nil {
		return err
	}
	cfg.FeeRegister = fee
	return s.putConfig(cfg)
}

func (s *state) config() (*config, error) {
	v, err := s.db.Get(configKey)
	if err == database.ErrNotFound {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}
	cfg := new(config)
	return cfg, codec.Unmarshal(v, cfg)
}

func (s *state) putConfig(cfg *config) error {
	b, err := codec.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.db.Put(configKey, b)
}

func (s *state) metadata() (*ContractMetadata, error) {
	v, err := s.db.Get(metadataKey)
	if err != nil {
		return nil, err
	}
	m := new(ContractMetadata)
	return m, codec.Unmarshal(v, m)
}

// tokenMetadata is derived from the name alone.
func tokenMetadata(id string) *nft.TokenMetadata {
	return &nft.TokenMetadata{
		Title:       id + TitleSuffix,
		Description: ServiceName,
		Media:       Icon,
		Copies:      1,
	}
}

// requireHolder returns the holder of [id] and fails unless it is the
// predecessor.
func (s *state) requireHolder(id string) (chain.AccountID, error) {
	holder, ok, err := s.tokens.Owner(id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", nft.ErrTokenMissing, id)
	}
	if holder != s.ctx.Predecessor {
		return "", fmt.Errorf("%w: %s does not hold %s", ErrUnauthorized, s.ctx.Predecessor, id)
	}
	return holder, nil
}

func (s *state) requireOwner() error {
	if err := s.owner.Require(s.ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return nil
}
