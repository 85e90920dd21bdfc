package nftprogram

import (
	"bytes"
	"encoding/binary"

	"github.com/cockroachdb/errors"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	createMetadataAccountV3 uint8 = 33
	createMasterEditionV3   uint8 = 17

	maxURILen = 200
)

// Metaplex caps on the on-chain data fields, in bytes.
const (
	MaxNameLen   = 32
	MaxSymbolLen = 10
)

// Creator is a royalty recipient recorded in the on-chain metadata.
type Creator struct {
	Address  solana.PublicKey
	Verified bool
	Share    uint8
}

// DataV2 is the on-chain metadata record written by CreateMetadataAccountV3.
type DataV2 struct {
	Name                 string
	Symbol               string
	URI                  string
	SellerFeeBasisPoints uint16
	Creators             []Creator
}

func (d DataV2) validate() error {
	switch {
	case len(d.Name) > MaxNameLen:
		return errors.Newf("name %q longer than %d bytes", d.Name, MaxNameLen)
	case len(d.Symbol) > MaxSymbolLen:
		return errors.Newf("symbol %q longer than %d bytes", d.Symbol, MaxSymbolLen)
	case len(d.URI) > maxURILen:
		return errors.Newf("uri longer than %d bytes", maxURILen)
	case d.SellerFeeBasisPoints > 10000:
		return errors.Newf("seller fee %d bps above 10000", d.SellerFeeBasisPoints)
	}
	if len(d.Creators) > 0 {
		total := 0
		for _, c := range d.Creators {
			total += int(c.Share)
		}
		if total != 100 {
			return errors.Newf("creator shares add up to %d, want 100", total)
		}
	}
	return nil
}

// MetadataAddress derives the metadata account of mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		solana.TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
	}, solana.TokenMetadataProgramID)
	return addr, err
}

// MasterEditionAddress derives the master edition account of mint.
func MasterEditionAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte("metadata"),
		solana.TokenMetadataProgramID.Bytes(),
		mint.Bytes(),
		[]byte("edition"),
	}, solana.TokenMetadataProgramID)
	return addr, err
}

func writeString(enc *bin.Encoder, s string) error {
	if err := enc.WriteUint32(uint32(len(s)), binary.LittleEndian); err != nil {
		return err
	}
	return enc.WriteBytes([]byte(s), false)
}

func encodeDataV2(enc *bin.Encoder, d DataV2) error {
	for _, s := range []string{d.Name, d.Symbol, d.URI} {
		if err := writeString(enc, s); err != nil {
			return err
		}
	}
	if err := enc.WriteUint16(d.SellerFeeBasisPoints, binary.LittleEndian); err != nil {
		return err
	}

	if len(d.Creators) == 0 {
		if err := enc.WriteBool(false); err != nil {
			return err
		}
	} else {
		if err := enc.WriteBool(true); err != nil {
			return err
		}
		if err := enc.WriteUint32(uint32(len(d.Creators)), binary.LittleEndian); err != nil {
			return err
		}
		for _, c := range d.Creators {
			if err := enc.WriteBytes(c.Address.Bytes(), false); err != nil {
				return err
			}
			if err := enc.WriteBool(c.Verified); err != nil {
				return err
			}
			if err := enc.WriteUint8(c.Share); err != nil {
				return err
			}
		}
	}

	// collection: None, uses: None
	if err := enc.WriteBool(false); err != nil {
		return err
	}
	return enc.WriteBool(false)
}

// CreateMetadataAccountV3Data encodes the instruction data of CreateMetadataAccountV3.
func CreateMetadataAccountV3Data(d DataV2, isMutable bool) ([]byte, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(createMetadataAccountV3); err != nil {
		return nil, err
	}
	if err := encodeDataV2(enc, d); err != nil {
		return nil, errors.Wrap(err, "encode metadata")
	}
	if err := enc.WriteBool(isMutable); err != nil {
		return nil, err
	}
	// collection_details: None
	if err := enc.WriteBool(false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CreateMasterEditionV3Data encodes the instruction data of CreateMasterEditionV3.
// A nil maxSupply means unlimited prints.
func CreateMasterEditionV3Data(maxSupply *uint64) ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint8(createMasterEditionV3); err != nil {
		return nil, err
	}
	if maxSupply == nil {
		if err := enc.WriteBool(false); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	if err := enc.WriteBool(true); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(*maxSupply, binary.LittleEndian); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type MetadataAccounts struct {
	Metadata        solana.PublicKey
	Mint            solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	UpdateAuthority solana.PublicKey
}

func NewCreateMetadataAccountV3Instruction(acc MetadataAccounts, d DataV2, isMutable bool) (solana.Instruction, error) {
	data, err := CreateMetadataAccountV3Data(d, isMutable)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(solana.TokenMetadataProgramID, solana.AccountMetaSlice{
		solana.Meta(acc.Metadata).WRITE(),
		solana.Meta(acc.Mint),
		solana.Meta(acc.MintAuthority).SIGNER(),
		solana.Meta(acc.Payer).WRITE().SIGNER(),
		solana.Meta(acc.UpdateAuthority).SIGNER(),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}, data), nil
}

type MasterEditionAccounts struct {
	Edition         solana.PublicKey
	Mint            solana.PublicKey
	UpdateAuthority solana.PublicKey
	MintAuthority   solana.PublicKey
	Payer           solana.PublicKey
	Metadata        solana.PublicKey
}

func NewCreateMasterEditionV3Instruction(acc MasterEditionAccounts, maxSupply *uint64) (solana.Instruction, error) {
	data, err := CreateMasterEditionV3Data(maxSupply)
	if err != nil {
		return nil, err
	}
	return solana.NewInstruction(solana.TokenMetadataProgramID, solana.AccountMetaSlice{
		solana.Meta(acc.Edition).WRITE(),
		solana.Meta(acc.Mint).WRITE(),
		solana.Meta(acc.UpdateAuthority).SIGNER(),
		solana.Meta(acc.MintAuthority).SIGNER(),
		solana.Meta(acc.Payer).WRITE().SIGNER(),
		solana.Meta(acc.Metadata).WRITE(),
		solana.Meta(solana.TokenProgramID),
		solana.Meta(solana.SystemProgramID),
		solana.Meta(solana.SysVarRentPubkey),
	}, data), nil
}
