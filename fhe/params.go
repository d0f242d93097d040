package fhe

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/heint"
)

// Width tags the two ciphertext widths supported by the oracle.
type Width byte

const (
	// WidthNarrow carries session counts. Plaintext modulus 0x10001.
	WidthNarrow Width = 0x01

	// WidthWide carries energy sums. Plaintext modulus 0x3ee0001 leaves
	// headroom for aggregates across many contributions.
	WidthWide Width = 0x02
)

func (w Width) String() string {
	switch w {
	case WidthNarrow:
		return "narrow"
	case WidthWide:
		return "wide"
	}
	return fmt.Sprintf("width(0x%02x)", byte(w))
}

// DefaultNarrowLiteral is the production parameter set for the narrow
// width: logN=13 with a 16-bit plaintext modulus.
var DefaultNarrowLiteral = heint.ParametersLiteral{
	LogN:             13,
	LogQ:             []int{54, 45},
	LogP:             []int{61},
	PlaintextModulus: 0x10001,
}

// DefaultWideLiteral is the production parameter set for the wide width:
// logN=13 with a 26-bit plaintext modulus.
var DefaultWideLiteral = heint.ParametersLiteral{
	LogN:             13,
	LogQ:             []int{54, 45},
	LogP:             []int{61},
	PlaintextModulus: 0x3ee0001,
}

// Params bundles the BGV parameter sets for both ciphertext widths.
type Params struct {
	Narrow heint.Parameters
	Wide   heint.Parameters
}

// NewParams instantiates both parameter sets from literals.
func NewParams(narrow, wide heint.ParametersLiteral) (Params, error) {
	np, err := heint.NewParametersFromLiteral(narrow)
	if err != nil {
		return Params{}, fmt.Errorf("narrow parameters: %w", err)
	}
	wp, err := heint.NewParametersFromLiteral(wide)
	if err != nil {
		return Params{}, fmt.Errorf("wide parameters: %w", err)
	}
	return Params{Narrow: np, Wide: wp}, nil
}

// DefaultParams returns the production parameter sets.
func DefaultParams() (Params, error) {
	return NewParams(DefaultNarrowLiteral, DefaultWideLiteral)
}

// KeySet holds the secret and public keys for both widths. The secret
// keys belong to the oracle; producers only need the public half.
type KeySet struct {
	NarrowSK *rlwe.SecretKey
	NarrowPK *rlwe.PublicKey
	WideSK   *rlwe.SecretKey
	WidePK   *rlwe.PublicKey
}

// GenKeySet generates fresh key pairs for both widths.
func GenKeySet(params Params) *KeySet {
	narrowSK, narrowPK := heint.NewKeyGenerator(params.Narrow).GenKeyPairNew()
	wideSK, widePK := heint.NewKeyGenerator(params.Wide).GenKeyPairNew()

	return &KeySet{
		NarrowSK: narrowSK,
		NarrowPK: narrowPK,
		WideSK:   wideSK,
		WidePK:   widePK,
	}
}

// Public returns a copy of the key set with the secret keys stripped,
// safe to hand to producers.
func (k *KeySet) Public() *KeySet {
	return &KeySet{NarrowPK: k.NarrowPK, WidePK: k.WidePK}
}
