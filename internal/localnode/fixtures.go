package localnode

import (
	"crypto/sha256"

	"SecretQuery/internal/models"
)

// Fixture values seeded by Seed.
const (
	AliasRegistryCodeID   uint64 = 29003
	AliasRegistryCodeHash        = "4904cc27f2d1f9307af14ebcdb7ec5a3c2edb1f2a9f11db4be99dc9c023afb08"
	AliasRegistryFirst           = "secret1qrmenh9vs847nk0t349jursuh5lvtwfu2c2syy"
	AliasRegistrySecond          = "secret1d2zwmegsy5sswj0awmzw3v74mdv9t0wzqz99z5"
	AliceAddress                 = "secret1q0e6fl8z2fsfw454mg4c6rseqs0z4d0dhze6ap"
	BobAddress                   = "secret1kcu4mfs2lfqjc8kcm5zdcjn7l0pm5mwnjuld96"
)

// NewSeededState builds a State with a node IO key derived from chainID and
// the alias registry fixtures loaded.
func NewSeededState(chainID string, height int64) (*State, error) {
	ioSeed := sha256.Sum256([]byte("localnode-io-key/" + chainID))
	state, err := NewState(chainID, height, ioSeed[:])
	if err != nil {
		return nil, err
	}
	if err := Seed(state); err != nil {
		return nil, err
	}
	return state, nil
}

// Seed uploads the alias registry code and instantiates two registries.
func Seed(state *State) error {
	state.AddCode(Code{ID: AliasRegistryCodeID, Hash: AliasRegistryCodeHash})

	avatar := "https://example.com/alice.png"
	contracts := []Contract{
		{
			Address: AliasRegistryFirst,
			CodeID:  AliasRegistryCodeID,
			Creator: AliceAddress,
			Label:   "alias-registry",
			Aliases: []models.AliasAttributes{
				{Alias: "alice", AvatarURL: &avatar, Address: AliceAddress},
				{Alias: "bob", Address: BobAddress},
			},
		},
		{
			Address: AliasRegistrySecond,
			CodeID:  AliasRegistryCodeID,
			Creator: BobAddress,
			Label:   "alias-registry-staging",
		},
	}
	for _, c := range contracts {
		if err := state.AddContract(c); err != nil {
			return err
		}
	}
	return nil
}
