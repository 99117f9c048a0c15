package fees

import (
	"testing"

	"SecretQuery/internal/models"

	"github.com/stretchr/testify/require"
)

func TestDefaultSchedule(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	upload, err := s.For(Upload)
	require.NoError(t, err)
	require.Equal(t, "2000000", upload.Gas)
	require.Equal(t, []models.Coin{{Amount: "2000000", Denom: "uscrt"}}, upload.Amount)

	send, err := s.For(Send)
	require.NoError(t, err)
	require.Equal(t, "80000", send.Gas)
	require.Equal(t, "80000", send.Amount[0].Amount)

	_, err = s.For(Kind("migrate"))
	require.Error(t, err)
}

func TestMergeDoesNotMutate(t *testing.T) {
	base := Default()
	merged := base.Merge(Schedule{Exec: fixed("750000", "uscrt", "750000")})

	exec, err := merged.For(Exec)
	require.NoError(t, err)
	require.Equal(t, "750000", exec.Gas)

	orig, err := base.For(Exec)
	require.NoError(t, err)
	require.Equal(t, "500000", orig.Gas)
	require.NoError(t, merged.Validate())
}

func TestWithDenom(t *testing.T) {
	s := Default().WithDenom("uscrt2")
	for _, kind := range Kinds {
		fee, err := s.For(kind)
		require.NoError(t, err)
		require.Equal(t, "uscrt2", fee.Amount[0].Denom)
	}
	require.Equal(t, "uscrt", Default()[Init].Amount[0].Denom)
}

func TestValidate(t *testing.T) {
	s := Default()
	delete(s, Init)
	require.ErrorContains(t, s.Validate(), `"init"`)

	s = Default().Merge(Schedule{Send: fixed("80000", "uscrt", "0")})
	require.Error(t, s.Validate())

	s = Default().Merge(Schedule{Send: fixed("-1", "uscrt", "80000")})
	require.Error(t, s.Validate())

	s = Default().Merge(Schedule{Send: {Gas: "80000"}})
	require.Error(t, s.Validate())
}
