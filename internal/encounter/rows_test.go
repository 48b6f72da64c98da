package encounter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRows(t *testing.T) {
	log, err := Parse(validRaw())
	if err != nil {
		t.Fatal(err)
	}

	rows := log.Rows()
	require.Len(t, rows, len(log.Players))

	for i, row := range rows {
		p := log.Players[i]
		require.Equal(t, log.ID, row.ID)
		require.Equal(t, log.Boss, row.Boss)
		require.Equal(t, log.Weird, row.Weird)
		require.Equal(t, p.Name, row.Name)
		require.Equal(t, p.Spec, row.Spec)
		require.Equal(t, p.Percent, row.Percent)
		require.Equal(t, p.Deaths, row.Deaths)
	}
}

// Every short row must agree with its long row on every shared field, and
// only the derived IsLocalPlayer field is new.
func TestShortProjection(t *testing.T) {
	log, err := Parse(validRaw())
	if err != nil {
		t.Fatal(err)
	}

	for _, row := range log.Rows() {
		short := row.Short()
		want := ShortRow{
			ID:               row.ID,
			Name:             row.Name,
			Spec:             row.Spec,
			GearScore:        row.GearScore,
			Dps:              row.Dps,
			Percent:          row.Percent,
			Timestamp:        row.Timestamp,
			Duration:         row.Duration,
			IsDead:           row.IsDead,
			Weird:            row.Weird,
			ArkPassiveActive: row.ArkPassiveActive,
			IsLocalPlayer:    row.Name == row.LocalPlayer,
			HasSpec:          row.HasSpec,
		}
		if diff := cmp.Diff(want, short); diff != "" {
			t.Fatalf("short row mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestShortIsLocalPlayer(t *testing.T) {
	log, err := Parse(validRaw())
	if err != nil {
		t.Fatal(err)
	}

	locals := 0
	for _, row := range log.Rows() {
		short := row.Short()
		if short.IsLocalPlayer {
			locals++
			require.Equal(t, "Cassia", short.Name)
		}
	}
	require.Equal(t, 1, locals)
}
