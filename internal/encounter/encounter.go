// Package encounter parses raw encounter records into typed logs,
// flattens them into per-player rows and flags anomalous encounters.
package encounter

import (
	"fmt"
	"time"
)

// ErrZeroTotalDps is returned when an encounter reports a total DPS of
// zero, which would make every per-player damage share undefined.
var ErrZeroTotalDps = fmt.Errorf("encounter reports zero total dps")

// ShortLog is one parsed encounter. Immutable after Parse; it owns its
// player list exclusively.
type ShortLog struct {
	ID               int64
	UploadedAt       time.Time
	Boss             string
	Difficulty       string
	Timestamp        int64
	Duration         int64
	Version          string
	LocalPlayer      string
	Region           string
	TotalDamageDealt int64
	TotalDps         float64
	MinGearScore     float64
	MaxGearScore     float64
	Players          []PlayerOverview
	Weird            bool
}

// PlayerOverview is one player's performance within an encounter. It
// refers back to the owning encounter by id only.
type PlayerOverview struct {
	Name        string
	EncounterID int64
	Class       string
	// Spec falls back to the class name when the service didn't report one.
	Spec             string
	Dps              float64
	Percent          float64
	GearScore        float64
	IsDead           bool
	Deaths           int
	ArkPassiveActive bool
	HasSpec          bool
}

// Parse maps a raw record 1:1 into a ShortLog, deriving per-player damage
// shares and the anomaly flag. Player order follows the input record.
func Parse(raw Raw) (*ShortLog, error) {
	uploadedAt, err := time.Parse(time.RFC3339, raw.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("encounter %d: parse uploadedAt: %w", raw.ID, err)
	}
	if raw.TotalDps == 0 {
		return nil, fmt.Errorf("encounter %d: %w", raw.ID, ErrZeroTotalDps)
	}

	log := &ShortLog{
		ID:               raw.ID,
		UploadedAt:       uploadedAt,
		Boss:             raw.Boss,
		Difficulty:       raw.Difficulty,
		Timestamp:        raw.Timestamp,
		Duration:         raw.Duration,
		Version:          raw.Version,
		LocalPlayer:      raw.LocalPlayer,
		Region:           raw.Region,
		TotalDamageDealt: raw.TotalDamageDealt,
		TotalDps:         raw.TotalDps,
		MinGearScore:     raw.MinGearScore,
		MaxGearScore:     raw.MaxGearScore,
	}

	log.Players = make([]PlayerOverview, len(raw.PlayerOverviews))
	for i, p := range raw.PlayerOverviews {
		spec := p.Class
		hasSpec := p.Spec != nil
		if hasSpec {
			spec = *p.Spec
		}
		arkPassive := false
		if p.ArkPassiveActive != nil {
			arkPassive = *p.ArkPassiveActive
		}
		log.Players[i] = PlayerOverview{
			Name:             p.Name,
			EncounterID:      raw.ID,
			Class:            p.Class,
			Spec:             spec,
			Dps:              p.Dps,
			Percent:          p.Dps / raw.TotalDps,
			GearScore:        p.GearScore,
			IsDead:           p.IsDead,
			Deaths:           p.Deaths,
			ArkPassiveActive: arkPassive,
			HasSpec:          hasSpec,
		}
	}

	log.Weird = classify(log)
	return log, nil
}

// FightTime is the fight timestamp as wall-clock time (the wire carries
// epoch milliseconds).
func (l *ShortLog) FightTime() time.Time {
	return time.UnixMilli(l.Timestamp)
}
