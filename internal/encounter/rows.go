package encounter

import "time"

// Row is one player of one encounter, flattened for columnar storage.
// This is the long projection: every encounter-wide field repeats on each
// of its player rows.
type Row struct {
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
	Name             string
	Class            string
	Spec             string
	Dps              float64
	Percent          float64
	GearScore        float64
	IsDead           bool
	Deaths           int
	ArkPassiveActive bool
	Weird            bool
	HasSpec          bool
}

// ShortRow is the reduced projection used for lightweight analysis. Every
// field shared with Row carries the identical value; IsLocalPlayer is
// derived (whether this row's player uploaded the log).
type ShortRow struct {
	ID               int64
	Name             string
	Spec             string
	GearScore        float64
	Dps              float64
	Percent          float64
	Timestamp        int64
	Duration         int64
	IsDead           bool
	Weird            bool
	ArkPassiveActive bool
	IsLocalPlayer    bool
	HasSpec          bool
}

// Rows flattens the encounter into one long row per player, in player
// order.
func (l *ShortLog) Rows() []Row {
	rows := make([]Row, len(l.Players))
	for i, p := range l.Players {
		rows[i] = Row{
			ID:               l.ID,
			UploadedAt:       l.UploadedAt,
			Boss:             l.Boss,
			Difficulty:       l.Difficulty,
			Timestamp:        l.Timestamp,
			Duration:         l.Duration,
			Version:          l.Version,
			LocalPlayer:      l.LocalPlayer,
			Region:           l.Region,
			TotalDamageDealt: l.TotalDamageDealt,
			TotalDps:         l.TotalDps,
			MinGearScore:     l.MinGearScore,
			MaxGearScore:     l.MaxGearScore,
			Name:             p.Name,
			Class:            p.Class,
			Spec:             p.Spec,
			Dps:              p.Dps,
			Percent:          p.Percent,
			GearScore:        p.GearScore,
			IsDead:           p.IsDead,
			Deaths:           p.Deaths,
			ArkPassiveActive: p.ArkPassiveActive,
			Weird:            l.Weird,
			HasSpec:          p.HasSpec,
		}
	}
	return rows
}

// Short reduces a long row to the short projection.
func (r Row) Short() ShortRow {
	return ShortRow{
		ID:               r.ID,
		Name:             r.Name,
		Spec:             r.Spec,
		GearScore:        r.GearScore,
		Dps:              r.Dps,
		Percent:          r.Percent,
		Timestamp:        r.Timestamp,
		Duration:         r.Duration,
		IsDead:           r.IsDead,
		Weird:            r.Weird,
		ArkPassiveActive: r.ArkPassiveActive,
		IsLocalPlayer:    r.Name == r.LocalPlayer,
		HasSpec:          r.HasSpec,
	}
}
