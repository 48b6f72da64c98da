package encounter

// Raw is one encounter record as the bulk-fetch endpoint returns it.
type Raw struct {
	ID               int64       `json:"id"`
	UploadedAt       string      `json:"uploadedAt"`
	Boss             string      `json:"boss"`
	Difficulty       string      `json:"difficulty"`
	Timestamp        int64       `json:"timestamp"`
	Duration         int64       `json:"duration"`
	Version          string      `json:"version"`
	LocalPlayer      string      `json:"localPlayer"`
	Region           string      `json:"region"`
	TotalDamageDealt int64       `json:"totalDamageDealt"`
	TotalDps         float64     `json:"totalDps"`
	MinGearScore     float64     `json:"minGearScore"`
	MaxGearScore     float64     `json:"maxGearScore"`
	PlayerOverviews  []RawPlayer `json:"playerOverviews"`
}

type RawPlayer struct {
	Name      string  `json:"name"`
	Class     string  `json:"class"`
	Spec      *string `json:"spec"`
	Dps       float64 `json:"dps"`
	GearScore float64 `json:"gearScore"`
	IsDead    bool    `json:"isDead"`
	Deaths    int     `json:"deaths"`
	// pointer so an absent field decodes as false
	ArkPassiveActive *bool `json:"arkPassiveActive"`
}
