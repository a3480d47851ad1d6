package shared

// EngineConfig holds the configuration surface of the routing engine.
// All values are overridable; zero values fall back to the defaults below.
type EngineConfig struct {
	// Pool capacity limits.
	MaxHumanTasks       int     `json:"maxHumanTasks" yaml:"maxHumanTasks"`
	MaxAITasks          int     `json:"maxAiTasks" yaml:"maxAiTasks"`
	MaxHumanHoursPerDay float64 `json:"maxHumanHoursPerDay" yaml:"maxHumanHoursPerDay"`
	APICallLimit        int     `json:"apiCallLimit" yaml:"apiCallLimit"`

	// Business hours used by the human time-of-day availability factor.
	WorkdayStartHour int `json:"workdayStartHour" yaml:"workdayStartHour"`
	WorkdayEndHour   int `json:"workdayEndHour" yaml:"workdayEndHour"`

	// Learner settings.
	RecalibrationBatchSize int    `json:"recalibrationBatchSize" yaml:"recalibrationBatchSize"`
	OutcomeWindow          int    `json:"outcomeWindow" yaml:"outcomeWindow"`
	JournalPath            string `json:"journalPath,omitempty" yaml:"journalPath,omitempty"`

	// Initial complexity thresholds.
	InitialAIMax    float64 `json:"initialAiMax" yaml:"initialAiMax"`
	InitialHumanMin float64 `json:"initialHumanMin" yaml:"initialHumanMin"`
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxHumanTasks:          5,
		MaxAITasks:             20,
		MaxHumanHoursPerDay:    6,
		APICallLimit:           1000,
		WorkdayStartHour:       9,
		WorkdayEndHour:         17,
		RecalibrationBatchSize: 100,
		OutcomeWindow:          1000,
		InitialAIMax:           3,
		InitialHumanMin:        7,
	}
}

// Normalize fills zero-valued fields with their defaults.
func (c EngineConfig) Normalize() EngineConfig {
	def := DefaultEngineConfig()
	if c.MaxHumanTasks <= 0 {
		c.MaxHumanTasks = def.MaxHumanTasks
	}
	if c.MaxAITasks <= 0 {
		c.MaxAITasks = def.MaxAITasks
	}
	if c.MaxHumanHoursPerDay <= 0 {
		c.MaxHumanHoursPerDay = def.MaxHumanHoursPerDay
	}
	if c.APICallLimit <= 0 {
		c.APICallLimit = def.APICallLimit
	}
	if c.WorkdayStartHour <= 0 {
		c.WorkdayStartHour = def.WorkdayStartHour
	}
	if c.WorkdayEndHour <= 0 {
		c.WorkdayEndHour = def.WorkdayEndHour
	}
	if c.RecalibrationBatchSize <= 0 {
		c.RecalibrationBatchSize = def.RecalibrationBatchSize
	}
	if c.OutcomeWindow <= 0 {
		c.OutcomeWindow = def.OutcomeWindow
	}
	if c.InitialAIMax <= 0 {
		c.InitialAIMax = def.InitialAIMax
	}
	if c.InitialHumanMin <= 0 {
		c.InitialHumanMin = def.InitialHumanMin
	}
	return c
}
