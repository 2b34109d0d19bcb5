package resonance

import "github.com/thebtf/resonance/pkg/models"

// DeviceReport is the AR compatibility of a runtime environment.
type DeviceReport struct {
	Flags       models.CapabilityFlags      `json:"flags"`
	Tier        models.Tier                 `json:"tier"`
	Compatible  bool                        `json:"compatible"`
	Settings    models.OptimizationSettings `json:"settings"`
	MatchedRule int                         `json:"matched_rule"`
	Default     bool                        `json:"default"`
}

// DeviceCompatibility classifies flags into a tier and picks render settings.
func (e *Engine) DeviceCompatibility(flags models.CapabilityFlags) DeviceReport {
	m := e.deviceTiers.Explain(flags)
	return DeviceReport{
		Flags:       flags,
		Tier:        m.Label,
		Compatible:  flags.Compatible(),
		Settings:    models.SettingsFor(m.Label),
		MatchedRule: m.Rule,
		Default:     m.Default,
	}
}

// DeviceTiers returns the tier labels in rule order.
func (e *Engine) DeviceTiers() []models.Tier {
	return e.deviceTiers.Labels()
}
