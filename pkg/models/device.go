package models

// CapabilityFlags describes what a runtime environment can do for AR.
type CapabilityFlags struct {
	WebXR         bool `json:"webxr"`
	Gyroscope     bool `json:"gyroscope"`
	Accelerometer bool `json:"accelerometer"`
	Camera        bool `json:"camera"`
}

// Compatible reports whether AR experiences can start at all:
// WebXR, or a gyroscope together with a camera.
func (f CapabilityFlags) Compatible() bool {
	return f.WebXR || (f.Gyroscope && f.Camera)
}

// Tier is an AR compatibility level.
type Tier string

const (
	TierFull     Tier = "full"
	TierStandard Tier = "standard"
	TierBasic    Tier = "basic"
	TierNone     Tier = "none"
)

// OptimizationSettings are the render settings applied for a tier.
type OptimizationSettings struct {
	Quality           string `json:"quality"`
	ParticleCount     int    `json:"particle_count"`
	ShadowResolution  int    `json:"shadow_resolution"`
	TextureResolution int    `json:"texture_resolution"`
	Antialiasing      bool   `json:"antialiasing"`
	PostProcessing    bool   `json:"post_processing"`
}

// TierSettings maps tiers to their optimization settings.
var TierSettings = map[Tier]OptimizationSettings{
	TierFull: {
		Quality:           "high",
		ParticleCount:     100,
		ShadowResolution:  2048,
		TextureResolution: 2048,
		Antialiasing:      true,
		PostProcessing:    true,
	},
	TierStandard: {
		Quality:           "medium",
		ParticleCount:     50,
		ShadowResolution:  1024,
		TextureResolution: 1024,
		Antialiasing:      true,
	},
	TierBasic: {
		Quality:           "low",
		ParticleCount:     25,
		ShadowResolution:  512,
		TextureResolution: 512,
	},
}

// SettingsFor returns the settings for t; tiers without settings get basic.
func SettingsFor(t Tier) OptimizationSettings {
	if s, ok := TierSettings[t]; ok {
		return s
	}
	return TierSettings[TierBasic]
}
