package beep

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// Activation chime: high pitch, short
	startFreq   = 1200
	startVolume = 0.5
	startDecay  = 60

	// Sleep chime: medium pitch, slightly longer
	endFreq   = 900
	endVolume = 0.5
	endDecay  = 40

	// Error: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

// Durations live in the platform files; darwin keeps its ticks shorter.
