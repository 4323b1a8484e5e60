package emulator

// Options are the process-level parameters a backend is created with.
type Options struct {
	DolphinPath   string
	OnlineDelay   int
	BlockingInput bool
	PollingMode   bool
	SaveReplays   bool
	Overclock     *float64 // nil = emulator default

	Render       bool
	DisableAudio bool
	UseEXIInputs bool
	EnableFFW    bool // fast-forward when headless

	// Seed drives any randomness inside simulated backends.
	Seed int64
}
