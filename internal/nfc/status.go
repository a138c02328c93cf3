package nfc

// StatusReporter receives short human-readable progress messages.
// Display and truncation policy belong to the implementation.
type StatusReporter interface {
	Status(msg string)
}

// NopStatusReporter discards status messages.
type NopStatusReporter struct{}

func (NopStatusReporter) Status(string) {}

// StatusFunc adapts a plain function to StatusReporter.
type StatusFunc func(msg string)

func (f StatusFunc) Status(msg string) { f(msg) }
