package framework

import (
	"os"
)

// DefaultBinary is the transfer binary used for both roles unless overridden.
const DefaultBinary = "_bin/wdt/wdt"

// Environment variables recognized by ConfigFromEnvironment.
const (
	EnvSender         = "WDT_SENDER"
	EnvReceiver       = "WDT_RECEIVER"
	EnvExtraOptions   = "EXTRA_WDT_OPTIONS"
	EnvEncryptionType = "ENCRYPTION_TYPE"
	EnvEnableChecksum = "ENABLE_CHECKSUM"
)

// Config holds the binary paths and the extra options that are appended to every sender and
// receiver command line.
type Config struct {
	SenderBinary   string
	ReceiverBinary string
	// ExtraOptions is appended verbatim, split on whitespace.
	ExtraOptions   string
	EncryptionType string
	EnableChecksum string
}

// DefaultConfig returns a Config that runs DefaultBinary with no extra options.
func DefaultConfig() Config {
	return Config{
		SenderBinary:   DefaultBinary,
		ReceiverBinary: DefaultBinary,
	}
}

// ConfigFromEnvironment starts from DefaultConfig and applies any non-empty environment
// variables. A nil lookup means os.LookupEnv.
func ConfigFromEnvironment(lookup func(string) (string, bool)) Config {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(name string) string {
		v, _ := lookup(name)
		return v
	}
	c := DefaultConfig()
	if v := get(EnvSender); v != "" {
		c.SenderBinary = v
	}
	if v := get(EnvReceiver); v != "" {
		c.ReceiverBinary = v
	}
	c.ExtraOptions = get(EnvExtraOptions)
	c.EncryptionType = get(EnvEncryptionType)
	c.EnableChecksum = get(EnvEnableChecksum)
	return c
}
