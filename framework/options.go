package framework

import (
	"strings"

	"github.com/alessio/shellescape"
)

// ExtendArgs returns args followed by the options this Config adds to every command line:
// the extra options verbatim, then the encryption type, then the checksum flag.
func (c Config) ExtendArgs(args []string) []string {
	ret := append([]string(nil), args...)
	ret = append(ret, strings.Fields(c.ExtraOptions)...)
	if c.EncryptionType != "" {
		ret = append(ret, "-encryption_type="+c.EncryptionType)
	}
	if c.EnableChecksum != "" {
		ret = append(ret, "-enable_checksum="+c.EnableChecksum)
	}
	return ret
}

// Describe lists the non-default settings, one per line, for the startup banner.
func (c Config) Describe() []string {
	lines := []string{"Sender: " + c.SenderBinary + " Receiver: " + c.ReceiverBinary}
	if c.ExtraOptions != "" {
		lines = append(lines, "extra options "+c.ExtraOptions)
	}
	if c.EncryptionType != "" {
		lines = append(lines, "encryption_type "+c.EncryptionType)
	}
	if c.EnableChecksum != "" {
		lines = append(lines, "enable_checksum "+c.EnableChecksum)
	}
	return lines
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// commandLine is the display form of a command, quoted so that it can be pasted into a shell.
func commandLine(binary string, args []string) string {
	var b commandBuilder
	b.add(binary)
	b.add(args...)
	return b.String()
}
