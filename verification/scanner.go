package verification

import (
	"bytes"
	"os"
)

// ProtocolErrorMarker is logged by the transfer binary when it detected an internal
// inconsistency, even if it recovered and the transferred data is correct.
const ProtocolErrorMarker = "PROTOCOL_ERROR"

// ContainsMarker reports whether the log file contains marker.
func ContainsMarker(logPath, marker string) (bool, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return false, err
	}
	return bytes.Contains(data, []byte(marker)), nil
}

// AnyLogContains checks both logs of a test and returns the paths of those containing
// marker, client log first. A log that cannot be read does not stop the other one from
// being checked; the first read error is returned along with whatever was found.
func AnyLogContains(clientLogPath, serverLogPath, marker string) ([]string, error) {
	var found []string
	var firstErr error
	for _, p := range []string{clientLogPath, serverLogPath} {
		ok, err := ContainsMarker(p, marker)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			found = append(found, p)
		}
	}
	return found, firstErr
}
