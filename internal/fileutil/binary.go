package fileutil

import (
	"bytes"
	"io"
	"os"
)

// binaryProbeSize is how many leading bytes are inspected when classifying
// a file as text or binary.
const binaryProbeSize = 512

// IsBinaryData reports whether data looks like binary content.
// A null byte in the probe window classifies the content as binary,
// mirroring the heuristic used by file(1) and git.
func IsBinaryData(data []byte) bool {
	probe := data
	if len(probe) > binaryProbeSize {
		probe = probe[:binaryProbeSize]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// IsBinaryFile reports whether the file at path has binary content.
func IsBinaryFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	probe := make([]byte, binaryProbeSize)
	n, err := f.Read(probe)
	if err != nil && err != io.EOF {
		return false, err
	}
	return IsBinaryData(probe[:n]), nil
}
