package main

import (
	"bytes"
	"io"
	"os"
)

func loadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func writeBytes(path string, data []byte) error {
	return os.WriteFile(path, data, 0o600)
}

func bytesReader(data []byte) io.Reader {
	return bytes.NewReader(data)
}
