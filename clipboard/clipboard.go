// Package clipboard wraps the system clipboard for the copy-that action
// and the doctor roundtrip check.
package clipboard

import cb "github.com/atotto/clipboard"

func Copy(text string) error {
	return cb.WriteAll(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// Unsupported reports whether no clipboard tool is available on this
// system (xclip/xsel on Linux).
func Unsupported() bool {
	return cb.Unsupported
}
