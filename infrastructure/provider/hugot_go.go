//go:build !ORT

package provider

import "github.com/knights-analytics/hugot"

// newHugotSession opens a session on the pure Go backend. Builds tagged ORT
// use onnxruntime instead.
func newHugotSession() (*hugot.Session, error) {
	return hugot.NewGoSession()
}
