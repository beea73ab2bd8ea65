// Package cryptoinit wires the packet layer's dependencies together. It
// deliberately has no init() function: a closed, compile-time-known set
// of OpenPGP algorithms needs no hidden global registration, unlike the
// open-ended plugin registries an init()-based design suits.
package cryptoinit

import (
	"github.com/sage-x-project/sage-pgp/config"
	"github.com/sage-x-project/sage-pgp/openpgp/dispatch"
)

// Wire constructs the dispatcher bound to cfg. cfg may be nil, in which
// case the dispatcher falls back to config.Default() behavior for the
// checks that consult it. Callers hold on to the returned *dispatch.Dispatcher
// and pass it to the packet codecs (openpgp/packet) that need to
// generate, sign, verify, encrypt or decrypt key material.
func Wire(cfg *config.Config) *dispatch.Dispatcher {
	if cfg == nil {
		cfg = config.Default()
	}
	return dispatch.New(cfg)
}
