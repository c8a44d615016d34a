// Package natsx connects to NATS with the module's defaults.
package natsx

import (
	"os"

	"github.com/nats-io/nats.go"
)

// NewClient connects to the server named by the NATS_URL environment variable.
// Without explicit options the connection identifies itself as "myna" and
// enables compression.
func NewClient(opts ...nats.Option) (*nats.Conn, error) {
	if len(opts) == 0 {
		opts = append(opts, nats.Name("myna"), nats.Compression(true))
	}
	return nats.Connect(os.Getenv("NATS_URL"), opts...)
}
