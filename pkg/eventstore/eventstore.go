package eventstore

import (
	"fmt"

	"github.com/EventStore/EventStore-Client-Go/esdb"
)

// Connect opens a client for an esdb:// connection string,
// e.g. esdb://localhost:2113?tls=false.
func Connect(uri string) (*esdb.Client, error) {
	settings, err := esdb.ParseConnectionString(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid eventstore connection string: %w", err)
	}

	client, err := esdb.NewClient(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create eventstore client: %w", err)
	}
	return client, nil
}
