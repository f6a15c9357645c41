package vectorutils

import (
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/papercomputeco/kin/pkg/vector"
	"github.com/papercomputeco/kin/pkg/vector/inmemory"
	"github.com/papercomputeco/kin/pkg/vector/qdrant"
	"github.com/papercomputeco/kin/pkg/vector/sqlitevec"
)

type NewIndexOpts struct {
	ProviderType string
	Target       string
	APIKey       string
	UseTLS       bool
	Collection   string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewIndex(o *NewIndexOpts) (vector.Index, error) {
	switch o.ProviderType {
	case "qdrant":
		host, port, err := splitTarget(o.Target)
		if err != nil {
			return nil, fmt.Errorf("parsing qdrant target %q: %w", o.Target, err)
		}
		return qdrant.NewDriver(qdrant.Config{
			Host:           host,
			Port:           port,
			APIKey:         o.APIKey,
			UseTLS:         o.UseTLS,
			CollectionName: o.Collection,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case "sqlite", "sqlitevec":
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "inmemory":
		return inmemory.NewIndex(), nil
	default:
		return nil, fmt.Errorf("unsupported vector index provider: %s", o.ProviderType)
	}
}

// splitTarget parses "host:port" targets; a bare host gets the default
// Qdrant gRPC port.
func splitTarget(target string) (string, int, error) {
	if target == "" {
		return "", 0, fmt.Errorf("target is required")
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		return target, 0, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}

	return host, port, nil
}
