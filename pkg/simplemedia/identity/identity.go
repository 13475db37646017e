// Package identity answers whether a server name belongs to this homeserver.
package identity

import (
	"strings"

	"github.com/samber/lo"
)

// ServerNames is the immutable set of names this server is authoritative for.
// It is safe for concurrent use.
type ServerNames struct {
	primary string
	names   map[string]struct{}
}

// New returns the set made of primary plus any aliases. Blank and duplicate
// names are dropped.
func New(primary string, aliases ...string) *ServerNames {
	all := lo.Uniq(lo.Compact(lo.Map(append([]string{primary}, aliases...), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))

	return &ServerNames{
		primary: strings.TrimSpace(primary),
		names:   lo.SliceToMap(all, func(s string) (string, struct{}) { return s, struct{}{} }),
	}
}

// IsMine reports whether serverName exactly matches one of the configured names.
func (s *ServerNames) IsMine(serverName string) bool {
	_, ok := s.names[serverName]
	return ok
}

// Primary returns the canonical server name.
func (s *ServerNames) Primary() string {
	return s.primary
}

// Names returns the configured names in no particular order.
func (s *ServerNames) Names() []string {
	return lo.Keys(s.names)
}
