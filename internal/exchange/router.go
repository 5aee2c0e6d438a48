package exchange

import (
	"strings"

	"github.com/clearrail/rtr-clearing/internal/directory"
)

// Router decides whether a debtor/creditor pair are both known,
// settlement-eligible participants. Pure lookup, no side effects.
type Router struct {
	directory *directory.Directory
}

func NewRouter(dir *directory.Directory) *Router {
	return &Router{directory: dir}
}

// Route fails with a RoutingError naming the unresolved side, or both.
func (r *Router) Route(debtorID, creditorID string) error {
	var unknown []string
	if !r.directory.Known(debtorID) {
		unknown = append(unknown, "debtor")
	}
	if !r.directory.Known(creditorID) {
		unknown = append(unknown, "creditor")
	}
	if len(unknown) > 0 {
		return &RoutingError{Which: strings.Join(unknown, ", ")}
	}
	return nil
}
