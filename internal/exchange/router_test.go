package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearrail/rtr-clearing/internal/directory"
	"github.com/clearrail/rtr-clearing/internal/models"
)

func newTestRouter(t *testing.T, bics ...string) *Router {
	t.Helper()

	dir := directory.New()
	for _, bic := range bics {
		require.NoError(t, dir.Register(models.Participant{BIC: bic, Name: bic, AccountNumber: "ACC-" + bic}))
	}
	return NewRouter(dir)
}

func TestRouteKnownParticipants(t *testing.T) {
	r := newTestRouter(t, "BANKA", "BANKB")
	assert.NoError(t, r.Route("BANKA", "BANKB"))
}

func TestRouteUnknownParticipant(t *testing.T) {
	r := newTestRouter(t, "BANKA", "BANKB")

	tests := []struct {
		name             string
		debtor, creditor string
		want             string
	}{
		{"unknown debtor", "GHOST", "BANKB", "UnknownParticipant:debtor"},
		{"unknown creditor", "BANKA", "GHOST", "UnknownParticipant:creditor"},
		{"both unknown", "GHOST1", "GHOST2", "UnknownParticipant:debtor, creditor"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := r.Route(tc.debtor, tc.creditor)
			require.Error(t, err)

			var rerr *RoutingError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tc.want, rerr.Error())
		})
	}
}
