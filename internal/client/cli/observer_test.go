package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/client/syncmgr"
	"github.com/dmitrijs2005/cvgenius/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStatus struct{ st syncmgr.Status }

func (s staticStatus) Status() syncmgr.Status { return s.st }

func TestStatusObserver_Report(t *testing.T) {
	cases := []struct {
		name   string
		st     syncmgr.Status
		logged bool
	}{
		{"online with pending", syncmgr.Status{Online: true, PendingCount: 2, IsSyncing: true}, true},
		{"offline with pending", syncmgr.Status{PendingCount: 2}, false},
		{"online empty", syncmgr.Status{Online: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			o := NewStatusObserver(staticStatus{tc.st}, logging.New(&buf, "json", "info"))
			o.report()

			if !tc.logged {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), `"pendingCount":2`)
			assert.Contains(t, buf.String(), `"isSyncing":true`)
		})
	}
}

func TestStatusObserver_StartStop(t *testing.T) {
	o := NewStatusObserver(staticStatus{}, logging.Nop())
	require.NoError(t, o.Start())
	assert.Len(t, o.cron.Entries(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	o.Stop(ctx)
}
