package mem

import (
	"context"
	"testing"

	"github.com/bobg/vcs"
	"github.com/bobg/vcs/testutil"
)

func TestStore(t *testing.T) {
	testutil.ReadWrite(context.Background(), t, New())
}

func TestAllAddrs(t *testing.T) {
	testutil.AllAddrs(context.Background(), t, func() vcs.Store { return New() })
}
