package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllowList_EmptyAdmitsEveryone(t *testing.T) {
	req := require.New(t)

	for _, l := range []AllowList{nil, {}, NewAllowList()} {
		req.True(l.Open())
		for _, id := range []int64{0, 1, -5, 111, 222, 1<<62 + 7} {
			req.True(l.IsAuthorized(id), "id %d", id)
		}
	}
}

func TestAllowList_NonEmptyIsMembership(t *testing.T) {
	req := require.New(t)
	l := NewAllowList(111, 333, 111)

	req.False(l.Open())
	req.Len(l, 2)
	req.True(l.IsAuthorized(111))
	req.True(l.IsAuthorized(333))
	req.False(l.IsAuthorized(222))
	req.False(l.IsAuthorized(0))
	req.False(l.IsAuthorized(-111))
}
