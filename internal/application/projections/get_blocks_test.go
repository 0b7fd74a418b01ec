package projections

import (
	"context"
	"testing"
	"time"

	"bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
)

// TestQueryGetBlockStatus_Directional verifies each side sees the mirror of the other.
func TestQueryGetBlockStatus_Directional(t *testing.T) {
	deps := GetBlockStatusDeps{Blocks: &mockBlocks{rels: []block.Relationship{{BlockerID: "2", BlockedID: "1"}}}}
	ctx := context.Background()

	got, err := QueryGetBlockStatus(ctx, GetBlockStatusQuery{ViewerID: "1", TargetID: "2"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != (block.Status{ABlocksB: false, BBlocksA: true}) {
		t.Errorf("status(1,2) = %+v", got)
	}
	rev, err := QueryGetBlockStatus(ctx, GetBlockStatusQuery{ViewerID: "2", TargetID: "1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rev != got.Reverse() {
		t.Errorf("status(2,1) = %+v, want %+v", rev, got.Reverse())
	}

	if _, err := QueryGetBlockStatus(ctx, GetBlockStatusQuery{ViewerID: "1", TargetID: "1"}, deps); !failure.Is(err, failure.KindValidation) {
		t.Errorf("self err = %v, want validation", err)
	}
}

// TestQueryGetBlockedUsers verifies newest-first listing with names.
func TestQueryGetBlockedUsers(t *testing.T) {
	blocks := &mockBlocks{rels: []block.Relationship{
		{BlockerID: "1", BlockedID: "2", CreatedAt: baseTime},
		{BlockerID: "1", BlockedID: "3", Reason: "rude", CreatedAt: baseTime.Add(time.Minute)},
		{BlockerID: "2", BlockedID: "1", CreatedAt: baseTime},
	}}
	got, err := QueryGetBlockedUsers(context.Background(), GetBlockedUsersQuery{ViewerID: "1"},
		GetBlockedUsersDeps{Blocks: blocks, Users: testUsers})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].BlockedID != "3" || got[0].DisplayName != "Cy" || got[0].Reason != "rude" {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].BlockedID != "2" || got[1].DisplayName != "Ben" {
		t.Errorf("second = %+v", got[1])
	}

	none, err := QueryGetBlockedUsers(context.Background(), GetBlockedUsersQuery{ViewerID: "3"},
		GetBlockedUsersDeps{Blocks: blocks, Users: testUsers})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("none = %#v, %v; want empty slice", none, err)
	}
}
