package projections

import (
	"context"

	"bookswap/internal/domain/block"
	"bookswap/internal/domain/failure"
)

// GetBlockStatusQuery carries input for the block status projection.
type GetBlockStatusQuery struct {
	ViewerID string
	TargetID string
}

// GetBlockStatusDeps holds dependencies for the block status projection.
type GetBlockStatusDeps struct {
	Blocks BlockStatusReader
}

// QueryGetBlockStatus reports both block directions with the viewer as A.
func QueryGetBlockStatus(ctx context.Context, query GetBlockStatusQuery, deps GetBlockStatusDeps) (block.Status, error) {
	if query.ViewerID == "" || query.TargetID == "" {
		return block.Status{}, failure.Validation("viewer and target IDs are required")
	}
	if query.ViewerID == query.TargetID {
		return block.Status{}, block.ErrSelfBlock
	}
	return deps.Blocks.Status(ctx, query.ViewerID, query.TargetID)
}

// GetBlockedUsersQuery carries input for the blocked users projection.
type GetBlockedUsersQuery struct {
	ViewerID string
}

// GetBlockedUsersDeps holds dependencies for the blocked users projection.
type GetBlockedUsersDeps struct {
	Blocks BlockLister
	Users  UserNames
}

// BlockedUser is a relationship the viewer created, with the blocked user's name.
type BlockedUser struct {
	block.Relationship
	DisplayName string
}

// QueryGetBlockedUsers lists who the viewer blocks, newest first.
func QueryGetBlockedUsers(ctx context.Context, query GetBlockedUsersQuery, deps GetBlockedUsersDeps) ([]BlockedUser, error) {
	if query.ViewerID == "" {
		return nil, failure.Validation("viewer ID is required")
	}
	rels, err := deps.Blocks.ListBlockedBy(ctx, query.ViewerID)
	if err != nil {
		return nil, err
	}
	result := make([]BlockedUser, 0, len(rels))
	if len(rels) == 0 {
		return result, nil
	}

	ids := make([]string, len(rels))
	for i, rel := range rels {
		ids[i] = rel.BlockedID
	}
	users, err := deps.Users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, rel := range rels {
		result = append(result, BlockedUser{Relationship: rel, DisplayName: users[rel.BlockedID].DisplayName})
	}
	return result, nil
}
