package services

import (
	"context"

	"mingle/internal/apperrors"
	"mingle/internal/models"
	"mingle/internal/repositories"
)

// FollowNotifier receives follow-lifecycle events for realtime delivery.
// Implemented by the realtime notifier; tests plug in fakes.
type FollowNotifier interface {
	FollowRequest(followerID, followingID string)
	FollowAccepted(followerID, followingID string)
}

// FollowService answers the mutual-follow question that gates all chat
// operations, and runs the follow request/accept transitions.
type FollowService struct {
	repo     repositories.FollowRepository
	notifier FollowNotifier
}

func NewFollowService(repo repositories.FollowRepository, notifier FollowNotifier) *FollowService {
	return &FollowService{repo: repo, notifier: notifier}
}

// IsMutualAcceptedFollow is true iff accepted edges exist in both directions.
// It reads the store on every call; a later unfollow is visible immediately.
func (s *FollowService) IsMutualAcceptedFollow(ctx context.Context, userA, userB string) (bool, error) {
	aToB, err := s.repo.HasAccepted(ctx, userA, userB)
	if err != nil {
		return false, apperrors.Store("follow lookup", err)
	}
	if !aToB {
		return false, nil
	}
	bToA, err := s.repo.HasAccepted(ctx, userB, userA)
	if err != nil {
		return false, apperrors.Store("follow lookup", err)
	}
	return bToA, nil
}

// MutualFollowerIDs lists users who have an accepted edge with userID in both
// directions. Used to scope presence-offline fanout.
func (s *FollowService) MutualFollowerIDs(ctx context.Context, userID string) ([]string, error) {
	followers, err := s.repo.AcceptedFollowerIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("list followers", err)
	}
	following, err := s.repo.AcceptedFollowingIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Store("list following", err)
	}

	followerSet := make(map[string]struct{}, len(followers))
	for _, id := range followers {
		followerSet[id] = struct{}{}
	}
	var mutual []string
	for _, id := range following {
		if _, ok := followerSet[id]; ok {
			mutual = append(mutual, id)
		}
	}
	return mutual, nil
}

// Request creates (or re-opens) a pending follow edge and notifies the target.
func (s *FollowService) Request(ctx context.Context, followerID, followingID string) error {
	if followerID == followingID {
		return apperrors.Validation("Cannot follow yourself")
	}
	if _, err := s.repo.Upsert(ctx, followerID, followingID, models.FollowPending); err != nil {
		return apperrors.Store("upsert follow", err)
	}
	s.notifier.FollowRequest(followerID, followingID)
	return nil
}

// Accept flips a pending edge to accepted and notifies the requester.
func (s *FollowService) Accept(ctx context.Context, followerID, followingID string) error {
	edge, err := s.repo.Find(ctx, followerID, followingID)
	if err != nil {
		return apperrors.Store("find follow", err)
	}
	if edge == nil {
		return apperrors.ErrNotFound
	}
	if _, err := s.repo.Upsert(ctx, followerID, followingID, models.FollowAccepted); err != nil {
		return apperrors.Store("upsert follow", err)
	}
	s.notifier.FollowAccepted(followerID, followingID)
	return nil
}

// Reject marks a pending edge rejected.
func (s *FollowService) Reject(ctx context.Context, followerID, followingID string) error {
	edge, err := s.repo.Find(ctx, followerID, followingID)
	if err != nil {
		return apperrors.Store("find follow", err)
	}
	if edge == nil {
		return apperrors.ErrNotFound
	}
	if _, err := s.repo.Upsert(ctx, followerID, followingID, models.FollowRejected); err != nil {
		return apperrors.Store("upsert follow", err)
	}
	return nil
}
