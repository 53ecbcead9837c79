package services

import (
	"context"
	"time"

	"psylink/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// linkCost is the quota spent per generated test link.
const linkCost = 1

type LinkService struct {
	Links  LinkStore
	Users  QuotaStore
	Logger *zap.Logger
}

// CreateLink debits one quota unit and issues a one-time test link.
// The guarded debit fails before any link is written, so a user can
// never go below zero by racing link creation.
func (s *LinkService) CreateLink(ctx context.Context, userID, questionnaireID string) (*models.Link, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	balance, err := s.Users.DebitQuota(ctx, userID, linkCost)
	if err != nil {
		return nil, err
	}

	link := &models.Link{
		ID:              uuid.NewString(),
		Token:           uuid.NewString(),
		UserID:          userID,
		QuestionnaireID: questionnaireID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.Links.CreateLink(ctx, link); err != nil {
		// The debit already landed; give the unit back rather than
		// leaving the user charged for a link that does not exist.
		if _, cerr := s.Users.CreditQuota(ctx, userID, linkCost); cerr != nil {
			s.Logger.Error("refund after failed link create failed",
				zap.String("user_id", userID), zap.Error(cerr))
		}
		return nil, err
	}

	s.Logger.Info("link issued",
		zap.String("user_id", userID),
		zap.String("link_id", link.ID),
		zap.Int64("balance", balance),
	)
	return link, nil
}

func (s *LinkService) ListLinks(ctx context.Context, userID string) ([]*models.Link, error) {
	return s.Links.ListLinksByUser(ctx, userID)
}
