package owners

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
	"github.com/chirpy-dev/chirpy-backend/internal/repo"
)

// Repository resolves comment ownership straight from Postgres.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

type ownerRow struct {
	CommentID      uuid.UUID
	AuthorID       uuid.UUID
	AuthorName     *string
	AuthorUsername *string
	AuthorAvatar   *string
	PageURL        string
	OwnerID        *uuid.UUID
}

// SiteOwnerByCommentID walks Comment → Page → Project and picks up the comment
// author on the way. A missing comment yields (nil, nil).
func (r *Repository) SiteOwnerByCommentID(ctx context.Context, commentID uuid.UUID) (*mutationevent.Owner, error) {
	var row ownerRow
	err := r.DB(ctx).
		Table(`"Comment" AS c`).
		Select(`c."id" AS comment_id,
			c."userId" AS author_id,
			u."name" AS author_name,
			u."username" AS author_username,
			u."avatar" AS author_avatar,
			p."url" AS page_url,
			pr."userId" AS owner_id`).
		Joins(`JOIN "Page" AS p ON p."id" = c."pageId"`).
		Joins(`JOIN "Project" AS pr ON pr."id" = p."projectId"`).
		Joins(`LEFT JOIN "User" AS u ON u."id" = c."userId"`).
		Where(`c."id" = ?`, commentID).
		Take(&row).Error
	if err != nil {
		if repo.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return row.toOwner(), nil
}

func (row ownerRow) toOwner() *mutationevent.Owner {
	return &mutationevent.Owner{
		OwnerID: row.OwnerID,
		PageURL: row.PageURL,
		Author: mutationevent.Actor{
			ID:     row.AuthorID,
			Name:   displayName(row.AuthorName, row.AuthorUsername),
			Avatar: row.AuthorAvatar,
		},
	}
}

func displayName(name, username *string) string {
	if name != nil && *name != "" {
		return *name
	}
	if username != nil {
		return *username
	}
	return ""
}
