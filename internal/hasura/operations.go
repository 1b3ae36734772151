package hasura

import (
	"context"

	"github.com/google/uuid"

	"github.com/chirpy-dev/chirpy-backend/internal/mutationevent"
)

const siteOwnerByCommentIDQuery = `query siteOwnerByCommentId($commentId: uuid!) {
  commentByPk(id: $commentId) {
    id
    user {
      id
      name
      username
      avatar
    }
    page {
      id
      url
      project {
        id
        userId
      }
    }
  }
}`

const insertOneNotificationMessageMutation = `mutation insertOneNotificationMessage(
  $recipientId: uuid!
  $type: NotificationType_enum!
  $triggeredById: uuid!
  $url: String!
  $content: String
) {
  insertOneNotificationMessage(
    object: {
      recipientId: $recipientId
      type: $type
      triggeredById: $triggeredById
      url: $url
      content: $content
    }
  ) {
    id
  }
}`

type siteOwnerResult struct {
	CommentByPk *struct {
		ID   uuid.UUID `json:"id"`
		User struct {
			ID       uuid.UUID `json:"id"`
			Name     *string   `json:"name"`
			Username *string   `json:"username"`
			Avatar   *string   `json:"avatar"`
		} `json:"user"`
		Page struct {
			ID      uuid.UUID `json:"id"`
			URL     string    `json:"url"`
			Project struct {
				ID     uuid.UUID  `json:"id"`
				UserID *uuid.UUID `json:"userId"`
			} `json:"project"`
		} `json:"page"`
	} `json:"commentByPk"`
}

// SiteOwnerByCommentID resolves the comment's owner chain; a null commentByPk yields (nil, nil).
func (c *Client) SiteOwnerByCommentID(ctx context.Context, commentID uuid.UUID) (*mutationevent.Owner, error) {
	var result siteOwnerResult
	err := c.Do(ctx, "siteOwnerByCommentId", siteOwnerByCommentIDQuery, map[string]any{
		"commentId": commentID,
	}, &result)
	if err != nil {
		return nil, err
	}
	comment := result.CommentByPk
	if comment == nil {
		return nil, nil
	}
	name := ""
	switch {
	case comment.User.Name != nil && *comment.User.Name != "":
		name = *comment.User.Name
	case comment.User.Username != nil:
		name = *comment.User.Username
	}
	return &mutationevent.Owner{
		OwnerID: comment.Page.Project.UserID,
		PageURL: comment.Page.URL,
		Author: mutationevent.Actor{
			ID:     comment.User.ID,
			Name:   name,
			Avatar: comment.User.Avatar,
		},
	}, nil
}

// InsertNotificationMessage stores the inbox record through Hasura.
func (c *Client) InsertNotificationMessage(ctx context.Context, payload mutationevent.NotificationPayload) error {
	return c.Do(ctx, "insertOneNotificationMessage", insertOneNotificationMessageMutation, map[string]any{
		"recipientId":   payload.RecipientID,
		"type":          payload.Type,
		"triggeredById": payload.TriggeredByID,
		"url":           payload.URL,
		"content":       payload.Body,
	}, nil)
}
