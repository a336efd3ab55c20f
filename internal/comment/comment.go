package comment

import (
	"time"

	commentDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/comment"
	userDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/user"
)

type ReceiverKind string

const (
	ReceiverArticle ReceiverKind = "article"
	ReceiverComment ReceiverKind = "comment"
)

// Receiver is what a comment is attached to: an article or another comment.
type Receiver struct {
	Kind ReceiverKind `json:"kind"`
	ID   int64        `json:"id"`
}

func ArticleReceiver(articleID int64) Receiver {
	return Receiver{Kind: ReceiverArticle, ID: articleID}
}

func CommentReceiver(commentID int64) Receiver {
	return Receiver{Kind: ReceiverComment, ID: commentID}
}

func (r Receiver) IsArticle(articleID int64) bool {
	return r.Kind == ReceiverArticle && r.ID == articleID
}

type Sender struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Comment struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	SenderID  int64      `json:"sender_id"`
	Sender    *Sender    `json:"sender,omitempty"`
	Receiver  Receiver   `json:"receiver"`
	CreatedAt time.Time  `json:"created_at"`
	Replies   []*Comment `json:"replies,omitempty"`
}

func NewComment(senderID int64, content string, receiver Receiver) *Comment {
	return &Comment{
		SenderID:  senderID,
		Content:   content,
		Receiver:  receiver,
		CreatedAt: time.Now(),
	}
}

func ToDataModel(c *Comment) *commentDatamodel.Comment {
	return &commentDatamodel.Comment{
		ID:           c.ID,
		Content:      c.Content,
		SenderID:     c.SenderID,
		ReceiverType: string(c.Receiver.Kind),
		ReceiverID:   c.Receiver.ID,
		CreatedAt:    c.CreatedAt,
	}
}

func FromDataModel(c *commentDatamodel.Comment) *Comment {
	return &Comment{
		ID:        c.ID,
		Content:   c.Content,
		SenderID:  c.SenderID,
		Sender:    senderFrom(c.Sender),
		Receiver:  Receiver{Kind: ReceiverKind(c.ReceiverType), ID: c.ReceiverID},
		CreatedAt: c.CreatedAt,
	}
}

func FromDataModelSlice(comments []*commentDatamodel.Comment) []*Comment {
	result := make([]*Comment, len(comments))
	for i, c := range comments {
		result[i] = FromDataModel(c)
	}
	return result
}

func senderFrom(u *userDatamodel.User) *Sender {
	if u == nil {
		return nil
	}
	return &Sender{ID: u.ID, Name: u.Name}
}
