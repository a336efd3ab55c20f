package article

import (
	"time"

	"github.com/frahmantamala/school-platform/internal/comment"
	articleDatamodel "github.com/frahmantamala/school-platform/internal/core/datamodel/article"
)

type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Article struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     *string   `json:"image,omitempty"`
	StudentID int64     `json:"student_id"`
	Author    *Author   `json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Article) IsOwnedBy(userID int64) bool {
	return a.StudentID == userID
}

// Detail is an article with its comment thread.
type Detail struct {
	*Article
	Comments []*comment.Comment `json:"comments"`
}

func ToDataModel(a *Article) *articleDatamodel.Article {
	return &articleDatamodel.Article{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Image:     a.Image,
		StudentID: a.StudentID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func FromDataModel(a *articleDatamodel.Article) *Article {
	out := &Article{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		Image:     a.Image,
		StudentID: a.StudentID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	if a.Student != nil {
		out.Author = &Author{ID: a.Student.ID, Name: a.Student.Name}
	}
	return out
}

func FromDataModelSlice(articles []*articleDatamodel.Article) []*Article {
	result := make([]*Article, len(articles))
	for i, a := range articles {
		result[i] = FromDataModel(a)
	}
	return result
}
