package domain

import "time"

// MaxExcerptLength is the longest excerpt accepted for a blog post.
const MaxExcerptLength = 200

// BlogFields are the writable columns of a blog post.
type BlogFields struct {
	Title     string   `json:"title"`
	Excerpt   Text     `json:"excerpt"`
	Info      []string `json:"info"`
	Date      Date     `json:"date"`
	Category  string   `json:"category"`
	ImageURLs []string `json:"image_urls"`
}

// BlogPost is an article shown on the public blog.
type BlogPost struct {
	ID int64 `json:"id"`
	BlogFields
}

func (b BlogPost) Key() int64 { return b.ID }

func (b BlogPost) Images() []string { return b.ImageURLs }

// BlogSummary is the card projection used by the blog list.
type BlogSummary struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Excerpt   Text     `json:"excerpt"`
	Date      Date     `json:"date"`
	ImageURLs []string `json:"image_urls"`
	Category  string   `json:"category"`
}

// RecentPost is the sidebar projection.
type RecentPost struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// NewComment is a visitor comment before it is stored.
type NewComment struct {
	BlogID  int64  `json:"blog_id"`
	Name    string `json:"name"`
	Comment string `json:"comment"`
}

// BlogComment is a stored visitor comment.
type BlogComment struct {
	ID        int64     `json:"id"`
	BlogID    int64     `json:"blog_id,omitempty"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}
