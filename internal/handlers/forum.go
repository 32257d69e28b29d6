package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ferretcontrol/internal/database"
	"ferretcontrol/internal/models"
	"ferretcontrol/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ForumHandler struct {
	db *gorm.DB
}

func NewForumHandler(db *gorm.DB) *ForumHandler {
	return &ForumHandler{db: db}
}

type forumPostResponse struct {
	ID             uint                `json:"id"`
	Author         uint                `json:"author"`
	AuthorUsername string              `json:"author_username"`
	AuthorAvatar   *string             `json:"author_avatar"`
	Content        string              `json:"content"`
	CreatedAt      time.Time           `json:"created_at"`
	Parent         *uint               `json:"parent"`
	Replies        []forumPostResponse `json:"replies"`
}

func toForumPostResponse(p *models.ForumPost) forumPostResponse {
	out := forumPostResponse{
		ID:        p.ID,
		Author:    p.AuthorID,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
		Parent:    p.ParentID,
		Replies:   make([]forumPostResponse, 0, len(p.Replies)),
	}
	if a := p.Author; a != nil {
		out.AuthorUsername = a.Username
		if a.Profile != nil && a.Profile.Avatar != "" {
			avatar := a.Profile.Avatar
			out.AuthorAvatar = &avatar
		}
	}
	for i := range p.Replies {
		out.Replies = append(out.Replies, toForumPostResponse(&p.Replies[i]))
	}
	return out
}

// nest attaches replies below each of tops, depth first. posts holds the
// candidate replies in display order; posts whose parent is not reachable
// from tops are ignored.
func nest(posts []models.ForumPost, tops []*models.ForumPost) {
	children := make(map[uint][]*models.ForumPost)
	for i := range posts {
		p := &posts[i]
		p.Replies = nil
		if p.ParentID != nil {
			children[*p.ParentID] = append(children[*p.ParentID], p)
		}
	}

	var attach func(p *models.ForumPost)
	attach = func(p *models.ForumPost) {
		p.Replies = nil
		for _, child := range children[p.ID] {
			attach(child)
			p.Replies = append(p.Replies, *child)
		}
	}
	for _, t := range tops {
		attach(t)
	}
}

// buildThreads nests posts under their parents. posts must be sorted the way
// replies should be shown (oldest first); roots come back newest first.
func buildThreads(posts []models.ForumPost) []*models.ForumPost {
	var roots []*models.ForumPost
	for i := range posts {
		if posts[i].ParentID == nil {
			roots = append(roots, &posts[i])
		}
	}
	nest(posts, roots)

	// newest thread first
	for i, j := 0, len(roots)-1; i < j; i, j = i+1, j-1 {
		roots[i], roots[j] = roots[j], roots[i]
	}
	return roots
}

func (h *ForumHandler) loadAll(c *gin.Context) ([]models.ForumPost, bool) {
	var posts []models.ForumPost
	err := h.db.WithContext(c.Request.Context()).
		Preload("Author.Profile").
		Order("created_at asc, id asc").
		Find(&posts).Error
	if err != nil {
		respondDBError(c, err)
		return nil, false
	}
	return posts, true
}

// List returns top-level posts, newest first, with nested replies.
func (h *ForumHandler) List(c *gin.Context) {
	posts, ok := h.loadAll(c)
	if !ok {
		return
	}
	roots := buildThreads(posts)
	out := make([]forumPostResponse, len(roots))
	for i, r := range roots {
		out[i] = toForumPostResponse(r)
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one post with its whole reply subtree.
func (h *ForumHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var root models.ForumPost
	if err := db.Preload("Author.Profile").First(&root, id).Error; err != nil {
		respondDBError(c, err)
		return
	}

	// walk down one generation per query
	var replies []models.ForumPost
	frontier := []uint{root.ID}
	for len(frontier) > 0 {
		var level []models.ForumPost
		err := db.Preload("Author.Profile").
			Where("parent_id IN ?", frontier).
			Order("created_at asc, id asc").
			Find(&level).Error
		if err != nil {
			respondDBError(c, err)
			return
		}
		frontier = make([]uint, 0, len(level))
		for _, p := range level {
			frontier = append(frontier, p.ID)
		}
		replies = append(replies, level...)
	}

	nest(replies, []*models.ForumPost{&root})
	c.JSON(http.StatusOK, toForumPostResponse(&root))
}

type forumPostInput struct {
	Content string `json:"content"`
	Parent  *uint  `json:"parent"`
}

// Create stores the post and notifies every other account in one transaction.
func (h *ForumHandler) Create(c *gin.Context) {
	var in forumPostInput
	if !bindJSON(c, &in) {
		return
	}
	if strings.TrimSpace(in.Content) == "" {
		respondError(c, http.StatusBadRequest, "content is required")
		return
	}

	author := currentUser(c)
	post := models.ForumPost{AuthorID: author.ID, Content: in.Content, ParentID: in.Parent}

	var notified int
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Replies").Create(&post).Error; err != nil {
			return err
		}
		var err error
		notified, err = notify.ForumPost(c.Request.Context(), database.NewNotificationRepository(tx), author, &post)
		return err
	})
	if err != nil {
		respondDBError(c, err)
		return
	}
	slog.Debug("forum post created", "post_id", post.ID, "notified", notified)

	post.Author = author
	c.JSON(http.StatusCreated, toForumPostResponse(&post))
}

// Delete is allowed for the author and for staff. Replies go with the post.
func (h *ForumHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var post models.ForumPost
	if err := db.First(&post, id).Error; err != nil {
		respondDBError(c, err)
		return
	}
	user := currentUser(c)
	if post.AuthorID != user.ID && !user.IsStaff {
		respondError(c, http.StatusForbidden, "only the author or staff may delete this post")
		return
	}
	if err := db.Delete(&post).Error; err != nil {
		respondDBError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
