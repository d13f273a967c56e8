// internal/database/memory.go
package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"feedstream/internal/models"
	"feedstream/internal/utils"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and offline runs. It keeps
// the same ordering and not-found semantics as the Mongo adapter and counts
// every operation so tests can assert how often the store was touched.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]*models.User
	posts   map[uuid.UUID]*models.Post
	follows []*models.FollowEdge
	calls   map[string]int

	// FailNext, when set, makes the next operation return a STORE_ERROR.
	FailNext error
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]*models.User),
		posts: make(map[uuid.UUID]*models.Post),
		calls: make(map[string]int),
	}
}

// Calls returns how many times the named operation has run.
func (s *MemoryStore) Calls(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[op]
}

// TotalCalls returns the number of store operations across all names.
func (s *MemoryStore) TotalCalls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *MemoryStore) record(op string) error {
	s.calls[op]++
	if s.FailNext != nil {
		err := s.FailNext
		s.FailNext = nil
		return utils.NewStoreError(op, err)
	}
	return nil
}

func (s *MemoryStore) InsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("InsertUser"); err != nil {
		return err
	}
	u := *user
	s.users[u.ID] = &u
	return nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetUserByID"); err != nil {
		return nil, err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	u := *user
	return &u, nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetUserByUsername"); err != nil {
		return nil, err
	}
	for _, user := range s.users {
		if user.Username == username {
			u := *user
			return &u, nil
		}
	}
	return nil, utils.NewNotFoundError("user")
}

func (s *MemoryStore) FindUserByUsernameOrEmail(_ context.Context, username, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("FindUserByUsernameOrEmail"); err != nil {
		return nil, err
	}
	for _, user := range s.users {
		if user.Username == username || user.Email == email {
			u := *user
			return &u, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) GetUsers(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetUsers"); err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(s.users))
	for _, user := range s.users {
		u := *user
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *MemoryStore) GetUsersByIDs(_ context.Context, ids []uuid.UUID) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetUsersByIDs"); err != nil {
		return nil, err
	}
	var users []*models.User
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			u := *user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (s *MemoryStore) GetUsersByUsernames(_ context.Context, usernames []string) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetUsersByUsernames"); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(usernames))
	for _, name := range usernames {
		wanted[name] = true
	}
	var users []*models.User
	for _, user := range s.users {
		if wanted[user.Username] {
			u := *user
			users = append(users, &u)
		}
	}
	return users, nil
}

func (s *MemoryStore) SearchUsers(_ context.Context, keyword string) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("SearchUsers"); err != nil {
		return nil, err
	}
	kw := strings.ToLower(keyword)
	var users []*models.User
	for _, user := range s.users {
		if strings.Contains(strings.ToLower(user.Username), kw) ||
			strings.Contains(strings.ToLower(user.Name), kw) {
			u := *user
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *MemoryStore) UpdateUserProfile(_ context.Context, id uuid.UUID, name, profilePicture string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("UpdateUserProfile"); err != nil {
		return nil, err
	}
	user, ok := s.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("user")
	}
	if name != "" {
		user.Name = name
	}
	if profilePicture != "" {
		user.ProfilePicture = profilePicture
	}
	user.UpdatedAt = time.Now()
	u := *user
	return &u, nil
}

func (s *MemoryStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("CountUsers"); err != nil {
		return 0, err
	}
	return int64(len(s.users)), nil
}

func (s *MemoryStore) InsertPost(_ context.Context, post *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("InsertPost"); err != nil {
		return err
	}
	p := clonePost(post)
	s.posts[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPost(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetPost"); err != nil {
		return nil, err
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, utils.NewNotFoundError("post")
	}
	return clonePost(post), nil
}

func (s *MemoryStore) GetPosts(_ context.Context) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetPosts"); err != nil {
		return nil, err
	}
	posts := make([]*models.Post, 0, len(s.posts))
	for _, post := range s.posts {
		posts = append(posts, clonePost(post))
	}
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID.String() < posts[j].ID.String()
	})
	return posts, nil
}

func (s *MemoryStore) PushComment(_ context.Context, postID uuid.UUID, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("PushComment"); err != nil {
		return err
	}
	post, ok := s.posts[postID]
	if !ok {
		return utils.NewNotFoundError("post")
	}
	post.Comments = append(post.Comments, comment)
	post.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) ToggleLike(_ context.Context, postID uuid.UUID, like models.Like) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("ToggleLike"); err != nil {
		return false, err
	}
	post, ok := s.posts[postID]
	if !ok {
		return false, utils.NewNotFoundError("post")
	}
	for i, l := range post.Likes {
		if l.Username == like.Username {
			post.Likes = append(post.Likes[:i], post.Likes[i+1:]...)
			post.UpdatedAt = time.Now()
			return false, nil
		}
	}
	post.Likes = append(post.Likes, like)
	post.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) InsertFollow(_ context.Context, edge *models.FollowEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("InsertFollow"); err != nil {
		return err
	}
	e := *edge
	s.follows = append(s.follows, &e)
	return nil
}

func (s *MemoryStore) GetFollowers(_ context.Context, userID uuid.UUID) ([]*models.FollowEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetFollowers"); err != nil {
		return nil, err
	}
	return s.filterFollows(func(e *models.FollowEdge) bool { return e.FollowingID == userID }), nil
}

func (s *MemoryStore) GetFollowing(_ context.Context, userID uuid.UUID) ([]*models.FollowEdge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("GetFollowing"); err != nil {
		return nil, err
	}
	return s.filterFollows(func(e *models.FollowEdge) bool { return e.FollowerID == userID }), nil
}

func (s *MemoryStore) HasFollowEdge(_ context.Context, followerID, followingID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.record("HasFollowEdge"); err != nil {
		return false, err
	}
	for _, e := range s.follows {
		if e.FollowerID == followerID && e.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) filterFollows(keep func(*models.FollowEdge) bool) []*models.FollowEdge {
	var edges []*models.FollowEdge
	for _, e := range s.follows {
		if keep(e) {
			edge := *e
			edges = append(edges, &edge)
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].CreatedAt.Before(edges[j].CreatedAt) })
	return edges
}

func clonePost(post *models.Post) *models.Post {
	p := *post
	p.Tags = append([]string(nil), post.Tags...)
	p.Comments = append([]models.Comment(nil), post.Comments...)
	p.Likes = append([]models.Like(nil), post.Likes...)
	return &p
}
