package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"feedstream/internal/gateway"

	"github.com/google/uuid"
)

// CommentRequest represents a request to comment on a post
type CommentRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

// LikeRequest represents a request to toggle a like on a post
type LikeRequest struct {
	PostID string `json:"postId"`
}

// LikeResponse reports the resulting like state for the caller
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// HandleFeed serves the aggregated feed, newest first.
func (s *Server) HandleFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		views, err := s.Gateway.GetFeed(r.Context())
		s.track("getFeed", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, views)
	}
}

// HandlePosts serves a single post view on GET and creates a post on POST.
func (s *Server) HandlePosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			idStr := r.URL.Query().Get("id")
			if idStr == "" {
				http.Error(w, "Post ID is required", http.StatusBadRequest)
				return
			}
			id, err := uuid.Parse(idStr)
			if err != nil {
				http.Error(w, "Invalid post ID format", http.StatusBadRequest)
				return
			}

			start := time.Now()
			view, err := s.Gateway.GetPostByID(r.Context(), id)
			s.track("getPostById", start, err)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, view)

		case http.MethodPost:
			var req gateway.PostInput
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			start := time.Now()
			view, err := s.Gateway.AddPost(r.Context(), req)
			s.track("addPost", start, err)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, view)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleComment appends a comment by the caller to a post.
func (s *Server) HandleComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req CommentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		start := time.Now()
		err = s.Gateway.CommentPost(r.Context(), postID, req.Content)
		s.track("commentPost", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]string{"message": "Comment added successfully"})
	}
}

// HandleLike toggles the caller's like on a post.
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LikeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			http.Error(w, "Invalid post ID format", http.StatusBadRequest)
			return
		}

		start := time.Now()
		liked, err := s.Gateway.LikePost(r.Context(), postID)
		s.track("likePost", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, LikeResponse{Liked: liked})
	}
}
