package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"feedstream/internal/gateway"

	"github.com/google/uuid"
)

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents a response to a login request
type LoginResponse struct {
	Token string `json:"token"`
}

// FollowRequest represents a request to follow another user
type FollowRequest struct {
	FollowingID string `json:"followingId"`
}

// HandleRegister handles requests to register a new user
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req gateway.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		start := time.Now()
		user, err := s.Gateway.Register(r.Context(), req)
		s.track("register", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, user)
	}
}

// HandleLogin handles requests to log in a user
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		start := time.Now()
		token, err := s.Gateway.Login(r.Context(), req.Username, req.Password)
		s.track("login", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, LoginResponse{Token: token})
	}
}

// HandleProfile serves the caller's profile on GET and updates it on POST.
func (s *Server) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			start := time.Now()
			profile, err := s.Gateway.GetProfile(r.Context())
			s.track("getProfile", start, err)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, profile)

		case http.MethodPost:
			var req gateway.UpdateProfileInput
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request", http.StatusBadRequest)
				return
			}

			start := time.Now()
			user, err := s.Gateway.UpdateProfile(r.Context(), req)
			s.track("updateProfile", start, err)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, user)

		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleUsers lists, fetches, or searches users depending on query params.
func (s *Server) HandleUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if idStr := r.URL.Query().Get("id"); idStr != "" {
			id, err := uuid.Parse(idStr)
			if err != nil {
				http.Error(w, "Invalid user ID format", http.StatusBadRequest)
				return
			}

			start := time.Now()
			user, err := s.Gateway.GetUserByID(r.Context(), id)
			s.track("getUserById", start, err)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, user)
			return
		}

		if keyword := r.URL.Query().Get("search"); keyword != "" {
			start := time.Now()
			users, err := s.Gateway.SearchUsers(r.Context(), keyword)
			s.track("searchUsers", start, err)
			if err != nil {
				s.writeError(w, err)
				return
			}
			s.writeJSON(w, users)
			return
		}

		start := time.Now()
		users, err := s.Gateway.GetUsers(r.Context())
		s.track("getUsers", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, users)
	}
}

// HandleFollow creates a follow edge from the caller to the requested user.
func (s *Server) HandleFollow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req FollowRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}

		followingID, err := uuid.Parse(req.FollowingID)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		start := time.Now()
		edge, err := s.Gateway.FollowUser(r.Context(), followingID)
		s.track("followUser", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, edge)
	}
}

// HandleGraph resolves followers/following for the requested user.
func (s *Server) HandleGraph() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		idStr := r.URL.Query().Get("userId")
		if idStr == "" {
			http.Error(w, "userId is required", http.StatusBadRequest)
			return
		}
		userID, err := uuid.Parse(idStr)
		if err != nil {
			http.Error(w, "Invalid user ID format", http.StatusBadRequest)
			return
		}

		start := time.Now()
		graph, err := s.Gateway.ResolveGraph(r.Context(), userID)
		s.track("resolveGraph", start, err)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, graph)
	}
}
