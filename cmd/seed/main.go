// cmd/seed drives a running server with demo traffic: a handful of users who
// follow each other, post, comment, and like, then a feed read to verify the
// aggregation end to end.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
)

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func (c *client) do(method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errBody map[string]string
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, errBody["error"])
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	flag.Parse()

	users := []map[string]string{
		{"name": "Alice Tan", "username": "alice", "email": "alice@example.com", "password": "secret123"},
		{"name": "Bob Hartono", "username": "bob", "email": "bob@example.com", "password": "secret123"},
		{"name": "Citra Dewi", "username": "citra", "email": "citra@example.com", "password": "secret123"},
	}

	clients := make(map[string]*client)
	ids := make(map[string]string)

	for _, u := range users {
		c := &client{baseURL: *baseURL, http: &http.Client{}}

		var created struct {
			ID string `json:"id"`
		}
		if err := c.do("POST", "/register", u, &created); err != nil {
			log.Printf("register %s: %v (may already exist)", u["username"], err)
		} else {
			ids[u["username"]] = created.ID
		}

		var login struct {
			Token string `json:"token"`
		}
		if err := c.do("POST", "/login", map[string]string{
			"username": u["username"],
			"password": u["password"],
		}, &login); err != nil {
			log.Fatalf("login %s: %v", u["username"], err)
		}
		c.token = login.Token
		clients[u["username"]] = c
		log.Printf("logged in as %s", u["username"])
	}

	// bob and citra follow alice
	if aliceID := ids["alice"]; aliceID != "" {
		for _, follower := range []string{"bob", "citra"} {
			if err := clients[follower].do("POST", "/follow", map[string]string{"followingId": aliceID}, nil); err != nil {
				log.Printf("follow: %v", err)
			}
		}
	}

	var post struct {
		ID string `json:"id"`
	}
	if err := clients["alice"].do("POST", "/posts", map[string]any{
		"content": "hello from the seed script",
		"tags":    []string{"intro", "demo"},
	}, &post); err != nil {
		log.Fatalf("addPost: %v", err)
	}
	log.Printf("alice posted %s", post.ID)

	if err := clients["bob"].do("POST", "/posts/comment", map[string]string{
		"postId":  post.ID,
		"content": "first!",
	}, nil); err != nil {
		log.Printf("comment: %v", err)
	}

	for _, liker := range []string{"bob", "citra"} {
		var liked struct {
			Liked bool `json:"liked"`
		}
		if err := clients[liker].do("POST", "/posts/like", map[string]string{"postId": post.ID}, &liked); err != nil {
			log.Printf("like: %v", err)
		} else {
			log.Printf("%s like toggled, now liked=%v", liker, liked.Liked)
		}
	}

	var feed []json.RawMessage
	if err := clients["alice"].do("GET", "/feed", nil, &feed); err != nil {
		log.Fatalf("getFeed: %v", err)
	}
	log.Printf("feed contains %d posts", len(feed))
}
