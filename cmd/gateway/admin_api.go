package main

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wealthpath/edu-gateway/internal/rbac"
)

// mountAdminRoutes wires the operator surface under /admin: local account
// management and per-learner attempt oversight. Callers must already carry
// identity middleware.
func mountAdminRoutes(api chi.Router, dbh *sql.DB) {
	api.Route("/admin", func(r chi.Router) {
		r.With(rbac.Require("users:list")).Get("/users", handleAdminListUsers(dbh))
		r.With(rbac.Require("users:manage")).Post("/users", handleAdminCreateUser(dbh))
		r.With(rbac.Require("users:manage")).Patch("/users/{userID}", handleAdminUpdateUserRole(dbh))
		r.With(rbac.Require("users:list")).Get("/users/{userID}/attempts", handleAdminListAttempts(dbh))
	})
}

type adminUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func handleAdminListUsers(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbh.QueryContext(r.Context(),
			`SELECT id, username, role FROM users ORDER BY username`)
		if err != nil {
			http.Error(w, "query users", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []adminUser{}
		for rows.Next() {
			var u adminUser
			if err := rows.Scan(&u.ID, &u.Username, &u.Role); err != nil {
				http.Error(w, "scan users", http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "query users", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func handleAdminCreateUser(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			http.Error(w, "username and password required", http.StatusBadRequest)
			return
		}
		if !validRole(req.Role) {
			http.Error(w, "unknown role", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "hash password", http.StatusInternalServerError)
			return
		}
		id := uuid.NewString()
		_, err = dbh.ExecContext(r.Context(),
			`INSERT INTO users (id, username, pass_hash, role) VALUES ($1,$2,$3,$4)`,
			id, req.Username, string(hash), req.Role)
		if err != nil {
			// UNIQUE(username) violation is the only expected failure here.
			http.Error(w, "username taken", http.StatusConflict)
			return
		}
		respondJSON(w, http.StatusCreated, adminUser{ID: id, Username: req.Username, Role: req.Role})
	}
}

func handleAdminUpdateUserRole(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !validRole(req.Role) {
			http.Error(w, "valid role required", http.StatusBadRequest)
			return
		}
		userID := chi.URLParam(r, "userID")
		res, err := dbh.ExecContext(r.Context(),
			`UPDATE users SET role=$1 WHERE id=$2`, req.Role, userID)
		if err != nil {
			http.Error(w, "update user", http.StatusInternalServerError)
			return
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"user_id": userID, "role": req.Role})
	}
}

type adminAttempt struct {
	ID         string  `json:"id"`
	Tutorial   string  `json:"tutorial"`
	Unit       int     `json:"unit"`
	Task       int     `json:"task"`
	TaskType   string  `json:"task_type"`
	Score      float64 `json:"score"`
	ElapsedSec int64   `json:"elapsed_sec"`
	IsRetry    bool    `json:"is_retry"`
	CreatedAt  int64   `json:"created_at"`
}

// handleAdminListAttempts exposes the append-only attempt log for one
// learner, newest first. Covers both credited and rejected-duplicate
// submissions.
func handleAdminListAttempts(dbh *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		rows, err := dbh.QueryContext(r.Context(),
			`SELECT id, tutorial, unit_ordinal, task_ordinal, task_type, score, elapsed_sec, is_retry, created_at
			   FROM attempt_log WHERE user_id=$1
			  ORDER BY created_at DESC LIMIT 200`, userID)
		if err != nil {
			http.Error(w, "query attempts", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []adminAttempt{}
		for rows.Next() {
			var a adminAttempt
			if err := rows.Scan(&a.ID, &a.Tutorial, &a.Unit, &a.Task, &a.TaskType,
				&a.Score, &a.ElapsedSec, &a.IsRetry, &a.CreatedAt); err != nil {
				http.Error(w, "scan attempts", http.StatusInternalServerError)
				return
			}
			out = append(out, a)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "query attempts", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, out)
	}
}

func validRole(role string) bool {
	switch role {
	case "learner", "support", "admin":
		return true
	}
	return false
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
