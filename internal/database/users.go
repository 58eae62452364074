package database

import (
	"context"

	"github.com/google/uuid"
)

const createUser = `
INSERT INTO users (full_name, email, hashed_password)
VALUES ($1, $2, $3)
RETURNING id, full_name, email, hashed_password, created_at, updated_at
`

type CreateUserParams struct {
	FullName       string
	Email          string
	HashedPassword string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.FullName, arg.Email, arg.HashedPassword)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, full_name, email, hashed_password, created_at, updated_at
FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, full_name, email, hashed_password, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
