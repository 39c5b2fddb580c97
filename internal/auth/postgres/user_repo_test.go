// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/auth"
)

var userCols = []string{"id", "email", "password_hash", "session_id", "reset_token", "created_at", "updated_at"}

func userRow(user *auth.User) *pgxmock.Rows {
	return pgxmock.NewRows(userCols).AddRow(
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.SessionID,
		user.ResetToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
}

func sampleUser(t *testing.T) *auth.User {
	t.Helper()
	user, err := auth.NewUser("bob@example.com", "$argon2id$fake")
	require.NoError(t, err)
	return user
}

func TestUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface, user *auth.User)
		wantErr   error
		errMsg    string
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), user.Email, user.PasswordHash,
						user.SessionID, user.ResetToken, user.CreatedAt, user.UpdatedAt).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "duplicate email surfaces as already exists",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), user.Email, user.PasswordHash,
						user.SessionID, user.ResetToken, user.CreatedAt, user.UpdatedAt).
					WillReturnError(&pgconn.PgError{
						Code:           "23505",
						ConstraintName: "users_email_key",
					})
			},
			wantErr: auth.ErrAlreadyExists,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(user.ID.String(), user.Email, user.PasswordHash,
						user.SessionID, user.ResetToken, user.CreatedAt, user.UpdatedAt).
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			user := sampleUser(t)
			tt.setupMock(mock, user)

			repo := NewUserRepository(mock)
			err = repo.Create(context.Background(), user)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	user := sampleUser(t)
	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs(user.ID.String()).
		WillReturnRows(userRow(user))

	repo := NewUserRepository(mock)
	got, err := repo.GetByID(context.Background(), user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := ulid.Make()
	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs(id.String()).
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)
	_, err = repo.GetByID(context.Background(), id)

	assert.ErrorIs(t, err, auth.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmail(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		setupMock func(mock pgxmock.PgxPoolIface, user *auth.User)
		wantErr   error
	}{
		{
			name:  "found",
			email: "bob@example.com",
			setupMock: func(mock pgxmock.PgxPoolIface, user *auth.User) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
					WithArgs("bob@example.com").
					WillReturnRows(userRow(user))
			},
		},
		{
			name:  "not found",
			email: "nobody@example.com",
			setupMock: func(mock pgxmock.PgxPoolIface, _ *auth.User) {
				mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).
					WithArgs("nobody@example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: auth.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			user := sampleUser(t)
			tt.setupMock(mock, user)

			repo := NewUserRepository(mock)
			got, err := repo.GetByEmail(context.Background(), tt.email)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user.Email, got.Email)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetBySessionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	user := sampleUser(t)
	session := "session-token"
	user.SessionID = &session

	mock.ExpectQuery(`SELECT .+ FROM users WHERE session_id = \$1`).
		WithArgs(session).
		WillReturnRows(userRow(user))

	repo := NewUserRepository(mock)
	got, err := repo.GetBySessionID(context.Background(), session)

	require.NoError(t, err)
	require.NotNil(t, got.SessionID)
	assert.Equal(t, session, *got.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByResetToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE reset_token = \$1`).
		WithArgs("missing-token").
		WillReturnError(pgx.ErrNoRows)

	repo := NewUserRepository(mock)
	_, err = repo.GetByResetToken(context.Background(), "missing-token")

	assert.ErrorIs(t, err, auth.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetSessionID(t *testing.T) {
	session := "new-session"

	tests := []struct {
		name      string
		sessionID *string
		rows      int64
		wantErr   error
	}{
		{name: "set session", sessionID: &session, rows: 1},
		{name: "clear session", sessionID: nil, rows: 1},
		{name: "unknown user", sessionID: &session, rows: 0, wantErr: auth.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			id := ulid.Make()
			mock.ExpectExec(`UPDATE users SET session_id = \$2, updated_at = \$3`).
				WithArgs(id.String(), tt.sessionID, pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			repo := NewUserRepository(mock)
			err = repo.SetSessionID(context.Background(), id, tt.sessionID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_SetResetToken(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := ulid.Make()
	mock.ExpectExec(`UPDATE users SET reset_token = \$2, updated_at = \$3`).
		WithArgs(id.String(), "reset-token", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	repo := NewUserRepository(mock)
	require.NoError(t, repo.SetResetToken(context.Background(), id, "reset-token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ResetPassword(t *testing.T) {
	tests := []struct {
		name    string
		rows    int64
		wantErr error
	}{
		{name: "successful update", rows: 1},
		{name: "unknown user", rows: 0, wantErr: auth.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			id := ulid.Make()
			mock.ExpectExec(`UPDATE users SET password_hash = \$2, reset_token = NULL, updated_at = \$3`).
				WithArgs(id.String(), "$argon2id$newhash", pgxmock.AnyArg()).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.rows))

			repo := NewUserRepository(mock)
			err = repo.ResetPassword(context.Background(), id, "$argon2id$newhash")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ScanRejectsMalformedID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	rows := pgxmock.NewRows(userCols).AddRow(
		"not-a-ulid", "bob@example.com", "hash", nil, nil, now, now,
	)
	mock.ExpectQuery(`SELECT .+ FROM users WHERE session_id = \$1`).
		WithArgs("tok").
		WillReturnRows(rows)

	repo := NewUserRepository(mock)
	_, err = repo.GetBySessionID(context.Background(), "tok")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ulid")
	assert.NoError(t, mock.ExpectationsWereMet())
}
