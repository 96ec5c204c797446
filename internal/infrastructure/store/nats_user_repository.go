// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// NatsUserRepository is the NATS KV store repository for platform users.
type NatsUserRepository struct {
	*NatsBaseRepository[models.User]
}

// NewNatsUserRepository creates a new NATS KV store repository for users.
func NewNatsUserRepository(users INatsKeyValue) *NatsUserRepository {
	return &NatsUserRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.User](users, "user"),
	}
}

func (r *NatsUserRepository) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	return r.Get(ctx, userUID)
}

func (r *NatsUserRepository) ListAllUsers(ctx context.Context) ([]*models.User, error) {
	return r.ListEntities(ctx)
}
