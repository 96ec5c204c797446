// Copyright Converge AI and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/converge-ai/converge-meeting-service/internal/domain/models"
)

// NatsAgentRepository is the NATS KV store repository for agents. The CRUD
// service owns writes; this service only reads.
type NatsAgentRepository struct {
	*NatsBaseRepository[models.Agent]
}

// NewNatsAgentRepository creates a new NATS KV store repository for agents.
func NewNatsAgentRepository(agents INatsKeyValue) *NatsAgentRepository {
	return &NatsAgentRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.Agent](agents, "agent"),
	}
}

func (r *NatsAgentRepository) GetAgent(ctx context.Context, agentUID string) (*models.Agent, error) {
	return r.Get(ctx, agentUID)
}

func (r *NatsAgentRepository) ListAllAgents(ctx context.Context) ([]*models.Agent, error) {
	return r.ListEntities(ctx)
}
