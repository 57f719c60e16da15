package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/suportehub/helpdesk-service/internal/auth"
)

type seedGroup struct {
	key         string
	name        string
	color       string
	description string
}

var defaultGroups = []seedGroup{
	{key: "suporte-ti", name: "Suporte TI", color: "#3b82f6", description: "Equipe de suporte técnico"},
	{key: "infraestrutura", name: "Infraestrutura", color: "#0ea5e9", description: "Equipe de infraestrutura e redes"},
	{key: "rh", name: "RH", color: "#22c55e", description: ""},
	{key: "financeiro", name: "Financeiro", color: "#f59e0b", description: ""},
	{key: "geral", name: "Geral", color: "#64748b", description: "Atendimento geral"},
}

// SeedDemoData inserts the default assignment groups, a pair of demo
// accounts, sample tickets/tasks and an initial batch of agent codes.
// Everything is upserted so repeated startups are safe.
func SeedDemoData(ctx context.Context, pool *pgxpool.Pool, bcryptCost int, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping seed")
		return nil
	}

	for _, g := range defaultGroups {
		var description *string
		if g.description != "" {
			description = &g.description
		}
		if _, err := pool.Exec(ctx, `
            INSERT INTO assignment_groups (key, name, color, description)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (key) DO NOTHING`,
			g.key, g.name, g.color, description,
		); err != nil {
			return fmt.Errorf("seed group %s: %w", g.key, err)
		}
	}

	demoHash, err := auth.HashPassword("demo", bcryptCost)
	if err != nil {
		return fmt.Errorf("seed password hash: %w", err)
	}

	var agentID, requesterID string
	if err := pool.QueryRow(ctx, `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ('Suporte TI', 'suporte@agente.com', $1, 'AGENT')
        ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, demoHash,
	).Scan(&agentID); err != nil {
		return fmt.Errorf("seed agent user: %w", err)
	}
	if err := pool.QueryRow(ctx, `
        INSERT INTO users (name, email, password_hash, role)
        VALUES ('João Silva', 'joao@empresa.com', $1, 'REQUESTER')
        ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, demoHash,
	).Scan(&requesterID); err != nil {
		return fmt.Errorf("seed requester user: %w", err)
	}

	var tiGroupID string
	if err := pool.QueryRow(ctx,
		`SELECT id FROM assignment_groups WHERE key = 'suporte-ti'`,
	).Scan(&tiGroupID); err != nil {
		return fmt.Errorf("seed lookup group: %w", err)
	}

	if _, err := pool.Exec(ctx, `
        INSERT INTO tickets (id, title, description, status, author_id, assignment_group_id)
        VALUES ('TCK-001', 'Problema no acesso ao sistema', 'Não consigo fazer login com minhas credenciais.', 'OPEN', $1, $2)
        ON CONFLICT (id) DO NOTHING`,
		requesterID, tiGroupID,
	); err != nil {
		return fmt.Errorf("seed ticket TCK-001: %w", err)
	}
	if _, err := pool.Exec(ctx, `
        INSERT INTO tickets (id, title, description, status, author_id, assigned_to_id, assignment_group_id)
        VALUES ('TCK-002', 'Solicitação de novo equipamento', 'Preciso de um novo notebook.', 'IN_PROGRESS', $1, $2, $3)
        ON CONFLICT (id) DO NOTHING`,
		requesterID, agentID, tiGroupID,
	); err != nil {
		return fmt.Errorf("seed ticket TCK-002: %w", err)
	}

	for _, code := range []string{"AGENT-0001-DEMO01", "AGENT-0002-DEMO02"} {
		if _, err := pool.Exec(ctx, `
            INSERT INTO agent_codes (code)
            VALUES ($1)
            ON CONFLICT (code) DO NOTHING`, code,
		); err != nil {
			return fmt.Errorf("seed agent code %s: %w", code, err)
		}
	}

	seedTasks := []struct {
		id, title, status, priority string
	}{
		{"TASK-001", "Configurar backup diário", "TODO", "MEDIUM"},
		{"TASK-002", "Atualizar antivírus em estações", "IN_PROGRESS", "HIGH"},
		{"TASK-003", "Documentar padrão de senhas", "DONE", "LOW"},
	}
	for _, task := range seedTasks {
		if _, err := pool.Exec(ctx, `
            INSERT INTO tasks (id, title, status, priority)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (id) DO NOTHING`,
			task.id, task.title, task.status, task.priority,
		); err != nil {
			return fmt.Errorf("seed task %s: %w", task.id, err)
		}
	}

	logger.Info("demo data seeded")
	return nil
}
