package memory

import (
	"context"

	"github.com/BruksfildServices01/lesson-scheduler/internal/audit"
	"github.com/BruksfildServices01/lesson-scheduler/internal/models"
)

func (s *Store) Write(_ context.Context, ev audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := ev.Model()
	row.ID = uint(len(s.auditLogs) + 1)
	row.CreatedAt = s.now()
	s.auditLogs = append(s.auditLogs, *row)
	return nil
}

// AuditLogs devolve uma cópia do que foi registrado.
func (s *Store) AuditLogs() []models.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.AuditLog, len(s.auditLogs))
	copy(out, s.auditLogs)
	return out
}

var _ audit.Writer = (*Store)(nil)
