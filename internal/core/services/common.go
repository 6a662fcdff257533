package services

import (
	"context"
	"log"
	"strings"
	"time"

	"afps-backend/internal/adapters/persistence/models"
	"afps-backend/internal/adapters/persistence/repositories"
)

// writeAudit records an audit entry, logging but never failing the caller
func writeAudit(ctx context.Context, repo repositories.AuditLogRepository, action, cpf, role, details string) {
	if repo == nil {
		return
	}
	entry := &models.AuditLog{
		Action:   action,
		ActorCPF: cpf,
		Role:     role,
		Details:  details,
	}
	if err := repo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Failed to write audit log (%s): %v", action, err)
	}
}

// NormalizeCPF strips formatting punctuation, keeping digits only
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseDate parses a YYYY-MM-DD date string
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// maskCPF hides the middle digits of a CPF for log output
func maskCPF(cpf string) string {
	if len(cpf) != 11 {
		return "***"
	}
	return cpf[:3] + "*****" + cpf[8:]
}

// firstOfMonth truncates a time to the first day of its month (UTC)
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
