package domain_test

import (
	"testing"

	"github.com/rs/zerolog"

	"gitlab.com/contesa/contesa/internal/adapters"
	"gitlab.com/contesa/contesa/internal/domain"
	"gitlab.com/contesa/contesa/internal/models"
)

// stack wires every service over the in-memory store, the same way
// cmd/contesa does when no database is configured.
type stack struct {
	mem     *adapters.Memory
	gate    *domain.Gate
	audit   *domain.AuditRecorder
	ledger  *domain.RestrictionLedger
	outbox  *domain.Outbox
	engine  *domain.Engine
	reports *domain.ReportManager
	users   *domain.UserService
	bulk    *domain.BulkCoordinator
}

func newStack(t *testing.T) *stack {
	logger := zerolog.Nop()
	mem := adapters.NewMemory()
	gate := domain.NewGate(domain.DefaultPolicy())
	audit := domain.NewAuditRecorder(gate, mem, logger)
	ledger := domain.NewRestrictionLedger(gate, mem, logger)
	outbox := domain.NewOutbox(mem, logger, 16)
	outbox.Start()
	t.Cleanup(outbox.Close)
	engine := domain.NewEngine(gate, mem, ledger, audit, outbox, logger)
	users := domain.NewUserService(gate, mem, audit, logger)
	return &stack{
		mem:     mem,
		gate:    gate,
		audit:   audit,
		ledger:  ledger,
		outbox:  outbox,
		engine:  engine,
		reports: domain.NewReportManager(gate, mem, mem, audit, logger),
		users:   users,
		bulk:    domain.NewBulkCoordinator(engine, users, mem, audit, logger),
	}
}

func userWith(id int, role models.Role) *models.User {
	return &models.User{ID: id, Name: "u", Email: "u@example.com", Role: role}
}

func (s *stack) seedUser(u *models.User) *models.User {
	s.mem.SeedUser(*u)
	return u
}

func (s *stack) seedContent(ctype models.ContentType, id, authorID int, status models.ModerationStatus) models.ContentRef {
	ref := models.ContentRef{Type: ctype, ID: id}
	s.mem.SeedContent(ref, models.Content{
		AuthorID:         authorID,
		ModerationStatus: status,
	})
	return ref
}
