package service

import (
	"time"

	"github.com/subhanali/invoice-summarizer/internal/models"
	"github.com/subhanali/invoice-summarizer/internal/repository"
	"go.uber.org/zap"
)

// Reconciler links extracted client information to the owning account's
// client records. One client exists per (account, normalized company).
type Reconciler struct {
	clients *repository.ClientRepository
	logger  *zap.Logger
}

// NewReconciler creates a new client reconciler
func NewReconciler(clients *repository.ClientRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		clients: clients,
		logger:  logger,
	}
}

// Reconcile resolves or creates the client for the extracted counterparty.
// Without a company there is nothing to reconcile against, so the invoice
// stays unlinked: clientID and display come back empty with no error.
func (r *Reconciler) Reconcile(userID string, info *models.ClientInfo) (clientID, display string, err error) {
	if info == nil || repository.CompanyKey(info.Company) == "" {
		return "", "", nil
	}

	name := info.Name
	if name == "" {
		name = info.Company
	}

	clientID, err = r.clients.Upsert(userID, name, info.Email, info.Company)
	if err != nil {
		return "", "", err
	}

	r.logger.Debug("Client reconciled",
		zap.String("user_id", userID),
		zap.String("client_id", clientID),
		zap.String("company", info.Company))
	return clientID, info.Company, nil
}

// BumpAggregates records one processed invoice on the client's derived
// counters. A missing amount counts as zero; a missing date stamps today.
func (r *Reconciler) BumpAggregates(clientID string, amount *float64, date *string) error {
	amt := 0.0
	if amount != nil {
		amt = *amount
	}
	last := time.Now().UTC().Format("2006-01-02")
	if date != nil && *date != "" {
		last = *date
	}
	return r.clients.IncrementAggregates(clientID, amt, last)
}
