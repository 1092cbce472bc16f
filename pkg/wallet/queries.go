package wallet

import (
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/reconciler"
)

// Balance returns the last known balance. ok is false until one has been reported or
// restored from preferences.
func (s *Service) Balance() (models.BalanceInfo, bool) {
	return s.Snapshot().Balance()
}

// Transactions lists a bucket, newest first.
func (s *Service) Transactions(b models.Bucket) ([]*models.Transaction, error) {
	if !b.Valid() {
		return nil, ErrInvalidBucket
	}
	return s.Snapshot().List(b), nil
}

// Transaction looks an id up in one bucket.
func (s *Service) Transaction(id models.TxID, b models.Bucket) (*models.Transaction, error) {
	if !b.Valid() {
		return nil, ErrInvalidBucket
	}
	tx, ok := s.Snapshot().Get(b, id)
	if !ok {
		return nil, ErrTxNotFound
	}
	return tx, nil
}

// Find looks an id up across all buckets.
func (s *Service) Find(id models.TxID) (*models.Transaction, models.Bucket, error) {
	tx, b, ok := s.Snapshot().Find(id)
	if !ok {
		return nil, "", ErrTxNotFound
	}
	return tx, b, nil
}

// Validation returns the result reported for a validation request.
func (s *Service) Validation(requestID uint64) (reconciler.ValidationResult, error) {
	v, ok := s.Snapshot().Validation(requestID)
	if !ok {
		return reconciler.ValidationResult{}, ErrValidationNotFound
	}
	return v, nil
}

// RequiredConfirmations returns the count the state was last told about.
func (s *Service) RequiredConfirmations() uint64 {
	return s.Snapshot().RequiredConfirmations()
}
