package reconciler

import (
	"slices"

	"github.com/benbjohnson/immutable"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/models"
)

// MaxValidations is the number of validation results kept for correlation.
const MaxValidations = 64

type txIDHasher struct{}

func (txIDHasher) Hash(id models.TxID) uint32 {
	return uint32(id) ^ uint32(id>>32)
}

func (txIDHasher) Equal(a, b models.TxID) bool { return a == b }

type txMap = immutable.Map[models.TxID, *models.Transaction]

func newTxMap() *txMap {
	return immutable.NewMap[models.TxID, *models.Transaction](txIDHasher{})
}

// ValidationResult is the recorded outcome of a validation request.
type ValidationResult struct {
	RequestID uint64                `json:"request_id"`
	Kind      events.ValidationKind `json:"kind"`
	Success   bool                  `json:"success"`
}

// State is an immutable snapshot of the wallet. Every applied event that changes
// anything yields a new State sharing unchanged structure with the previous one, so a
// State obtained from the reconciler can be read from any goroutine.
type State struct {
	seq          uint64
	buckets      [4]*txMap
	index        *immutable.Map[models.TxID, models.Bucket]
	balance      models.BalanceInfo
	hasBalance   bool
	connectivity events.ConnectivityStatus
	restoration  *events.WalletRestoration
	validations  *immutable.Map[uint64, ValidationResult]
	validOrder   *immutable.List[uint64]
	required     uint64

	connectivityKnown bool
}

// NewState returns an empty snapshot.
func NewState() *State {
	s := &State{
		index:       immutable.NewMap[models.TxID, models.Bucket](txIDHasher{}),
		validations: immutable.NewMap[uint64, ValidationResult](nil),
		validOrder:  immutable.NewList[uint64](),
	}
	for i := range s.buckets {
		s.buckets[i] = newTxMap()
	}
	return s
}

// WithBalance seeds a balance, typically the last one persisted before a restart.
func (s *State) WithBalance(b models.BalanceInfo) *State {
	c := s.clone()
	c.balance = b.Clone()
	c.hasBalance = true
	return c
}

// WithRequiredConfirmations seeds the confirmation threshold.
func (s *State) WithRequiredConfirmations(n uint64) *State {
	c := s.clone()
	c.required = n
	return c
}

func (s *State) clone() *State {
	c := *s
	return &c
}

func slot(b models.Bucket) int {
	switch b {
	case models.PendingInbound:
		return 0
	case models.PendingOutbound:
		return 1
	case models.Completed:
		return 2
	default:
		return 3
	}
}

// Seq increases by one for every change applied to the state.
func (s *State) Seq() uint64 { return s.seq }

// Balance returns the current balance and whether one has been seen.
func (s *State) Balance() (models.BalanceInfo, bool) {
	return s.balance, s.hasBalance
}

// Connectivity returns the last reported link status and whether one was reported.
func (s *State) Connectivity() (events.ConnectivityStatus, bool) {
	return s.connectivity, s.connectivityKnown
}

// Restoration returns the latest restoration progress, or nil.
func (s *State) Restoration() *events.WalletRestoration { return s.restoration }

func (s *State) RequiredConfirmations() uint64 { return s.required }

// Find looks an id up across all four buckets.
func (s *State) Find(id models.TxID) (*models.Transaction, models.Bucket, bool) {
	b, ok := s.index.Get(id)
	if !ok {
		return nil, "", false
	}
	tx, _ := s.buckets[slot(b)].Get(id)
	return tx, b, true
}

// Get looks an id up in one bucket.
func (s *State) Get(b models.Bucket, id models.TxID) (*models.Transaction, bool) {
	if !b.Valid() {
		return nil, false
	}
	return s.buckets[slot(b)].Get(id)
}

// Len reports the number of transactions in a bucket.
func (s *State) Len(b models.Bucket) int {
	if !b.Valid() {
		return 0
	}
	return s.buckets[slot(b)].Len()
}

// List returns a bucket's transactions, newest first.
func (s *State) List(b models.Bucket) []*models.Transaction {
	if !b.Valid() {
		return nil
	}
	m := s.buckets[slot(b)]
	out := make([]*models.Transaction, 0, m.Len())
	itr := m.Iterator()
	for !itr.Done() {
		_, tx, _ := itr.Next()
		out = append(out, tx)
	}
	slices.SortFunc(out, func(a, b *models.Transaction) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		switch {
		case a.Id > b.Id:
			return -1
		case a.Id < b.Id:
			return 1
		default:
			return 0
		}
	})
	return out
}

// Validation returns the recorded result for a request id.
func (s *State) Validation(requestID uint64) (ValidationResult, bool) {
	return s.validations.Get(requestID)
}

// Validations returns the retained results, oldest first.
func (s *State) Validations() []ValidationResult {
	out := make([]ValidationResult, 0, s.validOrder.Len())
	itr := s.validOrder.Iterator()
	for !itr.Done() {
		_, id := itr.Next()
		if v, ok := s.validations.Get(id); ok {
			out = append(out, v)
		}
	}
	return out
}

// put stores tx in bucket b, removing it from any other bucket.
func (s *State) put(tx *models.Transaction, b models.Bucket) *State {
	c := s.clone()
	if prev, ok := c.index.Get(tx.Id); ok && prev != b {
		c.buckets[slot(prev)] = c.buckets[slot(prev)].Delete(tx.Id)
	}
	c.buckets[slot(b)] = c.buckets[slot(b)].Set(tx.Id, tx)
	c.index = c.index.Set(tx.Id, b)
	return c
}

func (s *State) recordValidation(v ValidationResult) *State {
	c := s.clone()
	if _, ok := c.validations.Get(v.RequestID); !ok {
		c.validOrder = c.validOrder.Append(v.RequestID)
	}
	c.validations = c.validations.Set(v.RequestID, v)
	for c.validOrder.Len() > MaxValidations {
		c.validations = c.validations.Delete(c.validOrder.Get(0))
		c.validOrder = c.validOrder.Slice(1, c.validOrder.Len())
	}
	return c
}
