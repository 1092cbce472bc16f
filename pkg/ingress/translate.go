package ingress

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/chris/wallet-tx-sync/pkg/events"
	"github.com/chris/wallet-tx-sync/pkg/models"
	"github.com/chris/wallet-tx-sync/pkg/native"
)

// ErrTranslation marks a native payload that could not be turned into an event.
var ErrTranslation = errors.New("native payload translation failed")

func translationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTranslation, fmt.Sprintf(format, args...))
}

// MapStatus converts a native status code.
func MapStatus(code int) (models.TransactionStatus, error) {
	switch code {
	case native.StatusCompleted:
		return models.COMPLETED, nil
	case native.StatusBroadcast:
		return models.BROADCAST, nil
	case native.StatusMinedUnconfirmed:
		return models.MINED_UNCONFIRMED, nil
	case native.StatusImported:
		return models.IMPORTED, nil
	case native.StatusPending:
		return models.PENDING, nil
	case native.StatusCoinbase:
		return models.COINBASE, nil
	case native.StatusMinedConfirmed:
		return models.MINED_CONFIRMED, nil
	case native.StatusUnknown:
		return models.UNKNOWN, nil
	default:
		return "", translationError("unexpected status code %d", code)
	}
}

// CopyTx materializes a borrowed transaction handle into an owned value.
func CopyTx(h native.TxHandle) (*models.Transaction, error) {
	if h == nil {
		return nil, translationError("nil transaction handle")
	}

	idBytes, err := h.ID()
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrTranslation, err)
	}
	id, err := native.DecodeUint64(idBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: id: %v", ErrTranslation, err)
	}

	outbound, err := h.IsOutbound()
	if err != nil {
		return nil, fmt.Errorf("%w: direction: %v", ErrTranslation, err)
	}
	tx := &models.Transaction{Id: models.TxID(id), Direction: models.INBOUND}

	var hex, emoji string
	if outbound {
		tx.Direction = models.OUTBOUND
		hex, emoji, err = h.DestinationPublicKey()
	} else {
		hex, emoji, err = h.SourcePublicKey()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: counterparty: %v", ErrTranslation, err)
	}
	tx.Counterparty = models.Counterparty{PublicKeyHex: hex, EmojiID: emoji}

	amount, err := h.Amount()
	if err != nil {
		return nil, fmt.Errorf("%w: amount: %v", ErrTranslation, err)
	}
	if tx.Amount, err = models.NewMicroTari(amount); err != nil {
		return nil, fmt.Errorf("%w: amount: %v", ErrTranslation, err)
	}

	fee, hasFee, err := h.Fee()
	if err != nil {
		return nil, fmt.Errorf("%w: fee: %v", ErrTranslation, err)
	}
	if hasFee {
		f, err := models.NewMicroTari(fee)
		if err != nil {
			return nil, fmt.Errorf("%w: fee: %v", ErrTranslation, err)
		}
		tx.Fee = &f
	}

	if tx.Message, err = h.Message(); err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrTranslation, err)
	}

	ts, err := h.Timestamp()
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp: %v", ErrTranslation, err)
	}
	tx.Timestamp = time.Unix(int64(ts), 0).UTC()

	code, err := h.Status()
	if err != nil {
		return nil, fmt.Errorf("%w: status: %v", ErrTranslation, err)
	}
	if tx.Status, err = MapStatus(code); err != nil {
		return nil, err
	}

	return tx, nil
}

// CopyTxs materializes a list of handles, failing on the first bad one.
func CopyTxs(hs []native.TxHandle) ([]*models.Transaction, error) {
	out := make([]*models.Transaction, 0, len(hs))
	for _, h := range hs {
		tx, err := CopyTx(h)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

// CopyBalance materializes a borrowed balance handle.
func CopyBalance(h native.BalanceHandle) (models.BalanceInfo, error) {
	if h == nil {
		return models.BalanceInfo{}, translationError("nil balance handle")
	}

	read := func(name string, get func() (*big.Int, error)) (models.MicroTari, error) {
		v, err := get()
		if err != nil {
			return models.MicroTari{}, fmt.Errorf("%w: %s: %v", ErrTranslation, name, err)
		}
		m, err := models.NewMicroTari(v)
		if err != nil {
			return models.MicroTari{}, fmt.Errorf("%w: %s: %v", ErrTranslation, name, err)
		}
		return m, nil
	}

	var b models.BalanceInfo
	var err error
	if b.Available, err = read("available", h.Available); err != nil {
		return models.BalanceInfo{}, err
	}
	if b.PendingIncoming, err = read("incoming", h.Incoming); err != nil {
		return models.BalanceInfo{}, err
	}
	if b.PendingOutgoing, err = read("outgoing", h.Outgoing); err != nil {
		return models.BalanceInfo{}, err
	}
	if b.TimeLocked, err = read("time locked", h.TimeLocked); err != nil {
		return models.BalanceInfo{}, err
	}
	return b, nil
}

func connectivity(b []byte) (events.ConnectivityStatus, error) {
	v, err := native.DecodeInt(b)
	if err != nil {
		return 0, fmt.Errorf("%w: connectivity: %v", ErrTranslation, err)
	}
	s := events.ConnectivityStatus(v)
	switch s {
	case events.Connecting, events.Online, events.Offline:
		return s, nil
	default:
		return 0, translationError("unexpected connectivity status %d", v)
	}
}

func restoration(event int, first, second []byte) (events.WalletRestoration, error) {
	stage := events.RestorationStage(event)
	if stage < events.RestorationConnectingToBaseNode || stage > events.RestorationRecoveryFailed {
		return events.WalletRestoration{}, translationError("unexpected restoration event %d", event)
	}
	a, err := native.DecodeUint64(first)
	if err != nil {
		return events.WalletRestoration{}, fmt.Errorf("%w: restoration: %v", ErrTranslation, err)
	}
	b, err := native.DecodeUint64(second)
	if err != nil {
		return events.WalletRestoration{}, fmt.Errorf("%w: restoration: %v", ErrTranslation, err)
	}
	return events.WalletRestoration{Stage: stage, First: a, Second: b}, nil
}
