package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"casino-bot/internal/config"
	"casino-bot/internal/game"
	"casino-bot/internal/model"
	"casino-bot/internal/pkg/db"
	"casino-bot/internal/pkg/lock"
	"casino-bot/internal/repository"
)

// Transfer-related errors.
var (
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient balance", game.ErrInsufficientFunds)
	ErrInvalidAmount       = fmt.Errorf("%w: amount must be positive", game.ErrInvalidArgument)
	ErrSelfTransfer        = fmt.Errorf("%w: cannot transfer to yourself", game.ErrInvalidArgument)
	ErrUserNotFound        = fmt.Errorf("%w: user not found, they need to talk to the bot first", game.ErrInvalidArgument)
)

// TransferResult holds both balances after a transfer.
type TransferResult struct {
	Amount          int64
	SenderBalance   int64
	ReceiverBalance int64
	ReceiverName    string
}

// TransferService handles user-to-user transfers.
type TransferService struct {
	db     db.TxBeginner
	locks  *lock.UserLock
	casino *config.CasinoConfig
}

// NewTransferService creates a new TransferService instance.
func NewTransferService(pool db.TxBeginner, locks *lock.UserLock, casino *config.CasinoConfig) *TransferService {
	return &TransferService{db: pool, locks: locks, casino: casino}
}

// ValidateTransfer checks a transfer against the sender's balance. It is
// pure.
func ValidateTransfer(fromID, toID, amount, senderBalance int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if fromID == toID {
		return ErrSelfTransfer
	}
	if senderBalance < amount {
		return ErrInsufficientBalance
	}
	return nil
}

// Transfer moves amount from one player to another. Both accounts are
// row-locked in id order and both ledger entries commit together.
func (s *TransferService) Transfer(ctx context.Context, from Player, toID, amount int64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if from.ID == toID {
		return nil, ErrSelfTransfer
	}

	var res TransferResult
	err := s.locks.WithPair(ctx, from.ID, toID, s.lockTimeout(), func() error {
		return db.InTx(ctx, s.db, func(tx pgx.Tx) error {
			st := repository.New(tx)
			if _, err := ensureAccount(ctx, st, from, s.casino.StartingBalance); err != nil {
				return err
			}
			sender, receiver, err := lockPair(ctx, st, from.ID, toID)
			if err != nil {
				return err
			}
			if err := ValidateTransfer(from.ID, toID, amount, sender.Balance); err != nil {
				return err
			}

			if res.SenderBalance, err = st.Ledger.Apply(ctx, from.ID, "", -amount, model.EntryTransfer); err != nil {
				return err
			}
			if res.ReceiverBalance, err = st.Ledger.Apply(ctx, toID, "", amount, model.EntryTransfer); err != nil {
				return err
			}
			res.Amount = amount
			res.ReceiverName = receiver.Username
			return nil
		})
	})
	if err != nil {
		if isTaxonomy(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to transfer: %w", err)
	}
	return &res, nil
}

func (s *TransferService) lockTimeout() time.Duration {
	if s.casino.LockTimeout > 0 {
		return s.casino.LockTimeout
	}
	return defaultLockTimeout
}

// lockPair row-locks two accounts in ascending id order and returns them
// as (a, b). A missing second account is ErrUserNotFound.
func lockPair(ctx context.Context, st *repository.Store, a, b int64) (*model.Account, *model.Account, error) {
	first, second := a, b
	if second < first {
		first, second = second, first
	}
	accts := make(map[int64]*model.Account, 2)
	for _, id := range []int64{first, second} {
		acct, err := st.Accounts.GetForUpdate(ctx, id)
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, nil, ErrUserNotFound
		}
		if err != nil {
			return nil, nil, err
		}
		accts[id] = acct
	}
	return accts[a], accts[b], nil
}
