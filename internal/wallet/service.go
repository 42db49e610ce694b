package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucasmarchena/partsmarket-backend/pkg/db/models"
	"github.com/lucasmarchena/partsmarket-backend/pkg/enums"
	pkgerrors "github.com/lucasmarchena/partsmarket-backend/pkg/errors"
	"github.com/lucasmarchena/partsmarket-backend/pkg/outbox"
	"github.com/lucasmarchena/partsmarket-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RequestInput opens a pending deposit or withdrawal awaiting admin review.
type RequestInput struct {
	UserID      uuid.UUID
	AmountCents int
	Reference   *string
	Note        *string
}

// ReviewInput settles a pending transaction.
type ReviewInput struct {
	TransactionID uuid.UUID
	AdminID       uuid.UUID
	Reason        *string
}

// TransactionList is a page of ledger entries.
type TransactionList struct {
	Transactions []models.WalletTransaction
	NextCursor   string
}

// Service defines wallet ledger operations. Credit and Debit are
// transaction-scoped so callers can fold a balance move into their own
// database transaction.
type Service interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.WalletBalance, error)
	Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amountCents int, txType enums.WalletTransactionType, reference string) (*models.WalletTransaction, error)
	Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amountCents int, reference string) (*models.WalletTransaction, error)
	Refund(ctx context.Context, tx *gorm.DB, userID, orderID uuid.UUID, amountCents int, reference string) error
	RequestDeposit(ctx context.Context, input RequestInput) (*models.WalletTransaction, error)
	RequestWithdrawal(ctx context.Context, input RequestInput) (*models.WalletTransaction, error)
	ConfirmTransaction(ctx context.Context, input ReviewInput) (*models.WalletTransaction, error)
	RejectTransaction(ctx context.Context, input ReviewInput) (*models.WalletTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error)
	Replay(ctx context.Context, userID uuid.UUID) (int, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService wires a wallet service with the provided dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc, now: time.Now}, nil
}

func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (*models.WalletBalance, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	balance, err := s.repo.EnsureBalance(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet balance")
	}
	return balance, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amountCents int, txType enums.WalletTransactionType, reference string) (*models.WalletTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "credit amount must be positive")
	}
	if !txType.IsValid() || txType == enums.WalletTransactionTypeWithdrawal {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid credit type %q", txType))
	}

	repo := s.repo.WithTx(tx)
	if _, err := repo.EnsureBalance(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet balance")
	}
	if err := repo.AddBalance(ctx, userID, amountCents); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
	}

	entry := s.newEntry(userID, orderID, txType, amountCents, reference)
	entry.Status = enums.WalletTransactionStatusCompleted
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet credit")
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventWalletCredited,
		AggregateType: enums.AggregateWallet,
		AggregateID:   userID,
		Version:       1,
		Data: CreditedEvent{
			UserID:        userID,
			OrderID:       orderID,
			TransactionID: entry.ID,
			Type:          txType,
			AmountCents:   amountCents,
		},
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, amountCents int, reference string) (*models.WalletTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount must be positive")
	}

	repo := s.repo.WithTx(tx)
	if _, err := repo.EnsureBalance(ctx, userID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet balance")
	}

	ok, err := repo.DebitBalance(ctx, userID, amountCents)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet balance")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance too low")
	}

	entry := s.newEntry(userID, orderID, enums.WalletTransactionTypeWithdrawal, amountCents, reference)
	entry.Status = enums.WalletTransactionStatusCompleted
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet debit")
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventWalletDebited,
		AggregateType: enums.AggregateWallet,
		AggregateID:   userID,
		Version:       1,
		Data: DebitedEvent{
			UserID:        userID,
			OrderID:       orderID,
			TransactionID: entry.ID,
			Type:          enums.WalletTransactionTypeWithdrawal,
			AmountCents:   amountCents,
		},
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

// Refund credits the customer once per order. Replaying a cancel after the
// refund already landed is a no-op.
func (s *service) Refund(ctx context.Context, tx *gorm.DB, userID, orderID uuid.UUID, amountCents int, reference string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	repo := s.repo.WithTx(tx)
	existing, err := repo.FindCompletedRefundForOrder(ctx, orderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check refund history")
	}
	if existing != nil {
		return nil
	}

	_, err = s.Credit(ctx, tx, userID, &orderID, amountCents, enums.WalletTransactionTypeRefund, reference)
	return err
}

func (s *service) RequestDeposit(ctx context.Context, input RequestInput) (*models.WalletTransaction, error) {
	return s.request(ctx, input, enums.WalletTransactionTypeDeposit)
}

func (s *service) RequestWithdrawal(ctx context.Context, input RequestInput) (*models.WalletTransaction, error) {
	return s.request(ctx, input, enums.WalletTransactionTypeWithdrawal)
}

func (s *service) request(ctx context.Context, input RequestInput, txType enums.WalletTransactionType) (*models.WalletTransaction, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	entry := &models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      input.UserID,
		Type:        txType,
		Status:      enums.WalletTransactionStatusPending,
		AmountCents: input.AmountCents,
		Reference:   input.Reference,
		Note:        input.Note,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.EnsureBalance(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet balance")
		}
		if err := repo.CreateTransaction(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record wallet request")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ConfirmTransaction settles a pending entry and moves the balance.
// Confirming an already-completed entry returns it unchanged.
func (s *service) ConfirmTransaction(ctx context.Context, input ReviewInput) (*models.WalletTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var entry *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := s.loadTransaction(ctx, repo, input.TransactionID)
		if err != nil {
			return err
		}
		entry = loaded

		if entry.Status == enums.WalletTransactionStatusCompleted {
			return nil
		}
		if entry.Status != enums.WalletTransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already settled")
		}

		switch entry.Type {
		case enums.WalletTransactionTypeDeposit:
			if err := repo.AddBalance(ctx, entry.UserID, entry.AmountCents); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit wallet balance")
			}
		case enums.WalletTransactionTypeWithdrawal:
			ok, err := repo.DebitBalance(ctx, entry.UserID, entry.AmountCents)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit wallet balance")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance too low")
			}
		default:
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("transaction type %q is not reviewable", entry.Type))
		}

		now := s.now()
		if err := repo.UpdateTransaction(ctx, entry.ID, map[string]any{
			"status":       enums.WalletTransactionStatusCompleted,
			"confirmed_by": input.AdminID,
			"confirmed_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle wallet transaction")
		}
		entry.Status = enums.WalletTransactionStatusCompleted
		entry.ConfirmedBy = &input.AdminID
		entry.ConfirmedAt = &now

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWalletTxConfirmed,
			AggregateType: enums.AggregateWallet,
			AggregateID:   entry.UserID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.AdminID, Role: enums.ActorRoleAdmin.String()},
			Data: TransactionReviewedEvent{
				UserID:        entry.UserID,
				TransactionID: entry.ID,
				Type:          entry.Type,
				Status:        entry.Status,
				AmountCents:   entry.AmountCents,
				ReviewedBy:    input.AdminID,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) RejectTransaction(ctx context.Context, input ReviewInput) (*models.WalletTransaction, error) {
	if input.TransactionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction id required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var entry *models.WalletTransaction
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := s.loadTransaction(ctx, repo, input.TransactionID)
		if err != nil {
			return err
		}
		entry = loaded

		if entry.Status == enums.WalletTransactionStatusRejected {
			return nil
		}
		if entry.Status != enums.WalletTransactionStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction already settled")
		}

		now := s.now()
		updates := map[string]any{
			"status":      enums.WalletTransactionStatusRejected,
			"rejected_by": input.AdminID,
			"rejected_at": now,
		}
		if input.Reason != nil {
			updates["note"] = *input.Reason
		}
		if err := repo.UpdateTransaction(ctx, entry.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject wallet transaction")
		}
		entry.Status = enums.WalletTransactionStatusRejected
		entry.RejectedBy = &input.AdminID
		entry.RejectedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) ListTransactions(ctx context.Context, userID uuid.UUID, params pagination.Params) (*TransactionList, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	entries, nextCursor, err := s.repo.ListTransactions(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return &TransactionList{Transactions: entries, NextCursor: nextCursor}, nil
}

// Replay recomputes the balance from completed ledger entries. The result
// must equal the stored balance; reconciliation reads compare the two.
func (s *service) Replay(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	total, err := s.repo.SumCompleted(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replay wallet ledger")
	}
	return total, nil
}

func (s *service) newEntry(userID uuid.UUID, orderID *uuid.UUID, txType enums.WalletTransactionType, amountCents int, reference string) *models.WalletTransaction {
	entry := &models.WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		OrderID:     orderID,
		Type:        txType,
		AmountCents: amountCents,
	}
	if reference != "" {
		entry.Reference = &reference
	}
	return entry
}

func (s *service) loadTransaction(ctx context.Context, repo Repository, id uuid.UUID) (*models.WalletTransaction, error) {
	entry, err := repo.FindTransaction(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "wallet transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet transaction")
	}
	return entry, nil
}
